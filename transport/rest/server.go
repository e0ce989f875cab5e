package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/room"
)

type roomRegistry interface {
	ListActiveRooms(ctx context.Context) []room.RoomInfo
	ForceFinish(ctx context.Context, code string) error
}

// Server exposes the administrative surface: health check, room listing and
// a force-finish hook for cleanup tooling.
type Server struct {
	logger   *slog.Logger
	registry roomRegistry
}

func New(logger *slog.Logger, registry roomRegistry) *Server {
	return &Server{
		logger:   logger,
		registry: registry,
	}
}

func (that *Server) Start(port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", that.handlePing)
	mux.HandleFunc("/rooms", that.handleListRooms)
	mux.HandleFunc("/rooms/finish", that.handleForceFinish)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
