package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
)

func (that *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleListRooms")

	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	rooms := that.registry.ListActiveRooms(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rooms); err != nil {
		log.Error("failed to encode room list", "error", err)
	}
}

func (that *Server) handleForceFinish(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleForceFinish")

	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "room code is required", http.StatusBadRequest)
		return
	}

	err := that.registry.ForceFinish(r.Context(), code)

	switch {
	case errors.Is(err, apperror.ErrRoomNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, apperror.ErrGameFinished):
		http.Error(w, err.Error(), http.StatusConflict)
	case err != nil:
		log.Error("failed to force finish room", "roomCode", code, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusOK)
	}
}
