package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/pkg"
	"github.com/rocketscienceinc/gomoku-backend/internal/room"
	"github.com/rocketscienceinc/gomoku-backend/internal/service"
)

const sessionCookieName = "user_session"

type roomRegistry interface {
	CreateRoom(mode string, difficulty service.Difficulty) (*room.Actor, error)
	Get(code string) (*room.Actor, error)
}

type Server struct {
	logger   *slog.Logger
	registry roomRegistry

	handlers map[string]func(ctx context.Context, conn *connection, message *Message) error
}

func New(logger *slog.Logger, registry roomRegistry) *Server {
	server := &Server{
		logger:   logger,
		registry: registry,

		handlers: make(map[string]func(context.Context, *connection, *Message) error),
	}

	server.handlers["connect"] = server.handleConnect
	server.handlers["room:new"] = server.handleNewRoom
	server.handlers["room:join"] = server.handleJoinRoom
	server.handlers["game:turn"] = server.handleGameTurn
	server.handlers["game:chat"] = server.handleGameChat
	server.handlers["game:leave"] = server.handleGameLeave
	server.handlers["draw:request"] = server.handleDrawRequest
	server.handlers["draw:response"] = server.handleDrawResponse

	return server
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	if req.Header.Get("Upgrade") != "websocket" {
		http.Error(writer, "not a websocket upgrade", http.StatusBadRequest)
		return
	}

	sessionID := that.ensureSessionCookie(writer, req)

	key := req.Header.Get("Sec-WebSocket-Key")
	acceptKey := pkg.GenerateAcceptKey(key)

	writer.Header().Set("Upgrade", "websocket")
	writer.Header().Set("Connection", "Upgrade")
	writer.Header().Set("Sec-WebSocket-Accept", acceptKey)
	writer.WriteHeader(http.StatusSwitchingProtocols)

	hijacker, ok := writer.(http.Hijacker)
	if !ok {
		log.Error("web server does not support hijacking", "error", http.StatusText(http.StatusInternalServerError))
		return
	}

	netConn, bufrw, err := hijacker.Hijack()
	if err != nil {
		log.Error("failed to hijack connection", "error", err)
		return
	}

	defer netConn.Close()

	log.Info("WebSocket connection established", "sessionID", sessionID)

	conn := newConnection(that, bufrw, sessionID)
	defer conn.teardown()

	if err = that.handleMessages(ctx, conn); err != nil {
		log.Error("error handling messages", "error", err)
	}
}

// handleMessages - processes messages from the client until the transport
// closes.
func (that *Server) handleMessages(ctx context.Context, conn *connection) error {
	log := that.logger.With("method", "handleMessages")

	for {
		reqBody, err := conn.readRequest()
		if err != nil {
			log.Info("connection read ended", "error", err)
			return err
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			continue
		}

		if err = handler(ctx, conn, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// ensureSessionCookie - gives the client a stable identity that survives
// reconnects; the grace window matches on it, not on the connection.
func (that *Server) ensureSessionCookie(writer http.ResponseWriter, req *http.Request) string {
	log := that.logger.With("method", "ensureSessionCookie")

	cookie, err := req.Cookie(sessionCookieName)
	if err != nil {
		cookie = &http.Cookie{
			Name:    sessionCookieName,
			Value:   pkg.GenerateNewSessionID(),
			Expires: time.Now().Add(24 * time.Hour),
			Path:    "/ws",
		}
		http.SetCookie(writer, cookie)
		log.Info("session cookie not found, new one created")
	}

	return cookie.Value
}
