package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/room"
	"github.com/rocketscienceinc/gomoku-backend/internal/service"
)

func (that *Server) handleConnect(_ context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleConnect")

	var payloadReq Payload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}

	// A client restoring a previous identity overrides the cookie session.
	if payloadReq.Player != nil && payloadReq.Player.ID != "" {
		conn.playerID = payloadReq.Player.ID
	}

	log.Info("player connected", "playerID", conn.playerID)

	return conn.sendEvent(room.Event{Action: msg.Action, Player: &entity.Player{ID: conn.playerID}})
}

func (that *Server) handleNewRoom(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleNewRoom", "playerID", conn.playerID)

	var payloadReq Payload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}

	mode := payloadReq.Mode
	if mode == "" {
		mode = entity.ModeVersus
	}
	if mode != entity.ModeSolo && mode != entity.ModeVersus {
		return conn.sendError(msg.Action, "unknown game mode: "+mode)
	}

	difficulty, err := parseDifficulty(payloadReq.Difficulty)
	if err != nil {
		return conn.sendError(msg.Action, err.Error())
	}

	actor, err := that.registry.CreateRoom(mode, difficulty)
	if err != nil {
		log.Error("failed to create room", "error", err)
		return conn.sendError(msg.Action, "failed to create a new room")
	}

	return that.joinRoom(ctx, conn, actor, msg.Action)
}

func (that *Server) handleJoinRoom(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleJoinRoom", "playerID", conn.playerID)

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Room == "" {
		return conn.sendError(msg.Action, "room code is required")
	}

	actor, err := that.registry.Get(payloadReq.Room)
	if err != nil {
		log.Info("room lookup failed", "roomCode", payloadReq.Room, "error", err)
		return conn.sendError(msg.Action, err.Error())
	}

	return that.joinRoom(ctx, conn, actor, msg.Action)
}

// joinRoom - binds the connection to the room actor and starts pumping its
// events to the client.
func (that *Server) joinRoom(ctx context.Context, conn *connection, actor *room.Actor, action string) error {
	log := that.logger.With("method", "joinRoom", "playerID", conn.playerID, "roomCode", actor.Code())

	// A connection hopping rooms releases its old seat first; rejoining the
	// same room goes through the actor's own reconnect path instead.
	if conn.actor != nil && conn.actor != actor {
		conn.actor.Disconnect(conn.playerID)
	}

	outbox := make(chan room.Event, 32)

	game, player, err := actor.Join(ctx, &entity.Player{ID: conn.playerID}, outbox)
	if err != nil {
		log.Info("join rejected", "error", err)
		return conn.sendError(action, err.Error())
	}

	conn.actor = actor
	conn.outbox = outbox
	go conn.pump(outbox)

	log.Info("player joined room", "color", player.Color)

	return conn.sendEvent(room.Event{Action: room.EventJoined, Player: player, Game: game})
}

func (that *Server) handleGameTurn(_ context.Context, conn *connection, msg *Message) error {
	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if conn.actor == nil {
		return conn.sendError(msg.Action, "not in a room")
	}

	if payloadReq.Move == nil {
		return conn.sendError(msg.Action, "move is required")
	}

	conn.actor.SubmitMove(conn.playerID, *payloadReq.Move)

	return nil
}

func (that *Server) handleGameChat(_ context.Context, conn *connection, msg *Message) error {
	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if conn.actor == nil {
		return conn.sendError(msg.Action, "not in a room")
	}

	if payloadReq.Text == "" {
		return nil
	}

	conn.actor.SendChat(conn.playerID, payloadReq.Text)

	return nil
}

// handleGameLeave - a voluntary leave takes the same grace/forfeit path as a
// network drop; the protocol does not distinguish them.
func (that *Server) handleGameLeave(_ context.Context, conn *connection, msg *Message) error {
	if conn.actor == nil {
		return conn.sendError(msg.Action, "not in a room")
	}

	conn.actor.Disconnect(conn.playerID)
	conn.actor = nil
	conn.outbox = nil

	return nil
}

func (that *Server) handleDrawRequest(_ context.Context, conn *connection, msg *Message) error {
	if conn.actor == nil {
		return conn.sendError(msg.Action, "not in a room")
	}

	conn.actor.RequestDraw(conn.playerID)

	return nil
}

func (that *Server) handleDrawResponse(_ context.Context, conn *connection, msg *Message) error {
	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if conn.actor == nil {
		return conn.sendError(msg.Action, "not in a room")
	}

	if payloadReq.Accept == nil {
		return conn.sendError(msg.Action, "accept flag is required")
	}

	conn.actor.RespondDraw(conn.playerID, *payloadReq.Accept)

	return nil
}

func parseDifficulty(raw string) (service.Difficulty, error) {
	switch service.Difficulty(raw) {
	case service.DifficultyLow, service.DifficultyMid, service.DifficultyHigh:
		return service.Difficulty(raw), nil
	case "":
		return service.DifficultyMid, nil
	default:
		return "", fmt.Errorf("unknown difficulty: %s", raw)
	}
}
