package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/room"
)

type stubRegistry struct {
	rooms     []room.RoomInfo
	finishErr error
	finished  []string
}

func (that *stubRegistry) ListActiveRooms(_ context.Context) []room.RoomInfo {
	return that.rooms
}

func (that *stubRegistry) ForceFinish(_ context.Context, code string) error {
	if that.finishErr != nil {
		return that.finishErr
	}
	that.finished = append(that.finished, code)
	return nil
}

func newTestServer(registry *stubRegistry) *Server {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), registry)
}

func TestHandlePing(t *testing.T) {
	server := newTestServer(&stubRegistry{})

	rec := httptest.NewRecorder()
	server.handlePing(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestHandleListRooms(t *testing.T) {
	t.Run("returns the active rooms as JSON", func(t *testing.T) {
		server := newTestServer(&stubRegistry{rooms: []room.RoomInfo{
			{Code: "ABC234", Mode: "versus", Status: "playing", Players: 2, Moves: 7},
		}})

		rec := httptest.NewRecorder()
		server.handleListRooms(rec, httptest.NewRequest(http.MethodGet, "/rooms", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var rooms []room.RoomInfo
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rooms))
		require.Len(t, rooms, 1)
		assert.Equal(t, "ABC234", rooms[0].Code)
		assert.Equal(t, 7, rooms[0].Moves)
	})

	t.Run("rejects non-GET requests", func(t *testing.T) {
		server := newTestServer(&stubRegistry{})

		rec := httptest.NewRecorder()
		server.handleListRooms(rec, httptest.NewRequest(http.MethodPost, "/rooms", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestHandleForceFinish(t *testing.T) {
	t.Run("finishes the named room", func(t *testing.T) {
		registry := &stubRegistry{}
		server := newTestServer(registry)

		rec := httptest.NewRecorder()
		server.handleForceFinish(rec, httptest.NewRequest(http.MethodPost, "/rooms/finish?code=ABC234", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"ABC234"}, registry.finished)
	})

	t.Run("requires a room code", func(t *testing.T) {
		server := newTestServer(&stubRegistry{})

		rec := httptest.NewRecorder()
		server.handleForceFinish(rec, httptest.NewRequest(http.MethodPost, "/rooms/finish", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps an unknown room to 404", func(t *testing.T) {
		server := newTestServer(&stubRegistry{finishErr: apperror.ErrRoomNotFound})

		rec := httptest.NewRecorder()
		server.handleForceFinish(rec, httptest.NewRequest(http.MethodPost, "/rooms/finish?code=NOPE42", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("maps an already finished game to 409", func(t *testing.T) {
		server := newTestServer(&stubRegistry{finishErr: apperror.ErrGameFinished})

		rec := httptest.NewRecorder()
		server.handleForceFinish(rec, httptest.NewRequest(http.MethodPost, "/rooms/finish?code=ABC234", nil))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("rejects non-POST requests", func(t *testing.T) {
		server := newTestServer(&stubRegistry{})

		rec := httptest.NewRecorder()
		server.handleForceFinish(rec, httptest.NewRequest(http.MethodGet, "/rooms/finish?code=ABC234", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
