package websocket

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/room"
	"github.com/rocketscienceinc/gomoku-backend/internal/service"
)

type stubRegistry struct{}

func (stubRegistry) CreateRoom(_ string, _ service.Difficulty) (*room.Actor, error) {
	return nil, nil
}

func (stubRegistry) Get(_ string) (*room.Actor, error) {
	return nil, apperror.ErrRoomNotFound
}

type stubBot struct{}

func (stubBot) SelectMove(_ context.Context, _ *entity.Game, _ service.Difficulty) (*service.SelectedMove, error) {
	return nil, apperror.ErrNoLegalMoves
}

type stubGames struct{}

func (stubGames) CreateOrUpdate(_ context.Context, _ *entity.Game) error { return nil }
func (stubGames) DeleteByRoomCode(_ context.Context, _ string) error     { return nil }

type stubArchive struct{}

func (stubArchive) SaveFinished(_ context.Context, _ *entity.Game) error { return nil }

func newRoomActor(t *testing.T, logger *slog.Logger, code string) *room.Actor {
	t.Helper()

	actor := room.NewActor(context.Background(), code, room.Config{
		Logger:  logger,
		Code:    code,
		Mode:    entity.ModeVersus,
		Bot:     stubBot{},
		Games:   stubGames{},
		Archive: stubArchive{},
		Grace:   time.Minute,
	})
	t.Cleanup(func() {
		_ = actor.ForceFinish(context.Background())
	})

	return actor
}

func TestJoinRoom_SwitchingRoomsReleasesOldSeat(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := New(logger, stubRegistry{})

	first := newRoomActor(t, logger, "AAAA22")
	second := newRoomActor(t, logger, "BBBB22")

	var buf bytes.Buffer
	conn := newConnection(server, newBufrw(&buf), "alice")

	// Given: a connection seated in the first room
	require.NoError(t, server.joinRoom(context.Background(), conn, first, "room:join"))

	game, err := first.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, game.Players, 1)

	// When: the same connection joins a different room
	require.NoError(t, server.joinRoom(context.Background(), conn, second, "room:join"))

	// Then: the old seat is released instead of lingering online
	require.Eventually(t, func() bool {
		game, err := first.Snapshot(context.Background())
		return err == nil && len(game.Players) == 0
	}, 2*time.Second, 10*time.Millisecond)

	// Then: only the new room holds the player
	game, err = second.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, game.Players, 1)
	assert.Equal(t, "alice", game.Players[0].ID)
	assert.Same(t, second, conn.actor)
}
