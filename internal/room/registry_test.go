package room

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/service"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	registry := NewRegistry(context.Background(), testLogger(), stubBot{}, &memGames{}, &memArchive{}, time.Minute)
	t.Cleanup(registry.Shutdown)

	return registry
}

func TestRegistry_CreateAndGet(t *testing.T) {
	registry := newTestRegistry(t)

	// When: a room is created
	actor, err := registry.CreateRoom(entity.ModeVersus, service.DifficultyMid)
	require.NoError(t, err)
	require.NotNil(t, actor)

	// Then: the code is shareable and resolves back to the same actor
	assert.Len(t, actor.Code(), 6)

	found, err := registry.Get(actor.Code())
	require.NoError(t, err)
	assert.Same(t, actor, found)
}

func TestRegistry_GetUnknownCode(t *testing.T) {
	registry := newTestRegistry(t)

	_, err := registry.Get("NOPE42")

	require.ErrorIs(t, err, apperror.ErrRoomNotFound)
}

func TestRegistry_CodesAreUnique(t *testing.T) {
	registry := newTestRegistry(t)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		actor, err := registry.CreateRoom(entity.ModeVersus, service.DifficultyMid)
		require.NoError(t, err)
		require.False(t, seen[actor.Code()], "room code %s issued twice", actor.Code())
		seen[actor.Code()] = true
	}
}

func TestRegistry_ListActiveRooms(t *testing.T) {
	registry := newTestRegistry(t)

	first, err := registry.CreateRoom(entity.ModeVersus, service.DifficultyMid)
	require.NoError(t, err)
	_, err = registry.CreateRoom(entity.ModeSolo, service.DifficultyHigh)
	require.NoError(t, err)

	infos := registry.ListActiveRooms(context.Background())

	require.Len(t, infos, 2)
	codes := []string{infos[0].Code, infos[1].Code}
	assert.Contains(t, codes, first.Code())
}

func TestRegistry_ForceFinishEvictsRoom(t *testing.T) {
	registry := newTestRegistry(t)

	actor, err := registry.CreateRoom(entity.ModeVersus, service.DifficultyMid)
	require.NoError(t, err)
	code := actor.Code()

	// When: the room is force-finished
	require.NoError(t, registry.ForceFinish(context.Background(), code))

	// Then: it disappears from the registry
	_, err = registry.Get(code)
	require.ErrorIs(t, err, apperror.ErrRoomNotFound)

	// Then: finishing it again reports the room as gone
	err = registry.ForceFinish(context.Background(), code)
	require.ErrorIs(t, err, apperror.ErrRoomNotFound)
}
