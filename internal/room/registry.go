package room

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/pkg"
	"github.com/rocketscienceinc/gomoku-backend/internal/service"
)

const createRoomAttempts = 5

// RoomInfo is the introspection row returned to administrative tooling.
type RoomInfo struct {
	Code    string `json:"code"`
	Mode    string `json:"mode"`
	Status  string `json:"status"`
	Players int    `json:"players"`
	Moves   int    `json:"moves"`
}

// Registry owns the room-code → actor map. Rooms are created on demand and
// evicted when their game finishes; lookups across rooms are concurrent, the
// state inside each room is not.
type Registry struct {
	logger *slog.Logger

	bot     botService
	games   gameRepo
	archive archiveRepo
	grace   time.Duration

	mu    sync.RWMutex
	rooms map[string]*Actor

	ctx    context.Context
	cancel context.CancelFunc
}

func NewRegistry(parent context.Context, logger *slog.Logger, bot botService, games gameRepo, archive archiveRepo, grace time.Duration) *Registry {
	ctx, cancel := context.WithCancel(parent)

	return &Registry{
		logger:  logger.With("component", "registry"),
		bot:     bot,
		games:   games,
		archive: archive,
		grace:   grace,
		rooms:   make(map[string]*Actor),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// CreateRoom - allocates a fresh room with a unique code and spawns its actor.
func (that *Registry) CreateRoom(mode string, difficulty service.Difficulty) (*Actor, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	var code string
	for attempt := 0; attempt < createRoomAttempts; attempt++ {
		candidate := pkg.GenerateRoomCode()
		if _, taken := that.rooms[candidate]; !taken && candidate != "" {
			code = candidate
			break
		}
	}

	if code == "" {
		return nil, fmt.Errorf("failed to allocate a room code after %d attempts", createRoomAttempts)
	}

	actor := NewActor(that.ctx, pkg.GenerateGameID(), Config{
		Logger:     that.logger,
		Code:       code,
		Mode:       mode,
		Difficulty: difficulty,
		Bot:        that.bot,
		Games:      that.games,
		Archive:    that.archive,
		Grace:      that.grace,
		OnFinish:   that.evict,
	})
	that.rooms[code] = actor

	that.logger.Info("room created", "roomCode", code, "mode", mode)

	return actor, nil
}

// Get - looks up the actor for a room code.
func (that *Registry) Get(code string) (*Actor, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	actor, ok := that.rooms[code]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	return actor, nil
}

// ListActiveRooms - snapshots every live room for administrative tooling.
func (that *Registry) ListActiveRooms(ctx context.Context) []RoomInfo {
	that.mu.RLock()
	actors := make([]*Actor, 0, len(that.rooms))
	for _, actor := range that.rooms {
		actors = append(actors, actor)
	}
	that.mu.RUnlock()

	infos := make([]RoomInfo, 0, len(actors))
	for _, actor := range actors {
		game, err := actor.Snapshot(ctx)
		if err != nil {
			continue // room finished while listing
		}

		infos = append(infos, RoomInfo{
			Code:    game.RoomCode,
			Mode:    game.Mode,
			Status:  game.Status,
			Players: len(game.Players),
			Moves:   len(game.Moves),
		})
	}

	return infos
}

// ForceFinish - administrative hook to end a room's game as a draw.
func (that *Registry) ForceFinish(ctx context.Context, code string) error {
	actor, err := that.Get(code)
	if err != nil {
		return err
	}

	if err = actor.ForceFinish(ctx); err != nil {
		return fmt.Errorf("failed to force finish room %s: %w", code, err)
	}

	return nil
}

func (that *Registry) evict(code string) {
	that.mu.Lock()
	delete(that.rooms, code)
	that.mu.Unlock()

	that.logger.Info("room evicted", "roomCode", code)
}

// Shutdown - cancels every room actor.
func (that *Registry) Shutdown() {
	that.cancel()

	that.mu.Lock()
	clear(that.rooms)
	that.mu.Unlock()
}
