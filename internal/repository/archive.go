package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

// ArchiveRepository keeps finished games. Rows are insert-only: a game is
// archived exactly once, when its room finishes.
type ArchiveRepository interface {
	SaveFinished(ctx context.Context, game *entity.Game) error
	CountByWinner(ctx context.Context, winner string) (int, error)
}

type dbArchive struct {
	conn *sql.DB
}

func NewArchiveRepository(conn *sql.DB) ArchiveRepository {
	return &dbArchive{
		conn: conn,
	}
}

func (that *dbArchive) SaveFinished(ctx context.Context, game *entity.Game) error {
	movesJSON, err := json.Marshal(game.Moves)
	if err != nil {
		return fmt.Errorf("could not marshal move log: %w", err)
	}

	query := `INSERT INTO archived_games (game_id, room_code, mode, winner, moves, move_log, created_at, finished_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = that.conn.ExecContext(ctx, query,
		game.ID, game.RoomCode, game.Mode, game.Winner,
		len(game.Moves), string(movesJSON), game.CreatedAt, game.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert archived game: %w", err)
	}

	return nil
}

func (that *dbArchive) CountByWinner(ctx context.Context, winner string) (int, error) {
	query := `SELECT COUNT(*) FROM archived_games WHERE winner = ?`

	var count int
	if err := that.conn.QueryRowContext(ctx, query, winner).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count archived games: %w", err)
	}

	return count, nil
}
