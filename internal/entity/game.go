package entity

import (
	"time"
)

const (
	BoardSize  = 15
	BoardCells = BoardSize * BoardSize
	WinLength  = 5
)

const (
	StatusWaiting  = "waiting"
	StatusPlaying  = "playing"
	StatusPaused   = "paused"
	StatusFinished = "finished"

	ColorBlack = "B"
	ColorWhite = "W"
	WinnerDraw = "-"

	EmptyCell = ""
)

const (
	ModeSolo   = "solo"
	ModeVersus = "versus"
)

// Position addresses a single cell on the board.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Board is a flat row-major grid of BoardSize×BoardSize cells.
// A cell holds ColorBlack, ColorWhite or EmptyCell and never reverts
// to empty once set.
type Board [BoardCells]string

// Move is one accepted stone placement; the log is append-only.
type Move struct {
	Color    string    `json:"color"`
	Row      int       `json:"row"`
	Col      int       `json:"col"`
	PlayedAt time.Time `json:"played_at"`
}

type Game struct {
	ID        string    `json:"id"`
	RoomCode  string    `json:"room_code"`
	Board     Board     `json:"board"`
	Turn      string    `json:"turn"`
	Status    string    `json:"status"`
	Mode      string    `json:"mode"`
	Winner    string    `json:"winner"`
	Moves     []Move    `json:"moves"`
	Players   []*Player `json:"players,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewGame(id, roomCode, mode string) *Game {
	now := time.Now().UTC()

	return &Game{
		ID:        id,
		RoomCode:  roomCode,
		Turn:      ColorBlack,
		Status:    StatusWaiting,
		Mode:      mode,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (that *Board) InBounds(pos Position) bool {
	return pos.Row >= 0 && pos.Row < BoardSize && pos.Col >= 0 && pos.Col < BoardSize
}

func (that *Board) At(pos Position) string {
	return that[pos.Row*BoardSize+pos.Col]
}

func (that *Board) Set(pos Position, color string) {
	that[pos.Row*BoardSize+pos.Col] = color
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) IsPlaying() bool {
	return that.Status == StatusPlaying
}

func (that *Game) IsPaused() bool {
	return that.Status == StatusPaused
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsSolo() bool {
	return that.Mode == ModeSolo
}

// PlayerByColor - returns the player holding the given color, or nil.
func (that *Game) PlayerByColor(color string) *Player {
	for _, player := range that.Players {
		if player.Color == color {
			return player
		}
	}

	return nil
}

// Finish - marks the game finished with the given winner and clears the turn.
func (that *Game) Finish(winner string) {
	that.Winner = winner
	that.Status = StatusFinished
	that.Turn = ""
	that.UpdatedAt = time.Now().UTC()
}

// OppositeColor - returns the other player color.
func OppositeColor(color string) string {
	if color == ColorBlack {
		return ColorWhite
	}
	return ColorBlack
}
