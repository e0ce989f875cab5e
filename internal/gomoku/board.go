// Package gomoku holds the pure board queries for the connect-five rules:
// move legality, win detection and position scoring. Functions here never
// mutate their input and are only called with pre-validated arguments.
package gomoku

import (
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

// DefaultRadius bounds candidate generation to cells near existing stones.
const DefaultRadius = 2

// directions are the four scan axes: horizontal, vertical and both diagonals.
var directions = [4][2]int{
	{0, 1},
	{1, 0},
	{1, 1},
	{1, -1},
}

// IsLegal - reports whether pos is in bounds and the cell is empty.
func IsLegal(board *entity.Board, pos entity.Position) bool {
	return board.InBounds(pos) && board.At(pos) == entity.EmptyCell
}

// Apply - returns a copy of the board with the stone placed.
// The caller must have checked legality first.
func Apply(board entity.Board, pos entity.Position, color string) entity.Board {
	board.Set(pos, color)
	return board
}

// DetectWin - reports whether the stone at last completes a line of at least
// WinLength same-color cells on any of the four axes. Checking only through
// the newest stone is sufficient because every win must pass through it.
func DetectWin(board *entity.Board, last entity.Position, color string) bool {
	for _, dir := range directions {
		count := 1
		count += countRun(board, last, dir[0], dir[1], color)
		count += countRun(board, last, -dir[0], -dir[1], color)

		if count >= entity.WinLength {
			return true
		}
	}

	return false
}

// countRun - counts contiguous same-color stones starting one step away
// from pos in the given direction.
func countRun(board *entity.Board, pos entity.Position, dRow, dCol int, color string) int {
	count := 0

	next := entity.Position{Row: pos.Row + dRow, Col: pos.Col + dCol}
	for board.InBounds(next) && board.At(next) == color {
		count++
		next.Row += dRow
		next.Col += dCol
	}

	return count
}

// IsFull - reports whether no empty cell remains.
func IsFull(board *entity.Board) bool {
	for _, cell := range board {
		if cell == entity.EmptyCell {
			return false
		}
	}

	return true
}

// RelevantMoves - returns every empty cell with at least one stone within
// Chebyshev distance radius, in row-major order. On an empty board (or when
// no stone has a neighbour cell free) it returns the center cell, so a caller
// always has at least one candidate while the board has room.
func RelevantMoves(board *entity.Board, radius int) []entity.Position {
	var moves []entity.Position

	for row := 0; row < entity.BoardSize; row++ {
		for col := 0; col < entity.BoardSize; col++ {
			pos := entity.Position{Row: row, Col: col}
			if board.At(pos) != entity.EmptyCell {
				continue
			}

			if hasNeighbour(board, pos, radius) {
				moves = append(moves, pos)
			}
		}
	}

	if len(moves) == 0 && !IsFull(board) {
		center := entity.Position{Row: entity.BoardSize / 2, Col: entity.BoardSize / 2}
		moves = append(moves, center)
	}

	return moves
}

func hasNeighbour(board *entity.Board, pos entity.Position, radius int) bool {
	for dRow := -radius; dRow <= radius; dRow++ {
		for dCol := -radius; dCol <= radius; dCol++ {
			if dRow == 0 && dCol == 0 {
				continue
			}

			neighbour := entity.Position{Row: pos.Row + dRow, Col: pos.Col + dCol}
			if board.InBounds(neighbour) && board.At(neighbour) != entity.EmptyCell {
				return true
			}
		}
	}

	return false
}
