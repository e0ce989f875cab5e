package gomoku

import (
	"strings"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

// Pattern weights. Open patterns outscore blocked ones of the same length
// because they keep more than one winning continuation; move selection sums
// these per-direction scores, so the ordering must hold.
const (
	ScoreFive      = 100000
	ScoreOpenFour  = 10000
	ScoreFour      = 1000
	ScoreOpenThree = 1000
	ScoreThree     = 100
	ScoreOpenTwo   = 100
	ScoreTwo       = 10
	ScoreNone      = 0
)

// window symbols: the hypothetical stone and its friends, enemy stones
// (board edges count as enemy, a blocked end), and free cells.
const (
	symbolOwn   = 'o'
	symbolEnemy = 'x'
	symbolFree  = '_'
)

const windowReach = 4 // cells inspected on each side of the stone

// EvaluatePosition - scores placing a color stone at pos by extracting a
// 9-cell window around it on each of the four axes and summing the pattern
// scores. The cell at pos itself is scored as already holding the stone.
func EvaluatePosition(board *entity.Board, pos entity.Position, color string) int {
	total := 0

	for _, dir := range directions {
		window := extractWindow(board, pos, dir[0], dir[1], color)
		total += scoreWindow(window)
	}

	return total
}

// extractWindow - builds the symbol string for one axis: windowReach cells on
// each side of pos plus the hypothetical stone in the middle.
func extractWindow(board *entity.Board, pos entity.Position, dRow, dCol int, color string) string {
	var sb strings.Builder
	sb.Grow(2*windowReach + 1)

	for offset := -windowReach; offset <= windowReach; offset++ {
		if offset == 0 {
			sb.WriteByte(symbolOwn)
			continue
		}

		cell := entity.Position{Row: pos.Row + offset*dRow, Col: pos.Col + offset*dCol}
		switch {
		case !board.InBounds(cell):
			sb.WriteByte(symbolEnemy)
		case board.At(cell) == color:
			sb.WriteByte(symbolOwn)
		case board.At(cell) == entity.EmptyCell:
			sb.WriteByte(symbolFree)
		default:
			sb.WriteByte(symbolEnemy)
		}
	}

	return sb.String()
}

// scoreWindow - maps a window to the strongest pattern it contains.
// Checks run from strongest to weakest so a five is never counted as a four.
func scoreWindow(window string) int {
	switch {
	case strings.Contains(window, "ooooo"):
		return ScoreFive
	case strings.Contains(window, "_oooo_"):
		return ScoreOpenFour
	case strings.Contains(window, "oooo"):
		return ScoreFour
	case strings.Contains(window, "_ooo_"):
		return ScoreOpenThree
	case strings.Contains(window, "ooo"):
		return ScoreThree
	case strings.Contains(window, "_oo_"):
		return ScoreOpenTwo
	case strings.Contains(window, "oo"):
		return ScoreTwo
	default:
		return ScoreNone
	}
}

// CreatesRun - reports whether placing color at pos yields a contiguous run
// of at least length stones on some axis. Used to classify offensive moves
// (own four) and defensive moves (denying an opponent four).
func CreatesRun(board *entity.Board, pos entity.Position, color string, length int) bool {
	for _, dir := range directions {
		count := 1
		count += countRun(board, pos, dir[0], dir[1], color)
		count += countRun(board, pos, -dir[0], -dir[1], color)

		if count >= length {
			return true
		}
	}

	return false
}
