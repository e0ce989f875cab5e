package gomoku

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

func TestScoreWindow(t *testing.T) {
	tests := []struct {
		name   string
		window string
		want   int
	}{
		{"five in a row", "__ooooo__", ScoreFive},
		{"open four", "__oooo___", ScoreOpenFour},
		{"blocked four", "xoooo____", ScoreFour},
		{"open three", "__ooo____", ScoreOpenThree},
		{"blocked three", "xooo_____", ScoreThree},
		{"open two", "___oo____", ScoreOpenTwo},
		{"blocked two", "xoo______", ScoreTwo},
		{"lone stone", "____o____", ScoreNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scoreWindow(tt.window))
		})
	}
}

func TestScoreWindow_Ordering(t *testing.T) {
	// Open patterns must strictly outscore blocked ones of the same length.
	assert.Greater(t, scoreWindow("__oooo___"), scoreWindow("xoooo____"))
	assert.Greater(t, scoreWindow("__ooo____"), scoreWindow("xooo_____"))
	assert.Greater(t, scoreWindow("___oo____"), scoreWindow("xoo______"))
}

func TestEvaluatePosition(t *testing.T) {
	t.Run("completing a five scores highest", func(t *testing.T) {
		var board entity.Board

		// Given: four black stones with a gap at (0,4)
		for col := 0; col < 4; col++ {
			board.Set(entity.Position{Row: 0, Col: col}, entity.ColorBlack)
		}

		score := EvaluatePosition(&board, entity.Position{Row: 0, Col: 4}, entity.ColorBlack)

		assert.GreaterOrEqual(t, score, ScoreFive)
	})

	t.Run("board edge counts as a blocked end", func(t *testing.T) {
		var edgeBoard, openBoard entity.Board

		// Given: three stones against the edge vs. three in the open
		for col := 0; col < 3; col++ {
			edgeBoard.Set(entity.Position{Row: 0, Col: col}, entity.ColorBlack)
			openBoard.Set(entity.Position{Row: 7, Col: 5 + col}, entity.ColorBlack)
		}

		edgeScore := EvaluatePosition(&edgeBoard, entity.Position{Row: 0, Col: 3}, entity.ColorBlack)
		openScore := EvaluatePosition(&openBoard, entity.Position{Row: 7, Col: 8}, entity.ColorBlack)

		// Then: the open continuation is worth more than the edge-blocked one
		assert.Greater(t, openScore, edgeScore)
	})

	t.Run("empty surroundings score nothing", func(t *testing.T) {
		var board entity.Board

		score := EvaluatePosition(&board, entity.Position{Row: 7, Col: 7}, entity.ColorBlack)

		assert.Equal(t, ScoreNone, score)
	})
}

func TestCreatesRun(t *testing.T) {
	var board entity.Board

	// Given: three white stones in a row
	for col := 3; col < 6; col++ {
		board.Set(entity.Position{Row: 5, Col: col}, entity.ColorWhite)
	}

	// Then: extending to four is detected, five is not yet there
	assert.True(t, CreatesRun(&board, entity.Position{Row: 5, Col: 6}, entity.ColorWhite, 4))
	assert.False(t, CreatesRun(&board, entity.Position{Row: 5, Col: 6}, entity.ColorWhite, 5))
	assert.False(t, CreatesRun(&board, entity.Position{Row: 10, Col: 10}, entity.ColorWhite, 4))
}
