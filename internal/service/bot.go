package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
)

type Difficulty string

const (
	DifficultyLow  Difficulty = "low"
	DifficultyMid  Difficulty = "mid"
	DifficultyHigh Difficulty = "high"
)

// Composite score bonuses layered on top of the pattern evaluation.
const (
	winBonus        = 1000000.0
	blockBonus      = 800000.0
	suggestionBonus = 5000.0
	adviceBonus     = 3000.0

	defenseWeight = 1.1
)

// Probability of taking the second-ranked candidate instead of the best one.
var secondPickChance = map[Difficulty]float64{
	DifficultyLow:  0.3,
	DifficultyMid:  0.1,
	DifficultyHigh: 0,
}

type AdviceOracle interface {
	Assess(ctx context.Context, board *entity.Board, turn string) (string, error)
}

type MoveSuggester interface {
	SuggestNextMoves(ctx context.Context, board *entity.Board) ([]entity.Position, error)
}

// SelectedMove is the selector's answer: where to play, how sure it is
// and a short human-readable justification.
type SelectedMove struct {
	Position   entity.Position `json:"position"`
	Confidence float64         `json:"confidence"`
	Reason     string          `json:"reason"`
}

type BotService interface {
	SelectMove(ctx context.Context, game *entity.Game, difficulty Difficulty) (*SelectedMove, error)
}

type botService struct {
	logger *slog.Logger

	oracle    AdviceOracle
	suggester MoveSuggester
	timeouts  map[Difficulty]time.Duration
	randFloat func() float64
}

// NewBotService - builds the move selector. oracle and suggester may be nil,
// in which case the corresponding signal is always absent. randFloat feeds the
// difficulty randomization and may be overridden in tests.
func NewBotService(logger *slog.Logger, oracle AdviceOracle, suggester MoveSuggester, timeouts map[Difficulty]time.Duration) BotService {
	return &botService{
		logger:    logger,
		oracle:    oracle,
		suggester: suggester,
		timeouts:  timeouts,
		randFloat: rand.Float64, //nolint: gosec // non-cryptographic difficulty jitter
	}
}

type evaluatedMove struct {
	pos   entity.Position
	score float64
}

type adviceSignals struct {
	assessment  string
	suggestions map[entity.Position]struct{}
}

func (that *botService) SelectMove(ctx context.Context, game *entity.Game, difficulty Difficulty) (*SelectedMove, error) {
	log := that.logger.With("method", "SelectMove", "roomCode", game.RoomCode)

	// Trivial opening: the first stone always goes to the center.
	if len(game.Moves) == 0 {
		center := entity.Position{Row: entity.BoardSize / 2, Col: entity.BoardSize / 2}
		return &SelectedMove{Position: center, Confidence: 1.0, Reason: "opening at center"}, nil
	}

	selected, err := that.rankAndPick(ctx, game, difficulty)
	if err == nil {
		return selected, nil
	}

	if errors.Is(err, apperror.ErrNoLegalMoves) {
		return nil, err
	}

	log.Error("move ranking failed, using fallback policy", "error", err)

	return that.fallbackMove(game)
}

func (that *botService) rankAndPick(ctx context.Context, game *entity.Game, difficulty Difficulty) (*SelectedMove, error) {
	self := game.Turn
	opponent := entity.OppositeColor(self)

	candidates := gomoku.RelevantMoves(&game.Board, gomoku.DefaultRadius)
	if len(candidates) == 0 {
		return nil, apperror.ErrNoLegalMoves
	}

	signals := that.fetchAdvice(ctx, game, difficulty)

	evaluated := make([]evaluatedMove, 0, len(candidates))
	for _, pos := range candidates {
		evaluated = append(evaluated, evaluatedMove{
			pos:   pos,
			score: that.compositeScore(&game.Board, pos, self, opponent, signals),
		})
	}

	// Stable sort keeps generation order as the tie-break.
	sort.SliceStable(evaluated, func(i, j int) bool {
		return evaluated[i].score > evaluated[j].score
	})

	chosen := evaluated[0]
	if len(evaluated) > 1 && that.randFloat() < secondPickChance[difficulty] {
		chosen = evaluated[1]
	}

	return &SelectedMove{
		Position:   chosen.pos,
		Confidence: math.Min(1.0, chosen.score/winBonus),
		Reason:     fmt.Sprintf("best of %d candidates (score %.0f)", len(evaluated), chosen.score),
	}, nil
}

// compositeScore - sums the pattern evaluation for both sides (defense
// weighted slightly above offense) with the immediate win/block bonuses and
// the external advice bonuses.
func (that *botService) compositeScore(board *entity.Board, pos entity.Position, self, opponent string, signals adviceSignals) float64 {
	score := float64(gomoku.EvaluatePosition(board, pos, self))
	score += defenseWeight * float64(gomoku.EvaluatePosition(board, pos, opponent))

	selfBoard := gomoku.Apply(*board, pos, self)
	if gomoku.DetectWin(&selfBoard, pos, self) {
		score += winBonus
	}

	opponentBoard := gomoku.Apply(*board, pos, opponent)
	if gomoku.DetectWin(&opponentBoard, pos, opponent) {
		score += blockBonus
	}

	if _, ok := signals.suggestions[pos]; ok {
		score += suggestionBonus
	}

	switch {
	case signalsDefense(signals.assessment) && gomoku.CreatesRun(board, pos, opponent, 4):
		score += adviceBonus
	case signalsOffense(signals.assessment) && gomoku.CreatesRun(board, pos, self, 4):
		score += adviceBonus
	}

	return score
}

// fetchAdvice - queries both advisers concurrently, each bounded by the
// difficulty timeout. Absence of a response is never an error: the decision
// proceeds with whatever arrived in time.
func (that *botService) fetchAdvice(ctx context.Context, game *entity.Game, difficulty Difficulty) adviceSignals {
	log := that.logger.With("method", "fetchAdvice", "roomCode", game.RoomCode)

	signals := adviceSignals{suggestions: make(map[entity.Position]struct{})}

	timeout, ok := that.timeouts[difficulty]
	if !ok || (that.oracle == nil && that.suggester == nil) {
		return signals
	}

	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	assessCh := make(chan string, 1)
	suggestCh := make(chan []entity.Position, 1)

	go func() {
		if that.oracle == nil {
			assessCh <- ""
			return
		}

		text, err := that.oracle.Assess(fetchCtx, &game.Board, game.Turn)
		if err != nil {
			log.Debug("oracle unavailable", "error", err)
			assessCh <- ""
			return
		}
		assessCh <- text
	}()

	go func() {
		if that.suggester == nil {
			suggestCh <- nil
			return
		}

		moves, err := that.suggester.SuggestNextMoves(fetchCtx, &game.Board)
		if err != nil {
			log.Debug("suggester unavailable", "error", err)
			suggestCh <- nil
			return
		}
		suggestCh <- moves
	}()

	// Both fetches resolve (value or timeout) before scoring proceeds.
	signals.assessment = <-assessCh
	for _, pos := range <-suggestCh {
		if game.Board.InBounds(pos) {
			signals.suggestions[pos] = struct{}{}
		}
	}

	return signals
}

// fallbackMove - cheap deterministic policy used when ranking fails: first
// immediate win, else first immediate block, else the highest self-evaluated
// legal move. Never fails while a legal move exists.
func (that *botService) fallbackMove(game *entity.Game) (*SelectedMove, error) {
	self := game.Turn
	opponent := entity.OppositeColor(self)

	var bestPos entity.Position
	var bestScore = -1
	var blockPos *entity.Position

	for row := 0; row < entity.BoardSize; row++ {
		for col := 0; col < entity.BoardSize; col++ {
			pos := entity.Position{Row: row, Col: col}
			if !gomoku.IsLegal(&game.Board, pos) {
				continue
			}

			selfBoard := gomoku.Apply(game.Board, pos, self)
			if gomoku.DetectWin(&selfBoard, pos, self) {
				return &SelectedMove{Position: pos, Confidence: 1.0, Reason: "immediate win"}, nil
			}

			if blockPos == nil {
				opponentBoard := gomoku.Apply(game.Board, pos, opponent)
				if gomoku.DetectWin(&opponentBoard, pos, opponent) {
					blocked := pos
					blockPos = &blocked
				}
			}

			if score := gomoku.EvaluatePosition(&game.Board, pos, self); score > bestScore {
				bestScore = score
				bestPos = pos
			}
		}
	}

	if blockPos != nil {
		return &SelectedMove{Position: *blockPos, Confidence: 0.9, Reason: "blocking immediate loss"}, nil
	}

	if bestScore < 0 {
		return nil, apperror.ErrNoLegalMoves
	}

	return &SelectedMove{Position: bestPos, Confidence: 0.5, Reason: "best evaluated fallback"}, nil
}

func signalsDefense(assessment string) bool {
	text := strings.ToLower(assessment)
	return strings.Contains(text, "defen") || strings.Contains(text, "block")
}

func signalsOffense(assessment string) bool {
	text := strings.ToLower(assessment)
	return strings.Contains(text, "offen") || strings.Contains(text, "attack")
}
