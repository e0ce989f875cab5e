package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
	"github.com/rocketscienceinc/gomoku-backend/internal/service"
)

const (
	persistTimeout = 2 * time.Second
	persistBackoff = 200 * time.Millisecond
	botTimeout     = 5 * time.Second
)

type botService interface {
	SelectMove(ctx context.Context, game *entity.Game, difficulty service.Difficulty) (*service.SelectedMove, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	DeleteByRoomCode(ctx context.Context, roomCode string) error
}

type archiveRepo interface {
	SaveFinished(ctx context.Context, game *entity.Game) error
}

// session is one live client bound to this room. Identity is the player ID,
// not the connection: a reconnect swaps the outbox and bumps gen so a pending
// forfeit timer for the old connection can never fire against the new one.
type session struct {
	player *entity.Player
	outbox chan Event
	online bool
	gen    int
}

type drawProposal struct {
	proposer string // color
}

// Config carries everything an Actor needs from the registry.
type Config struct {
	Logger     *slog.Logger
	Code       string
	Mode       string
	Difficulty service.Difficulty
	Bot        botService
	Games      gameRepo
	Archive    archiveRepo
	Grace      time.Duration
	OnFinish   func(code string)
}

// Actor owns the authoritative game state of one room. All mutations flow
// through its inbox and are applied one at a time by the loop goroutine.
type Actor struct {
	logger *slog.Logger

	code       string
	game       *entity.Game
	sessions   map[string]*session
	draw       *drawProposal
	difficulty service.Difficulty

	bot     botService
	games   gameRepo
	archive archiveRepo
	grace   time.Duration

	inbox    chan msg
	ctx      context.Context
	cancel   context.CancelFunc
	onFinish func(code string)
}

func NewActor(parent context.Context, gameID string, conf Config) *Actor {
	ctx, cancel := context.WithCancel(parent)

	game := entity.NewGame(gameID, conf.Code, conf.Mode)
	if game.IsSolo() {
		// In solo mode the single human always plays black; the second color
		// is computer-controlled from the start.
		game.Players = append(game.Players, entity.NewBotPlayer(conf.Code, entity.ColorWhite))
	}

	actor := &Actor{
		logger:     conf.Logger.With("component", "room", "roomCode", conf.Code),
		code:       conf.Code,
		game:       game,
		sessions:   make(map[string]*session),
		difficulty: conf.Difficulty,
		bot:        conf.Bot,
		games:      conf.Games,
		archive:    conf.Archive,
		grace:      conf.Grace,
		inbox:      make(chan msg, 64),
		ctx:        ctx,
		cancel:     cancel,
		onFinish:   conf.OnFinish,
	}

	go actor.loop()

	return actor
}

func (that *Actor) Code() string {
	return that.code
}

// Join - registers (or re-binds) a session and reports the assigned player.
func (that *Actor) Join(ctx context.Context, player *entity.Player, outbox chan Event) (*entity.Game, *entity.Player, error) {
	reply := make(chan joinReply, 1)

	if err := that.send(ctx, joinMsg{player: player, outbox: outbox, reply: reply}); err != nil {
		return nil, nil, err
	}

	select {
	case res := <-reply:
		return res.game, res.player, res.err
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("join interrupted: %w", ctx.Err())
	case <-that.ctx.Done():
		return nil, nil, apperror.ErrRoomClosed
	}
}

func (that *Actor) SubmitMove(playerID string, pos entity.Position) {
	that.sendAsync(moveMsg{playerID: playerID, pos: pos})
}

func (that *Actor) SendChat(playerID, text string) {
	that.sendAsync(chatMsg{playerID: playerID, text: text})
}

func (that *Actor) RequestDraw(playerID string) {
	that.sendAsync(drawRequestMsg{playerID: playerID})
}

func (that *Actor) RespondDraw(playerID string, accept bool) {
	that.sendAsync(drawResponseMsg{playerID: playerID, accept: accept})
}

// Disconnect - reports that a session's transport dropped or the player left.
// Both take the same grace/forfeit path.
func (that *Actor) Disconnect(playerID string) {
	that.sendAsync(disconnectMsg{playerID: playerID})
}

// ForceFinish - administrative hook: ends the game as a draw.
func (that *Actor) ForceFinish(ctx context.Context) error {
	reply := make(chan error, 1)

	if err := that.send(ctx, forceFinishMsg{reply: reply}); err != nil {
		return err
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return fmt.Errorf("force finish interrupted: %w", ctx.Err())
	case <-that.ctx.Done():
		return nil
	}
}

// Snapshot - returns a copy of the current game state.
func (that *Actor) Snapshot(ctx context.Context) (*entity.Game, error) {
	reply := make(chan *entity.Game, 1)

	if err := that.send(ctx, snapshotMsg{reply: reply}); err != nil {
		return nil, err
	}

	select {
	case game := <-reply:
		return game, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("snapshot interrupted: %w", ctx.Err())
	case <-that.ctx.Done():
		return nil, apperror.ErrRoomClosed
	}
}

func (that *Actor) send(ctx context.Context, m msg) error {
	select {
	case that.inbox <- m:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("room inbox unavailable: %w", ctx.Err())
	case <-that.ctx.Done():
		return apperror.ErrRoomClosed
	}
}

func (that *Actor) sendAsync(m msg) {
	select {
	case that.inbox <- m:
	case <-that.ctx.Done():
	}
}

func (that *Actor) loop() {
	for {
		select {
		case <-that.ctx.Done():
			that.shutdown()
			return

		case m := <-that.inbox:
			switch typed := m.(type) {
			case joinMsg:
				that.handleJoin(typed)
			case moveMsg:
				that.handleMove(typed)
			case chatMsg:
				that.handleChat(typed)
			case drawRequestMsg:
				that.handleDrawRequest(typed)
			case drawResponseMsg:
				that.handleDrawResponse(typed)
			case disconnectMsg:
				that.handleDisconnect(typed)
			case forfeitMsg:
				that.handleForfeit(typed)
			case forceFinishMsg:
				typed.reply <- that.handleForceFinish()
			case snapshotMsg:
				typed.reply <- that.snapshotGame()
			}
		}
	}
}

func (that *Actor) shutdown() {
	for id, sess := range that.sessions {
		close(sess.outbox)
		delete(that.sessions, id)
	}
}

func (that *Actor) handleJoin(m joinMsg) {
	log := that.logger.With("method", "handleJoin", "playerID", m.player.ID)

	if sess, ok := that.sessions[m.player.ID]; ok {
		that.handleReconnect(sess, m)
		return
	}

	if that.game.IsFinished() {
		m.reply <- joinReply{err: apperror.ErrRoomClosed}
		return
	}

	color, ok := that.freeColor()
	if !ok {
		m.reply <- joinReply{err: apperror.ErrRoomFull}
		return
	}

	player := &entity.Player{ID: m.player.ID, Color: color, RoomCode: that.code}
	that.game.Players = append(that.game.Players, player)
	that.sessions[player.ID] = &session{player: player, outbox: m.outbox, online: true}

	if that.roomFilled() {
		that.game.Status = entity.StatusPlaying
	}
	that.game.UpdatedAt = time.Now().UTC()

	that.persist()

	m.reply <- joinReply{game: that.snapshotGame(), player: player}
	that.broadcastExcept(player.ID, Event{Action: EventState, Game: that.snapshotGame()})

	log.Info("player joined", "color", color, "status", that.game.Status)
}

func (that *Actor) handleReconnect(sess *session, m joinMsg) {
	log := that.logger.With("method", "handleReconnect", "playerID", m.player.ID)

	if sess.outbox != m.outbox {
		close(sess.outbox) // release the pump of the stale connection
	}
	sess.outbox = m.outbox
	sess.online = true
	sess.gen++ // invalidate any pending forfeit timer

	if that.game.IsPaused() && that.allOnline() {
		that.game.Status = entity.StatusPlaying
		that.game.UpdatedAt = time.Now().UTC()
		that.persist()
	}

	m.reply <- joinReply{game: that.snapshotGame(), player: sess.player}
	that.broadcastExcept(sess.player.ID, Event{
		Action: EventReconnected,
		Player: sess.player,
		Game:   that.snapshotGame(),
	})

	log.Info("player reconnected", "status", that.game.Status)
}

// freeColor - picks the next unassigned human color. Solo mode only ever has
// black free because white belongs to the computer.
func (that *Actor) freeColor() (string, bool) {
	if that.game.PlayerByColor(entity.ColorBlack) == nil {
		return entity.ColorBlack, true
	}
	if that.game.PlayerByColor(entity.ColorWhite) == nil {
		return entity.ColorWhite, true
	}

	return "", false
}

func (that *Actor) roomFilled() bool {
	return that.game.PlayerByColor(entity.ColorBlack) != nil && that.game.PlayerByColor(entity.ColorWhite) != nil
}

func (that *Actor) allOnline() bool {
	for _, sess := range that.sessions {
		if !sess.online {
			return false
		}
	}

	return true
}

func (that *Actor) handleMove(m moveMsg) {
	log := that.logger.With("method", "handleMove", "playerID", m.playerID)

	sess, ok := that.sessions[m.playerID]
	if !ok {
		log.Warn("move from unknown session")
		return
	}

	if err := that.validateMove(sess.player.Color, m.pos); err != nil {
		that.sendTo(m.playerID, Event{Action: EventError, Error: err.Error()})
		return
	}

	that.applyMove(sess.player.Color, m.pos)

	if that.game.IsPlaying() && that.game.IsSolo() && that.botToMove() {
		that.playBotMove()
	}
}

// validateMove - strict order: game must be in play, the cell must be legal,
// and it must be the submitter's turn.
func (that *Actor) validateMove(color string, pos entity.Position) error {
	switch {
	case that.game.IsFinished():
		return apperror.ErrGameFinished
	case !that.game.IsPlaying():
		return apperror.ErrGameNotPlaying
	case !that.game.Board.InBounds(pos):
		return apperror.ErrOutOfBounds
	case that.game.Board.At(pos) != entity.EmptyCell:
		return apperror.ErrCellOccupied
	case that.game.Turn != color:
		return apperror.ErrNotYourTurn
	}

	return nil
}

// applyMove - the single mutation step for both human and computer stones:
// place, log, resolve win/draw, flip the turn, persist, broadcast.
func (that *Actor) applyMove(color string, pos entity.Position) {
	that.game.Board = gomoku.Apply(that.game.Board, pos, color)
	that.game.Moves = append(that.game.Moves, entity.Move{
		Color:    color,
		Row:      pos.Row,
		Col:      pos.Col,
		PlayedAt: time.Now().UTC(),
	})
	that.game.UpdatedAt = time.Now().UTC()

	switch {
	case gomoku.DetectWin(&that.game.Board, pos, color):
		that.game.Finish(color)
	case gomoku.IsFull(&that.game.Board):
		that.game.Finish(entity.WinnerDraw)
	default:
		that.game.Turn = entity.OppositeColor(color)
	}

	that.persist()
	that.broadcast(Event{Action: EventState, Game: that.snapshotGame()})

	if that.game.IsFinished() {
		that.finishRoom()
	}
}

// playBotMove - obtains and applies the computer reply before the next inbox
// message is processed, so a room never races two pending inputs.
func (that *Actor) playBotMove() {
	log := that.logger.With("method", "playBotMove")

	ctx, cancel := context.WithTimeout(that.ctx, botTimeout)
	defer cancel()

	selected, err := that.bot.SelectMove(ctx, that.snapshotGame(), that.difficulty)
	if err != nil {
		if errors.Is(err, apperror.ErrNoLegalMoves) {
			// Invariant violation: a full board should already be a draw.
			log.Error("no legal moves on an unfinished board, forcing draw")
			that.game.Finish(entity.WinnerDraw)
			that.persist()
			that.broadcast(Event{Action: EventState, Game: that.snapshotGame()})
			that.finishRoom()
			return
		}

		log.Error("bot failed to select a move", "error", err)
		return
	}

	log.Debug("bot move selected", "row", selected.Position.Row, "col", selected.Position.Col,
		"confidence", selected.Confidence, "reason", selected.Reason)

	that.applyMove(that.game.Turn, selected.Position)
}

func (that *Actor) botToMove() bool {
	player := that.game.PlayerByColor(that.game.Turn)
	return player != nil && player.IsBot()
}

func (that *Actor) handleChat(m chatMsg) {
	sess, ok := that.sessions[m.playerID]
	if !ok {
		return
	}

	// Chat is relayed verbatim, never persisted and never touches turn logic.
	that.broadcastExcept(m.playerID, Event{Action: EventChat, From: sess.player.ID, Text: m.text})
}

func (that *Actor) handleDrawRequest(m drawRequestMsg) {
	log := that.logger.With("method", "handleDrawRequest", "playerID", m.playerID)

	sess, ok := that.sessions[m.playerID]
	if !ok {
		return
	}

	if !that.game.IsPlaying() {
		that.sendTo(m.playerID, Event{Action: EventError, Error: apperror.ErrGameNotPlaying.Error()})
		return
	}

	if that.draw != nil {
		that.sendTo(m.playerID, Event{Action: EventError, Error: apperror.ErrDrawAlreadyProposed.Error()})
		return
	}

	that.draw = &drawProposal{proposer: sess.player.Color}

	// The offer goes to the opponent only; the proposer never sees their own
	// proposal as something to answer.
	that.broadcastExcept(m.playerID, Event{Action: EventDrawOffer, From: sess.player.ID})

	log.Info("draw proposed", "color", sess.player.Color)
}

func (that *Actor) handleDrawResponse(m drawResponseMsg) {
	log := that.logger.With("method", "handleDrawResponse", "playerID", m.playerID)

	sess, ok := that.sessions[m.playerID]
	if !ok {
		return
	}

	if that.draw == nil {
		that.sendTo(m.playerID, Event{Action: EventError, Error: apperror.ErrNoDrawProposed.Error()})
		return
	}

	if that.draw.proposer == sess.player.Color {
		that.sendTo(m.playerID, Event{Action: EventError, Error: apperror.ErrOwnDrawProposal.Error()})
		return
	}

	accept := m.accept
	that.draw = nil

	if !accept {
		that.broadcast(Event{Action: EventDrawOutcome, Accept: &accept})
		log.Info("draw rejected")
		return
	}

	that.game.Finish(entity.WinnerDraw)
	that.persist()
	that.broadcast(Event{Action: EventDrawOutcome, Accept: &accept, Game: that.snapshotGame()})
	that.finishRoom()

	log.Info("draw accepted")
}

func (that *Actor) handleDisconnect(m disconnectMsg) {
	log := that.logger.With("method", "handleDisconnect", "playerID", m.playerID)

	sess, ok := that.sessions[m.playerID]
	if !ok {
		return
	}

	if !sess.online {
		return
	}

	sess.online = false
	sess.gen++

	if that.game.IsWaiting() || that.game.IsFinished() {
		close(sess.outbox)
		delete(that.sessions, m.playerID)

		// Leaving before the game starts vacates the seat entirely; the
		// color becomes available to the next joiner.
		if that.game.IsWaiting() {
			that.removePlayer(m.playerID)
			that.persist()
		}

		log.Info("session removed", "status", that.game.Status)
		return
	}

	if that.game.IsPlaying() {
		that.game.Status = entity.StatusPaused
		that.game.UpdatedAt = time.Now().UTC()
		that.persist()
	}

	that.broadcastExcept(m.playerID, Event{Action: EventPaused, Player: sess.player, Game: that.snapshotGame()})

	gen := sess.gen
	playerID := m.playerID
	time.AfterFunc(that.grace, func() {
		that.sendAsync(forfeitMsg{playerID: playerID, gen: gen})
	})

	log.Info("grace timer started", "grace", that.grace)
}

// handleForfeit - fires when the grace window elapsed. A stale generation
// means the player reconnected in time and the timer is void.
func (that *Actor) handleForfeit(m forfeitMsg) {
	log := that.logger.With("method", "handleForfeit", "playerID", m.playerID)

	sess, ok := that.sessions[m.playerID]
	if !ok || sess.online || sess.gen != m.gen {
		return
	}

	if !that.game.IsPaused() {
		return
	}

	winner := entity.OppositeColor(sess.player.Color)
	that.game.Finish(winner)
	that.persist()
	that.broadcast(Event{Action: EventState, Game: that.snapshotGame()})
	that.finishRoom()

	log.Info("player forfeited by timeout", "winner", winner)
}

func (that *Actor) handleForceFinish() error {
	if that.game.IsFinished() {
		return apperror.ErrGameFinished
	}

	that.game.Finish(entity.WinnerDraw)
	that.persist()
	that.broadcast(Event{Action: EventState, Game: that.snapshotGame()})
	that.finishRoom()

	return nil
}

// finishRoom - archives the final state and tears the actor down. The live
// store entry is removed; from here on persistence is archival only.
func (that *Actor) finishRoom() {
	log := that.logger.With("method", "finishRoom")

	ctx, cancel := context.WithTimeout(context.WithoutCancel(that.ctx), persistTimeout)
	defer cancel()

	if err := that.archive.SaveFinished(ctx, that.snapshotGame()); err != nil {
		log.Error("failed to archive finished game", "error", err)
	}

	if err := that.games.DeleteByRoomCode(ctx, that.code); err != nil {
		log.Error("failed to delete live game state", "error", err)
	}

	if that.onFinish != nil {
		that.onFinish(that.code)
	}

	that.cancel()
}

// persist - writes the live state with one bounded retry. If both attempts
// fail the in-memory state stays authoritative and durability is degraded.
func (that *Actor) persist() {
	log := that.logger.With("method", "persist")

	save := func() error {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(that.ctx), persistTimeout)
		defer cancel()

		return that.games.CreateOrUpdate(ctx, that.game)
	}

	err := save()
	if err == nil {
		return
	}

	log.Warn("failed to persist game state, retrying", "error", err)
	time.Sleep(persistBackoff)

	if err = save(); err != nil {
		log.Error("persistence degraded, in-memory state remains authoritative", "error", err)
	}
}

func (that *Actor) removePlayer(playerID string) {
	players := make([]*entity.Player, 0, len(that.game.Players))
	for _, player := range that.game.Players {
		if player.ID != playerID {
			players = append(players, player)
		}
	}

	that.game.Players = players
	that.game.UpdatedAt = time.Now().UTC()
}

func (that *Actor) snapshotGame() *entity.Game {
	game := *that.game

	game.Moves = make([]entity.Move, len(that.game.Moves))
	copy(game.Moves, that.game.Moves)

	game.Players = make([]*entity.Player, 0, len(that.game.Players))
	for _, player := range that.game.Players {
		copied := *player
		game.Players = append(game.Players, &copied)
	}

	return &game
}

// sendTo - delivers an event to one session; a full outbox drops the event
// rather than blocking the room.
func (that *Actor) sendTo(playerID string, event Event) {
	sess, ok := that.sessions[playerID]
	if !ok || !sess.online {
		return
	}

	select {
	case sess.outbox <- event:
	default:
		that.logger.Warn("session outbox full, event dropped", "playerID", playerID, "action", event.Action)
	}
}

func (that *Actor) broadcast(event Event) {
	that.broadcastExcept("", event)
}

func (that *Actor) broadcastExcept(skipPlayerID string, event Event) {
	for id := range that.sessions {
		if id == skipPlayerID {
			continue
		}
		that.sendTo(id, event)
	}
}
