package room

import (
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

// Event actions pushed to sessions.
const (
	EventJoined      = "room:joined"
	EventState       = "game:state"
	EventChat        = "game:chat"
	EventError       = "game:error"
	EventDrawOffer   = "draw:offer"
	EventDrawOutcome = "draw:outcome"
	EventPaused      = "room:paused"
	EventReconnected = "room:reconnected"
)

// Event is what the actor pushes to a session's outbox. The transport layer
// forwards it to the client verbatim.
type Event struct {
	Action string         `json:"action"`
	Player *entity.Player `json:"player,omitempty"`
	Game   *entity.Game   `json:"game,omitempty"`
	From   string         `json:"from,omitempty"`
	Text   string         `json:"text,omitempty"`
	Accept *bool          `json:"accept,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// msg is the closed set of inbox messages; every room mutation arrives as
// exactly one of these and is handled start-to-finish before the next.
type msg interface{ isRoomMsg() }

type joinMsg struct {
	player *entity.Player
	outbox chan Event
	reply  chan joinReply
}

type joinReply struct {
	game   *entity.Game
	player *entity.Player
	err    error
}

type moveMsg struct {
	playerID string
	pos      entity.Position
}

type chatMsg struct {
	playerID string
	text     string
}

type drawRequestMsg struct {
	playerID string
}

type drawResponseMsg struct {
	playerID string
	accept   bool
}

type disconnectMsg struct {
	playerID string
}

// forfeitMsg is delivered by the grace timer; gen guards against a timer
// that fires after the player already reconnected.
type forfeitMsg struct {
	playerID string
	gen      int
}

type forceFinishMsg struct {
	reply chan error
}

type snapshotMsg struct {
	reply chan *entity.Game
}

func (joinMsg) isRoomMsg()         {}
func (moveMsg) isRoomMsg()         {}
func (chatMsg) isRoomMsg()         {}
func (drawRequestMsg) isRoomMsg()  {}
func (drawResponseMsg) isRoomMsg() {}
func (disconnectMsg) isRoomMsg()   {}
func (forfeitMsg) isRoomMsg()      {}
func (forceFinishMsg) isRoomMsg()  {}
func (snapshotMsg) isRoomMsg()     {}
