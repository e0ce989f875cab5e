package apperror

import "errors"

var (
	ErrGameFinished   = errors.New("game is already finished")
	ErrGameNotPlaying = errors.New("game is not in play")
	ErrNotYourTurn    = errors.New("it's not your turn")
	ErrCellOccupied   = errors.New("cell is already occupied")
	ErrOutOfBounds    = errors.New("position is out of bounds")

	ErrRoomFull     = errors.New("room is already full")
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomClosed   = errors.New("room is closed")

	ErrNoLegalMoves = errors.New("no legal moves available")

	ErrDrawAlreadyProposed = errors.New("a draw proposal is already outstanding")
	ErrNoDrawProposed      = errors.New("no draw proposal to respond to")
	ErrOwnDrawProposal     = errors.New("cannot respond to your own draw proposal")
)
