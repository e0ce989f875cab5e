package entity

type Player struct {
	ID       string `json:"id"`
	Color    string `json:"color,omitempty"`
	RoomCode string `json:"room_code,omitempty"`
	Bot      bool   `json:"bot,omitempty"`
}

func NewBotPlayer(roomCode, color string) *Player {
	return &Player{
		ID:       "bot:" + roomCode,
		Color:    color,
		RoomCode: roomCode,
		Bot:      true,
	}
}

func (that *Player) IsBot() bool {
	return that.Bot
}
