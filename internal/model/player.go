package model

type ClientPlayer struct {
	ID       string `json:"id"`
	Color    Color  `json:"color"`
	Engine   bool   `json:"engine"`
	TimeLeft int64  `json:"timeLeft"` // milliseconds
}

type Players struct {
	White ClientPlayer `json:"white"`
	Black ClientPlayer `json:"black"`
}

func (p *Players) get(c Color) *ClientPlayer {
	if c == White {
		return &p.White
	}
	return &p.Black
}

type Mode string

const (
	// ModeComputer: the owner plays one color, the engine the other.
	ModeComputer Mode = "computer"
	// ModeLocal: the owner plays both colors on one device.
	ModeLocal Mode = "local"
)

func (m Mode) Valid() bool {
	return m == ModeComputer || m == ModeLocal
}
