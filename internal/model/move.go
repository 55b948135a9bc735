package model

import "fmt"

// Move is an origin and destination on one board. Promotion is None or Queen.
type Move struct {
	From      Position `json:"from"`
	To        Position `json:"to"`
	Promotion Kind     `json:"promotion,omitempty"`
}

func (m Move) String() string {
	s := fmt.Sprintf("(%d,%d)->(%d,%d)", m.From.X, m.From.Y, m.To.X, m.To.Y)
	if m.Promotion != None {
		s += "=" + m.Promotion.notation()
	}
	return s
}

// Ply is one applied half-move as recorded in the history.
type Ply struct {
	Piece         Piece    `json:"piece"`
	From          Position `json:"from"`
	To            Position `json:"to"`
	CapturedPiece *Piece   `json:"capturedPiece"`
	Promotion     Kind     `json:"promotion,omitempty"`
	Notation      string   `json:"notation"`
	ByEngine      bool     `json:"byEngine"`
}

// HistoryMove pairs a white ply with the black reply, like a numbered move in a score sheet.
type HistoryMove struct {
	WhitePly *Ply `json:"whitePly"`
	BlackPly *Ply `json:"blackPly"`
}

// Promotes reports whether moving piece to dest reaches its promotion row.
func (b *Board) Promotes(piece Piece, dest Position) bool {
	return piece.Kind == Pawn && dest.Y == b.PromotionRow(piece.Color)
}

// Apply plays m in place and returns the captured piece (empty if none).
// A pawn landing on its promotion row always becomes a queen of the same color.
func (b *Board) Apply(m Move) Piece {
	piece := b.At(m.From)
	captured := b.At(m.To)
	if b.Promotes(piece, m.To) {
		piece.Kind = Queen
	}
	b.Set(m.To, piece)
	b.Set(m.From, Piece{})
	return captured
}

// Notation renders m in short algebraic style against the position before the move.
func (b *Board) Notation(m Move) string {
	piece := b.At(m.From)
	capture := !b.At(m.To).IsEmpty()

	s := piece.Kind.notation()
	if piece.Kind == Pawn && capture {
		s += string(rune('a' + m.From.X))
	}
	if capture {
		s += "x"
	}
	s += b.SquareName(m.To)
	if b.Promotes(piece, m.To) {
		s += "=Q"
	}
	return s
}

// Hint is a suggested move with the evaluation of the position it leads to.
type Hint struct {
	Move       Move   `json:"move"`
	Notation   string `json:"notation"`
	Evaluation int    `json:"evaluation"`
}
