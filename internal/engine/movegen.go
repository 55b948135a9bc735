package engine

import (
	"iter"

	"github.com/benbeisheim/minichess-backend/internal/model"
)

var (
	rookDirs    = []model.Position{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}}
	bishopDirs  = []model.Position{{X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1}}
	queenDirs   = append(append([]model.Position{}, rookDirs...), bishopDirs...)
	knightJumps = []model.Position{{X: 2, Y: 1}, {X: 2, Y: -1}, {X: -2, Y: 1}, {X: -2, Y: -1}, {X: 1, Y: 2}, {X: 1, Y: -2}, {X: -1, Y: 2}, {X: -1, Y: -2}}
	kingSteps   = queenDirs
)

// rule yields the pseudo-legal destinations of piece standing on from.
// It returns false once yield asks to stop.
type rule func(b *model.Board, from model.Position, piece model.Piece, yield func(model.Position) bool) bool

var rules = [...]rule{
	model.Pawn:   pawnRule,
	model.Knight: stepRule(knightJumps),
	model.Bishop: slideRule(bishopDirs),
	model.Rook:   slideRule(rookDirs),
	model.Queen:  slideRule(queenDirs),
	model.King:   stepRule(kingSteps),
}

// Destinations is the lazy sequence of pseudo-legal destinations for the piece on from.
// An empty or off-board origin yields nothing. Moves that leave the mover's own king
// attacked are included.
func Destinations(b *model.Board, from model.Position) iter.Seq[model.Position] {
	return func(yield func(model.Position) bool) {
		piece := b.At(from)
		if piece.IsEmpty() || int(piece.Kind) >= len(rules) {
			return
		}
		rules[piece.Kind](b, from, piece, yield)
	}
}

func pawnRule(b *model.Board, from model.Position, piece model.Piece, yield func(model.Position) bool) bool {
	dy := model.Forward(piece.Color)
	one := model.Position{X: from.X, Y: from.Y + dy}
	if b.InBounds(one) && b.At(one).IsEmpty() {
		if !yield(one) {
			return false
		}
		two := model.Position{X: from.X, Y: from.Y + 2*dy}
		if from.Y == b.PawnStartRow(piece.Color) && b.InBounds(two) && b.At(two).IsEmpty() {
			if !yield(two) {
				return false
			}
		}
	}
	for _, dx := range [2]int{-1, 1} {
		diag := model.Position{X: from.X + dx, Y: from.Y + dy}
		if !b.InBounds(diag) {
			continue
		}
		target := b.At(diag)
		if !target.IsEmpty() && target.Color != piece.Color {
			if !yield(diag) {
				return false
			}
		}
	}
	return true
}

func stepRule(offsets []model.Position) rule {
	return func(b *model.Board, from model.Position, piece model.Piece, yield func(model.Position) bool) bool {
		for _, d := range offsets {
			to := from.Add(d)
			if !b.InBounds(to) {
				continue
			}
			target := b.At(to)
			if target.IsEmpty() || target.Color != piece.Color {
				if !yield(to) {
					return false
				}
			}
		}
		return true
	}
}

func slideRule(dirs []model.Position) rule {
	return func(b *model.Board, from model.Position, piece model.Piece, yield func(model.Position) bool) bool {
		for _, d := range dirs {
			for to := from.Add(d); b.InBounds(to); to = to.Add(d) {
				target := b.At(to)
				if !target.IsEmpty() {
					if target.Color != piece.Color && !yield(to) {
						return false
					}
					break
				}
				if !yield(to) {
					return false
				}
			}
		}
		return true
	}
}

// PseudoMoves lists every pseudo-legal move for side, in row-major origin order.
// Pawn moves onto the promotion row carry a queen promotion.
func PseudoMoves(b *model.Board, side model.Color) []model.Move {
	var moves []model.Move
	b.Each(func(from model.Position, piece model.Piece) {
		if piece.Color != side {
			return
		}
		for to := range Destinations(b, from) {
			m := model.Move{From: from, To: to}
			if b.Promotes(piece, to) {
				m.Promotion = model.Queen
			}
			moves = append(moves, m)
		}
	})
	return moves
}

// Attacked reports whether any piece of attacker could capture on p.
// p is expected to hold a piece of the other color.
func Attacked(b *model.Board, p model.Position, attacker model.Color) bool {
	found := false
	b.Each(func(from model.Position, piece model.Piece) {
		if found || piece.Color != attacker {
			return
		}
		for to := range Destinations(b, from) {
			if to == p {
				found = true
				return
			}
		}
	})
	return found
}
