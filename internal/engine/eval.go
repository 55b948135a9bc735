package engine

import "github.com/benbeisheim/minichess-backend/internal/model"

// Material values in centipawns. The king value makes capturing it outweigh any material swing.
var material = [...]int{
	model.None:   0,
	model.Pawn:   100,
	model.Knight: 300,
	model.Bishop: 300,
	model.Rook:   500,
	model.Queen:  900,
	model.King:   20000,
}

const (
	pawnAdvanceBonus = 10
	centralFileBonus = 10
)

// Evaluate scores b from white's point of view: positive favours white.
func Evaluate(b *model.Board) int {
	score := 0
	left, right := centralFiles(b.Cols())
	b.Each(func(p model.Position, piece model.Piece) {
		v := material[piece.Kind]
		if piece.Kind == model.Pawn {
			v += pawnAdvanceBonus * pawnAdvance(b, p, piece.Color)
		}
		if piece.Kind != model.King && (p.X == left || p.X == right) {
			v += centralFileBonus
		}
		if piece.Color == model.White {
			score += v
		} else {
			score -= v
		}
	})
	return score
}

// centralFiles returns the two middle files; on odd widths both are the same file.
func centralFiles(cols int) (int, int) {
	return (cols - 1) / 2, cols / 2
}

// pawnAdvance counts rows moved beyond the pawn's start row.
func pawnAdvance(b *model.Board, p model.Position, c model.Color) int {
	start := b.PawnStartRow(c)
	n := (start - p.Y) * -model.Forward(c)
	if n < 0 {
		return 0
	}
	return n
}
