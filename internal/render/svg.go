// Package render draws boards as SVG for share previews and the board.svg endpoint.
package render

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/benbeisheim/minichess-backend/internal/model"
)

const (
	DefaultSquareSize = 64

	lightFill     = "fill:#f0d9b5"
	darkFill      = "fill:#b58863"
	deadFill      = "fill:#3b3b3b"
	highlightFill = "fill:#cdd26a;fill-opacity:0.75"
)

var glyphs = map[model.Kind][2]string{
	model.King:   {"♔", "♚"},
	model.Queen:  {"♕", "♛"},
	model.Rook:   {"♖", "♜"},
	model.Bishop: {"♗", "♝"},
	model.Knight: {"♘", "♞"},
	model.Pawn:   {"♙", "♟"},
}

type Options struct {
	SquareSize int
	// LastMove highlights its two squares when set.
	LastMove *model.Move
	// Flip draws the board from black's side.
	Flip bool
}

// Board writes an SVG image of b to w.
func Board(w io.Writer, b *model.Board, opts Options) {
	size := opts.SquareSize
	if size <= 0 {
		size = DefaultSquareSize
	}
	canvas := svg.New(w)
	canvas.Start(b.Cols()*size, b.Rows()*size)
	canvas.Title(fmt.Sprintf("%dx%d board", b.Cols(), b.Rows()))

	for y := 0; y < b.Rows(); y++ {
		for x := 0; x < b.Cols(); x++ {
			p := model.Position{X: x, Y: y}
			px, py := screen(b, p, size, opts.Flip)

			switch {
			case !b.InBounds(p):
				canvas.Rect(px, py, size, size, deadFill)
				continue
			case (x+y)%2 == 0:
				canvas.Rect(px, py, size, size, lightFill)
			default:
				canvas.Rect(px, py, size, size, darkFill)
			}
			if opts.LastMove != nil && (opts.LastMove.From == p || opts.LastMove.To == p) {
				canvas.Rect(px, py, size, size, highlightFill)
			}

			piece := b.At(p)
			if piece.IsEmpty() {
				continue
			}
			glyph := glyphs[piece.Kind][piece.Color]
			canvas.Text(px+size/2, py+size*3/4, glyph,
				fmt.Sprintf("font-size:%dpx;text-anchor:middle;font-family:serif", size*3/4))
		}
	}
	canvas.End()
}

func screen(b *model.Board, p model.Position, size int, flip bool) (int, int) {
	x, y := p.X, p.Y
	if flip {
		x = b.Cols() - 1 - x
		y = b.Rows() - 1 - y
	}
	return x * size, y * size
}
