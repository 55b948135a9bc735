package engine

import (
	"math/rand"
	"sync"
	"time"

	"github.com/benbeisheim/minichess-backend/internal/model"
)

const (
	// NoMovesScore is returned for a side with no moves, in favour of the other side.
	NoMovesScore = 9999

	// inf bounds every reachable evaluation.
	inf = 1 << 30
)

type Options struct {
	// StrictLegality drops moves that leave the mover's own king attacked.
	StrictLegality bool
	// Rand breaks ties between equally scored root moves. Nil seeds from the clock.
	Rand *rand.Rand
}

// Searcher picks moves with fixed-depth minimax and alpha-beta pruning.
// It is safe for concurrent use; each search works on its own board copies.
type Searcher struct {
	strict bool

	mu  sync.Mutex
	rng *rand.Rand
}

func New(opts Options) *Searcher {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Searcher{strict: opts.StrictLegality, rng: rng}
}

// Result describes a finished root search.
type Result struct {
	Move  model.Move
	Found bool
	Score int
	// Ties is how many root moves shared the best score.
	Ties  int
	Nodes int
}

// Moves lists the moves side may play: pseudo-legal, or fully legal in strict mode.
func (s *Searcher) Moves(b *model.Board, side model.Color) []model.Move {
	moves := PseudoMoves(b, side)
	if !s.strict {
		return moves
	}
	if _, ok := b.KingPosition(side); !ok {
		return moves
	}
	legal := moves[:0]
	for _, m := range moves {
		child := b.Clone()
		child.Apply(m)
		king, _ := child.KingPosition(side)
		if !Attacked(child, king, side.Opponent()) {
			legal = append(legal, m)
		}
	}
	return legal
}

// Targets lists the destinations of the piece on from, honoring the strict setting.
func (s *Searcher) Targets(b *model.Board, from model.Position) []model.Position {
	piece := b.At(from)
	var out []model.Position
	for _, m := range s.Moves(b, piece.Color) {
		if m.From == from {
			out = append(out, m.To)
		}
	}
	return out
}

func (s *Searcher) Evaluate(b *model.Board) int {
	return Evaluate(b)
}

// Status reports whether side can still play.
func (s *Searcher) Status(b *model.Board, side model.Color) model.Status {
	if !b.HasKing(side) {
		return model.StatusNoKing
	}
	if len(s.Moves(b, side)) == 0 {
		return model.StatusNoMoves
	}
	return model.StatusOngoing
}

// ChooseMove returns the best move for side searched depth plies deep.
// ok is false when side has no move at all.
func (s *Searcher) ChooseMove(b *model.Board, side model.Color, depth int) (model.Move, bool) {
	r := s.Search(b, side, depth)
	return r.Move, r.Found
}

// Search runs the root of the minimax search. b is never modified.
func (s *Searcher) Search(b *model.Board, side model.Color, depth int) Result {
	if depth < 1 {
		depth = 1
	}
	moves := s.Moves(b, side)
	if len(moves) == 0 {
		return Result{Score: noMovesScore(side)}
	}

	st := &searchState{s: s}
	st.kingAtRoot[model.White] = b.HasKing(model.White)
	st.kingAtRoot[model.Black] = b.HasKing(model.Black)

	maximizing := side == model.White
	best := inf
	if maximizing {
		best = -inf
	}
	var ties []model.Move
	for _, m := range moves {
		child := b.Clone()
		child.Apply(m)

		// Keep the window one point wider than the best so far, so equal scores come back exact.
		alpha, beta := -inf, inf
		if len(ties) > 0 {
			if maximizing {
				alpha = best - 1
			} else {
				beta = best + 1
			}
		}
		v := st.minimax(child, side.Opponent(), depth-1, alpha, beta)

		switch {
		case maximizing && v > best, !maximizing && v < best:
			best = v
			ties = append(ties[:0], m)
		case v == best:
			ties = append(ties, m)
		}
	}

	return Result{
		Move:  s.pick(ties),
		Found: true,
		Score: best,
		Ties:  len(ties),
		Nodes: st.nodes,
	}
}

func (s *Searcher) pick(moves []model.Move) model.Move {
	if len(moves) == 1 {
		return moves[0]
	}
	s.mu.Lock()
	i := s.rng.Intn(len(moves))
	s.mu.Unlock()
	return moves[i]
}

type searchState struct {
	s          *Searcher
	kingAtRoot [2]bool
	nodes      int
}

func (st *searchState) minimax(b *model.Board, side model.Color, depth, alpha, beta int) int {
	st.nodes++
	// a king captured during the search ends the line
	if st.kingAtRoot[side] && !b.HasKing(side) {
		return Evaluate(b)
	}
	if depth == 0 {
		return Evaluate(b)
	}
	moves := st.s.Moves(b, side)
	if len(moves) == 0 {
		return noMovesScore(side)
	}

	if side == model.White {
		best := -inf
		for _, m := range moves {
			child := b.Clone()
			child.Apply(m)
			v := st.minimax(child, model.Black, depth-1, alpha, beta)
			if v > best {
				best = v
			}
			if best > alpha {
				alpha = best
			}
			if beta <= alpha {
				break
			}
		}
		return best
	}

	best := inf
	for _, m := range moves {
		child := b.Clone()
		child.Apply(m)
		v := st.minimax(child, model.White, depth-1, alpha, beta)
		if v < best {
			best = v
		}
		if best < beta {
			beta = best
		}
		if beta <= alpha {
			break
		}
	}
	return best
}

func noMovesScore(side model.Color) int {
	if side == model.White {
		return -NoMovesScore
	}
	return NoMovesScore
}
