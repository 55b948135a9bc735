package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/benbeisheim/minichess-backend/internal/engine"
	"github.com/benbeisheim/minichess-backend/internal/model"
	"github.com/rs/zerolog"
)

func newTestService() *GameService {
	searcher := engine.New(engine.Options{Rand: rand.New(rand.NewSource(1))})
	return NewGameService(NewGameManager(), searcher, Config{
		DefaultDifficulty: 1,
		ClockTime:         time.Minute,
	}, zerolog.Nop())
}

func TestCreateGameDefaults(t *testing.T) {
	gs := newTestService()
	id, err := gs.CreateGame("p1", CreateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	state, err := gs.GetGameState(id)
	if err != nil {
		t.Fatal(err)
	}
	if state.Mode != model.ModeComputer || state.Depth != 2 {
		t.Fatalf("mode %q depth %d", state.Mode, state.Depth)
	}
	if state.Board.String() != model.MiniStart || state.ToMove != model.White {
		t.Fatalf("board %s to move %v", state.Board, state.ToMove)
	}
	if state.Players.White.ID != "p1" || !state.Players.Black.Engine {
		t.Fatalf("players = %+v", state.Players)
	}
}

func TestCreateGameAsBlackEngineOpens(t *testing.T) {
	gs := newTestService()
	id, err := gs.CreateGame("p1", CreateOptions{Color: model.Black, Difficulty: 2})
	if err != nil {
		t.Fatal(err)
	}
	gs.Wait()

	state, _ := gs.GetGameState(id)
	if state.ToMove != model.Black {
		t.Fatalf("engine has not opened, to move = %v", state.ToMove)
	}
	if len(state.MoveHistory) != 1 || !state.MoveHistory[0].WhitePly.ByEngine {
		t.Fatalf("history = %+v", state.MoveHistory)
	}
}

func TestHandleMoveSchedulesEngine(t *testing.T) {
	gs := newTestService()
	id, _ := gs.CreateGame("p1", CreateOptions{})

	move := model.Move{From: model.Position{X: 0, Y: 3}, To: model.Position{X: 0, Y: 2}}
	if err := gs.HandleMove(id, "p1", move); err != nil {
		t.Fatal(err)
	}
	gs.Wait()

	state, _ := gs.GetGameState(id)
	if state.ToMove != model.White || state.MoveHistory[0].BlackPly == nil {
		t.Fatalf("engine did not reply: %+v", state.MoveHistory)
	}
	if err := gs.HandleMove("missing", "p1", move); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestCreateGameRejectsBadOptions(t *testing.T) {
	gs := newTestService()
	bad := []CreateOptions{
		{Mode: "network"},
		{Difficulty: 9},
		{Variant: "hexagonal"},
		{Setup: "kk/k"},
	}
	for _, opts := range bad {
		if _, err := gs.CreateGame("p1", opts); !errors.Is(err, ErrBadRequest) {
			t.Errorf("%+v: err = %v, want ErrBadRequest", opts, err)
		}
	}
	if _, err := gs.CreateGame("p1", CreateOptions{Setup: "kk/k"}); !errors.Is(err, model.ErrBadBoard) {
		t.Errorf("setup error should wrap ErrBadBoard, got %v", err)
	}
}

func TestCreateGameFromSetup(t *testing.T) {
	gs := newTestService()
	id, err := gs.CreateGame("p1", CreateOptions{
		Mode:   model.ModeLocal,
		Setup:  "k.../Q.../..../..../K...",
		ToMove: model.Black,
	})
	if err != nil {
		t.Fatal(err)
	}
	state, _ := gs.GetGameState(id)
	if state.ToMove != model.Black || state.Board.String() != "k.../Q.../..../..../K..." {
		t.Fatalf("state = %s, %v", state.Board, state.ToMove)
	}
}

func TestCreateFourPlayerVariant(t *testing.T) {
	gs := newTestService()
	id, err := gs.CreateGame("p1", CreateOptions{Mode: model.ModeLocal, Variant: VariantFourPlayer})
	if err != nil {
		t.Fatal(err)
	}
	board, last, err := gs.Board(id)
	if err != nil {
		t.Fatal(err)
	}
	if board.Rows() != 14 || last != nil {
		t.Fatalf("rows %d, last move %v", board.Rows(), last)
	}
}

func TestHintAndEvaluation(t *testing.T) {
	gs := newTestService()
	id, _ := gs.CreateGame("p1", CreateOptions{Mode: model.ModeLocal, Setup: "..k./..../.q../P.../...K"})

	hint, err := gs.Hint(id, 1)
	if err != nil {
		t.Fatal(err)
	}
	if hint.Notation != "axb3" {
		t.Fatalf("hint = %+v", hint)
	}
	if _, err := gs.Hint(id, 7); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("unknown difficulty: err = %v", err)
	}
	if _, err := gs.Hint("missing", 1); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("missing game: err = %v", err)
	}

	score, err := gs.Evaluation(id)
	if err != nil || score >= 0 {
		t.Fatalf("evaluation = %d, %v", score, err)
	}
}

func TestHintAfterGameOver(t *testing.T) {
	gs := newTestService()
	id, _ := gs.CreateGame("p1", CreateOptions{Mode: model.ModeLocal, Setup: "xkx/xxx/xKx"})
	if _, err := gs.Hint(id, 1); !errors.Is(err, ErrNoMove) {
		t.Fatalf("err = %v, want ErrNoMove", err)
	}
}

func TestAnalyze(t *testing.T) {
	gs := newTestService()

	a, err := gs.Analyze("..k./..../.q../P.../...K", model.White, 2)
	if err != nil {
		t.Fatal(err)
	}
	if a.Status != model.StatusOngoing || a.Move == nil || a.Notation != "axb3" {
		t.Fatalf("analysis = %+v", a)
	}
	if a.Evaluation >= 0 || a.Score <= 0 || a.Nodes == 0 {
		t.Fatalf("scores: eval %d score %d nodes %d", a.Evaluation, a.Score, a.Nodes)
	}

	a, err = gs.Analyze("xkx/xxx/xKx", model.Black, 1)
	if err != nil {
		t.Fatal(err)
	}
	if a.Status != model.StatusNoMoves || a.Move != nil || a.Score != engine.NoMovesScore {
		t.Fatalf("stuck analysis = %+v", a)
	}

	if _, err := gs.Analyze("not a board", model.White, 1); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("err = %v", err)
	}
}

func TestGameManager(t *testing.T) {
	gm := NewGameManager()
	g := model.NewGame("g1", "p1", model.NewMiniBoard(), model.White, model.Settings{Mode: model.ModeLocal, Depth: 1},
		engine.New(engine.Options{}), zerolog.Nop())

	if err := gm.Add(g); err != nil {
		t.Fatal(err)
	}
	if err := gm.Add(g); !errors.Is(err, ErrGameExists) {
		t.Fatalf("duplicate add: %v", err)
	}
	if got, err := gm.GetGame("g1"); err != nil || got != g {
		t.Fatalf("GetGame = %v, %v", got, err)
	}
	if gm.Count() != 1 {
		t.Fatalf("count = %d", gm.Count())
	}

	if removed := gm.Prune(time.Now().Add(-time.Hour)); len(removed) != 0 {
		t.Fatalf("pruned a fresh game: %v", removed)
	}
	removed := gm.Prune(time.Now().Add(time.Second))
	if len(removed) != 1 || removed[0] != "g1" {
		t.Fatalf("removed = %v", removed)
	}
	if _, err := gm.GetGame("g1"); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("after prune: %v", err)
	}
}

func TestJanitorDropsIdleGames(t *testing.T) {
	gs := newTestService()
	id, err := gs.CreateGame("p1", CreateOptions{Mode: model.ModeLocal})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		gs.RunJanitor(ctx, 5*time.Millisecond, time.Nanosecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for gs.gameManager.Count() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if _, err := gs.GetGameState(id); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("idle game still live: %v", err)
	}
}
