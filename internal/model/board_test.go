package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseBoardRoundTrip(t *testing.T) {
	codes := []string{
		MiniStart,
		"k.../..../..../..../...K",
		"xkx/xxx/xKx",
		"n..b/.K../..Q./r..k/...N",
	}
	for _, code := range codes {
		b, err := ParseBoard(code)
		if err != nil {
			t.Fatalf("ParseBoard(%q): %v", code, err)
		}
		if got := b.String(); got != code {
			t.Errorf("round trip: got %q, want %q", got, code)
		}
	}

	four := NewFourPlayerBoard()
	again, err := ParseBoard(four.String())
	if err != nil {
		t.Fatal(err)
	}
	if again.String() != four.String() {
		t.Fatal("four-player board did not survive a round trip")
	}
}

func TestParseBoardAcceptsNewlines(t *testing.T) {
	b, err := ParseBoard("rqkr\npppp\n....\nPPPP\nRQKR\n")
	if err != nil {
		t.Fatal(err)
	}
	if b.String() != MiniStart {
		t.Fatalf("got %q", b.String())
	}
	if b.Rows() != 5 || b.Cols() != 4 {
		t.Fatalf("got %dx%d", b.Cols(), b.Rows())
	}
}

func TestParseBoardErrors(t *testing.T) {
	for _, code := range []string{"", "rqkr/ppp", "rqkr/pppz", " / "} {
		if _, err := ParseBoard(code); !errors.Is(err, ErrBadBoard) {
			t.Errorf("ParseBoard(%q): err = %v, want ErrBadBoard", code, err)
		}
	}
}

func TestMiniStartLayout(t *testing.T) {
	b := NewMiniBoard()
	checks := []struct {
		p    Position
		want Piece
	}{
		{Position{0, 0}, Piece{Rook, Black}},
		{Position{1, 0}, Piece{Queen, Black}},
		{Position{2, 0}, Piece{King, Black}},
		{Position{2, 4}, Piece{King, White}},
		{Position{3, 3}, Piece{Pawn, White}},
		{Position{1, 2}, Piece{}},
	}
	for _, c := range checks {
		if got := b.At(c.p); got != c.want {
			t.Errorf("At(%v) = %+v, want %+v", c.p, got, c.want)
		}
	}
	if b.PawnStartRow(White) != 3 || b.PawnStartRow(Black) != 1 {
		t.Error("pawn start rows")
	}
	if b.PromotionRow(White) != 0 || b.PromotionRow(Black) != 4 {
		t.Error("promotion rows")
	}
}

func TestFourPlayerBoardShape(t *testing.T) {
	b := NewFourPlayerBoard()
	if b.Rows() != 14 || b.Cols() != 14 {
		t.Fatalf("got %dx%d", b.Cols(), b.Rows())
	}
	for _, p := range []Position{{0, 0}, {2, 2}, {13, 0}, {11, 13}, {0, 11}} {
		if b.InBounds(p) {
			t.Errorf("%v should be dead", p)
		}
	}
	for _, p := range []Position{{3, 0}, {0, 3}, {13, 10}, {7, 7}} {
		if !b.InBounds(p) {
			t.Errorf("%v should be playable", p)
		}
	}
	if b.At(Position{7, 0}) != (Piece{King, Black}) || b.At(Position{7, 13}) != (Piece{King, White}) {
		t.Error("kings not on the long arm")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := NewMiniBoard()
	c := b.Clone()
	c.Set(Position{0, 0}, Piece{})
	if b.At(Position{0, 0}).IsEmpty() {
		t.Fatal("clone shares cells with the original")
	}
}

func TestApplyPromotesToQueen(t *testing.T) {
	b, _ := ParseBoard(".k../P.../..../...p/K...")
	captured := b.Apply(Move{From: Position{0, 1}, To: Position{0, 0}, Promotion: Knight})
	if !captured.IsEmpty() {
		t.Fatalf("captured %+v", captured)
	}
	if got := b.At(Position{0, 0}); got != (Piece{Queen, White}) {
		t.Fatalf("white promotion gave %+v", got)
	}

	b.Apply(Move{From: Position{3, 3}, To: Position{3, 4}})
	if got := b.At(Position{3, 4}); got != (Piece{Queen, Black}) {
		t.Fatalf("black promotion gave %+v", got)
	}
}

func TestApplyReturnsCapture(t *testing.T) {
	b, _ := ParseBoard("..k./..../.q../P.../...K")
	captured := b.Apply(Move{From: Position{0, 3}, To: Position{1, 2}})
	if captured != (Piece{Queen, Black}) {
		t.Fatalf("captured %+v", captured)
	}
	if !b.At(Position{0, 3}).IsEmpty() || b.At(Position{1, 2}) != (Piece{Pawn, White}) {
		t.Fatalf("board after capture: %s", b)
	}
}

func TestNotation(t *testing.T) {
	b, _ := ParseBoard("r.k./.P../.q../P.../.N.K")
	tests := []struct {
		m    Move
		want string
	}{
		{Move{From: Position{0, 3}, To: Position{0, 2}}, "a3"},
		{Move{From: Position{0, 3}, To: Position{1, 2}}, "axb3"},
		{Move{From: Position{1, 4}, To: Position{2, 2}}, "Nc3"},
		{Move{From: Position{1, 1}, To: Position{0, 0}}, "bxa5=Q"},
		{Move{From: Position{1, 1}, To: Position{1, 0}}, "b5=Q"},
	}
	for _, tt := range tests {
		if got := b.Notation(tt.m); got != tt.want {
			t.Errorf("Notation(%v) = %q, want %q", tt.m, got, tt.want)
		}
	}
}

func TestBoardJSON(t *testing.T) {
	data, err := json.Marshal(NewMiniBoard())
	if err != nil {
		t.Fatal(err)
	}
	want := `{"rows":5,"cols":4,"code":"rqkr/pppp/..../PPPP/RQKR"}`
	if string(data) != want {
		t.Fatalf("got %s", data)
	}

	var b Board
	if err := json.Unmarshal([]byte(`{"code":"xkx/xxx/xKx"}`), &b); err != nil {
		t.Fatal(err)
	}
	if b.InBounds(Position{0, 0}) || !b.HasKing(White) {
		t.Fatalf("decoded %s", b.String())
	}
	if err := json.Unmarshal([]byte(`{"code":"kk/k"}`), &b); !errors.Is(err, ErrBadBoard) {
		t.Fatalf("err = %v", err)
	}
}

func TestMoveJSON(t *testing.T) {
	data, err := json.Marshal(Move{From: Position{1, 1}, To: Position{1, 0}, Promotion: Queen})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"from":{"x":1,"y":1},"to":{"x":1,"y":0},"promotion":"queen"}` {
		t.Fatalf("got %s", data)
	}
	data, _ = json.Marshal(Move{})
	if string(data) != `{"from":{"x":0,"y":0},"to":{"x":0,"y":0}}` {
		t.Fatalf("empty promotion not omitted: %s", data)
	}
}

func TestParseColor(t *testing.T) {
	for in, want := range map[string]Color{"white": White, "W": White, "black": Black, "b": Black} {
		got, err := ParseColor(in)
		if err != nil || got != want {
			t.Errorf("ParseColor(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseColor("red"); err == nil {
		t.Error("expected error for red")
	}
}

func TestClock(t *testing.T) {
	now := time.Unix(0, 0)
	c := NewClock(time.Minute)
	c.now = func() time.Time { return now }

	c.Start()
	now = now.Add(20 * time.Second)
	if got := c.TimeLeft(); got != 40*time.Second {
		t.Fatalf("running: %v", got)
	}
	c.Stop()
	now = now.Add(time.Hour)
	if got := c.TimeLeft(); got != 40*time.Second {
		t.Fatalf("stopped: %v", got)
	}

	c.Start()
	now = now.Add(2 * time.Minute)
	if got := c.TimeLeft(); got != 0 {
		t.Fatalf("expired clock = %v, want 0", got)
	}
}
