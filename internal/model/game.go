package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/minichess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"
)

var (
	ErrGameOver    = errors.New("game is over")
	ErrNotYourTurn = errors.New("not your turn")
	ErrNotInGame   = errors.New("player not in game")
	ErrNoPiece     = errors.New("no piece at from square")
	ErrIllegalMove = errors.New("illegal move")
)

// Engine is what a game needs from the move generator and search.
type Engine interface {
	Moves(b *Board, side Color) []Move
	Status(b *Board, side Color) Status
	Evaluate(b *Board) int
	ChooseMove(b *Board, side Color, depth int) (Move, bool)
}

type Settings struct {
	Mode       Mode
	HumanColor Color
	Depth      int
	ClockTime  time.Duration
}

// The connections watching a specific game
type GameConnections struct {
	connections map[*websocket.Conn]string // connection -> playerID
	mu          sync.Mutex

	// sent is the sequence number of the newest state written to the watchers
	sent uint64
}

// claim reports whether the state numbered seq is newer than anything already sent,
// and records it as sent. Callers hold mu.
func (gc *GameConnections) claim(seq uint64) bool {
	if seq <= gc.sent {
		return false
	}
	gc.sent = seq
	return true
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[*websocket.Conn]string),
	}
}

// Game owns the authoritative board of one game and its observers.
type Game struct {
	ID       string
	mu       sync.Mutex
	state    GameState
	settings Settings
	engine   Engine
	log      zerolog.Logger
	version  int

	// broadcasts numbers every encoded state so older ones can be dropped
	broadcasts uint64

	connections *GameConnections
	whiteClock  *Clock
	blackClock  *Clock
	lastActive  time.Time
}

// Outcome ends a game: Reason is the status of the side that could not continue.
type Outcome struct {
	Reason Status `json:"reason"`
	Winner Color  `json:"winner"`
}

type GameState struct {
	Sound          string         `json:"sound"`
	Mode           Mode           `json:"mode"`
	Board          *Board         `json:"boardState"`
	ToMove         Color          `json:"toMove"`
	MoveHistory    []HistoryMove  `json:"moveHistory"`
	CapturedPieces CapturedPieces `json:"capturedPieces"`
	LegalMoves     []Move         `json:"legalMoves"`
	Evaluation     int            `json:"evaluation"`
	Depth          int            `json:"depth"`
	EngineThinking bool           `json:"engineThinking"`
	Resolve        *Outcome       `json:"resolve"`
	Players        Players        `json:"players"`
	LastMove       *Move          `json:"lastMove"`
}

// CapturedPieces lists what each color has taken.
type CapturedPieces struct {
	White []Piece `json:"white"`
	Black []Piece `json:"black"`
}

// NewGame starts a game on board with toMove to play. ownerID controls the human side(s).
func NewGame(id, ownerID string, board *Board, toMove Color, settings Settings, engine Engine, log zerolog.Logger) *Game {
	g := &Game{
		ID:          id,
		settings:    settings,
		engine:      engine,
		log:         log.With().Str("game", id).Logger(),
		connections: NewGameConnections(),
		whiteClock:  NewClock(settings.ClockTime),
		blackClock:  NewClock(settings.ClockTime),
		lastActive:  time.Now(),
	}
	g.state = GameState{
		Mode:        settings.Mode,
		Board:       board,
		ToMove:      toMove,
		MoveHistory: make([]HistoryMove, 0),
		CapturedPieces: CapturedPieces{
			White: make([]Piece, 0),
			Black: make([]Piece, 0),
		},
		Depth: settings.Depth,
	}
	g.state.Players.White = ClientPlayer{ID: ownerID, Color: White}
	g.state.Players.Black = ClientPlayer{ID: ownerID, Color: Black}
	if settings.Mode == ModeComputer {
		engineSide := g.state.Players.get(settings.HumanColor.Opponent())
		engineSide.ID = ""
		engineSide.Engine = true
	}
	g.refreshLocked()
	return g
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.snapshotLocked()
}

func (g *Game) snapshotLocked() GameState {
	s := g.state
	s.Board = g.state.Board.Clone()
	s.MoveHistory = append([]HistoryMove(nil), g.state.MoveHistory...)
	s.CapturedPieces.White = append([]Piece{}, g.state.CapturedPieces.White...)
	s.CapturedPieces.Black = append([]Piece{}, g.state.CapturedPieces.Black...)
	s.LegalMoves = append([]Move{}, g.state.LegalMoves...)
	s.Players.White.TimeLeft = g.whiteClock.TimeLeft().Milliseconds()
	s.Players.Black.TimeLeft = g.blackClock.TimeLeft().Milliseconds()
	return s
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.isPlayerInGame(playerID)
}

func (g *Game) isPlayerInGame(playerID string) bool {
	if playerID == "" {
		return false
	}
	return g.state.Players.White.ID == playerID || g.state.Players.Black.ID == playerID
}

// MakeMove plays a human move for playerID.
func (g *Game) MakeMove(playerID string, move Move) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.Resolve != nil {
		return ErrGameOver
	}
	if !g.isPlayerInGame(playerID) {
		return ErrNotInGame
	}
	if g.state.Players.get(g.state.ToMove).ID != playerID {
		return ErrNotYourTurn
	}
	piece := g.state.Board.At(move.From)
	if piece.IsEmpty() {
		return ErrNoPiece
	}
	if piece.Color != g.state.ToMove {
		return fmt.Errorf("%w: piece belongs to %s", ErrNotYourTurn, piece.Color)
	}
	if !g.isLegalLocked(move) {
		return fmt.Errorf("%w: %s", ErrIllegalMove, move)
	}

	g.applyLocked(move, false)
	return nil
}

func (g *Game) isLegalLocked(move Move) bool {
	for _, m := range g.state.LegalMoves {
		if m.From == move.From && m.To == move.To {
			return true
		}
	}
	return false
}

// EngineToMove reports whether the engine owns the side to move.
func (g *Game) EngineToMove() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.engineToMoveLocked()
}

func (g *Game) engineToMoveLocked() bool {
	return g.settings.Mode == ModeComputer &&
		g.state.Resolve == nil &&
		g.state.ToMove != g.settings.HumanColor
}

// PlayEngineTurn searches a copy of the board without holding the game lock and
// applies the chosen move if nothing else moved in the meantime.
func (g *Game) PlayEngineTurn() (Move, bool) {
	g.mu.Lock()
	if !g.engineToMoveLocked() {
		g.mu.Unlock()
		return Move{}, false
	}
	snapshot := g.state.Board.Clone()
	side := g.state.ToMove
	version := g.version
	depth := g.settings.Depth
	g.state.EngineThinking = true
	g.mu.Unlock()

	start := time.Now()
	move, ok := g.engine.ChooseMove(snapshot, side, depth)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.state.EngineThinking = false

	if g.version != version {
		g.log.Warn().Int("version", version).Int("current", g.version).Msg("discarding stale engine move")
		return Move{}, false
	}
	if !ok {
		// the terminal check after the previous move normally catches this first
		g.finishLocked(StatusNoMoves, side.Opponent())
		g.broadcastLocked()
		return Move{}, false
	}

	g.log.Info().
		Str("move", snapshot.Notation(move)).
		Int("depth", depth).
		Dur("took", time.Since(start)).
		Msg("engine moved")
	g.applyLocked(move, true)
	return move, true
}

// Hint runs the search for the side to move without playing the result.
func (g *Game) Hint(depth int) (Hint, bool) {
	g.mu.Lock()
	if g.state.Resolve != nil {
		g.mu.Unlock()
		return Hint{}, false
	}
	snapshot := g.state.Board.Clone()
	side := g.state.ToMove
	g.mu.Unlock()

	move, ok := g.engine.ChooseMove(snapshot, side, depth)
	if !ok {
		return Hint{}, false
	}
	h := Hint{Move: move, Notation: snapshot.Notation(move)}
	snapshot.Apply(move)
	h.Evaluation = g.engine.Evaluate(snapshot)
	return h, true
}

func (g *Game) Evaluation() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.state.Evaluation
}

func (g *Game) applyLocked(move Move, byEngine bool) {
	board := g.state.Board
	mover := g.state.ToMove
	piece := board.At(move.From)

	ply := &Ply{
		Piece:    piece,
		From:     move.From,
		To:       move.To,
		Notation: board.Notation(move),
		ByEngine: byEngine,
	}
	if board.Promotes(piece, move.To) {
		ply.Promotion = Queen
	}

	g.clock(mover).Stop()
	captured := board.Apply(move)

	switch {
	case !captured.IsEmpty():
		g.state.Sound = "capture"
		ply.CapturedPiece = &captured
		if mover == White {
			g.state.CapturedPieces.White = append(g.state.CapturedPieces.White, captured)
		} else {
			g.state.CapturedPieces.Black = append(g.state.CapturedPieces.Black, captured)
		}
	case ply.Promotion != None:
		g.state.Sound = "promote"
	default:
		g.state.Sound = "move"
	}

	// Add the ply to the move history
	if mover == White || len(g.state.MoveHistory) == 0 {
		g.state.MoveHistory = append(g.state.MoveHistory, HistoryMove{})
	}
	last := &g.state.MoveHistory[len(g.state.MoveHistory)-1]
	if mover == White {
		last.WhitePly = ply
	} else {
		last.BlackPly = ply
	}

	applied := move
	applied.Promotion = ply.Promotion
	g.state.LastMove = &applied
	g.state.ToMove = mover.Opponent()
	g.version++
	g.lastActive = time.Now()

	g.refreshLocked()
	if g.state.Resolve == nil {
		g.clock(g.state.ToMove).Start()
	}
	g.broadcastLocked()
}

// refreshLocked recomputes everything derived from the board and ends the game
// when the side to move cannot continue.
func (g *Game) refreshLocked() {
	board := g.state.Board
	side := g.state.ToMove
	g.state.Evaluation = g.engine.Evaluate(board)
	g.state.LegalMoves = g.engine.Moves(board, side)
	if g.state.LegalMoves == nil {
		g.state.LegalMoves = make([]Move, 0)
	}

	if st := g.engine.Status(board, side); st != StatusOngoing {
		g.finishLocked(st, side.Opponent())
	}
}

func (g *Game) finishLocked(reason Status, winner Color) {
	g.state.Resolve = &Outcome{Reason: reason, Winner: winner}
	g.state.LegalMoves = make([]Move, 0)
	g.whiteClock.Stop()
	g.blackClock.Stop()
	if reason == StatusNoKing {
		g.state.Sound = "gameover"
	}
	g.log.Info().Stringer("reason", reason).Stringer("winner", winner).Msg("game over")
}

func (g *Game) clock(c Color) *Clock {
	if c == White {
		return g.whiteClock
	}
	return g.blackClock
}

// LastActive is when the game last saw a move or a new watcher.
func (g *Game) LastActive() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.lastActive
}

func (g *Game) Watchers() int {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	return len(g.connections.connections)
}

// RegisterConnection adds a watcher. Anyone may watch; only players may move.
func (g *Game) RegisterConnection(playerID string, conn *websocket.Conn) {
	g.connections.mu.Lock()
	g.connections.connections[conn] = playerID
	g.connections.mu.Unlock()

	g.log.Debug().Str("player", playerID).Msg("registered connection")

	// Send initial state...
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastActive = time.Now()
	g.broadcastLocked()
}

func (g *Game) UnregisterConnection(conn *websocket.Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if playerID, exists := g.connections.connections[conn]; exists {
		g.log.Debug().Str("player", playerID).Msg("unregistered connection")
		delete(g.connections.connections, conn)
	}
}

// broadcastLocked encodes the state under the game lock and sends it from a goroutine.
// States are numbered in encoding order; a goroutine that loses the race to a newer
// state drops its own.
func (g *Game) broadcastLocked() {
	payload, err := json.Marshal(g.snapshotLocked())
	if err != nil {
		g.log.Error().Err(err).Msg("failed to marshal game state")
		return
	}
	g.broadcasts++
	go g.broadcast(g.broadcasts, ws.Message{Type: ws.MessageTypeGameState, Payload: payload})
}

func (g *Game) broadcast(seq uint64, msg ws.Message) bool {
	// Writes are serialized under the connections mutex; a conn allows one writer at a time.
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if !g.connections.claim(seq) {
		g.log.Debug().Uint64("seq", seq).Uint64("sent", g.connections.sent).Msg("dropping stale state")
		return false
	}
	for conn, playerID := range g.connections.connections {
		if err := conn.WriteJSON(msg); err != nil {
			g.log.Warn().Err(err).Str("player", playerID).Msg("failed to send state")
			delete(g.connections.connections, conn)
		}
	}
	return true
}

// Send writes msg to a single registered connection.
func (g *Game) Send(conn *websocket.Conn, msg ws.Message) error {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	return conn.WriteJSON(msg)
}
