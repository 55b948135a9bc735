package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/minichess-backend/internal/engine"
	"github.com/benbeisheim/minichess-backend/internal/model"
	"github.com/benbeisheim/minichess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Variant names the starting board of a new game.
type Variant string

const (
	VariantMini       Variant = "mini"
	VariantFourPlayer Variant = "four-player"
)

// CreateOptions are the choices a player makes when starting a game.
type CreateOptions struct {
	Mode       model.Mode  `json:"mode"`
	Color      model.Color `json:"color"`
	Difficulty int         `json:"difficulty"`
	Variant    Variant     `json:"variant"`
	// Setup is an optional board code replacing the variant's start position.
	Setup  string      `json:"setup"`
	ToMove model.Color `json:"toMove"`
}

type GameService struct {
	gameManager       *GameManager
	engine            *engine.Searcher
	log               zerolog.Logger
	defaultDifficulty int
	clockTime         time.Duration

	// engineTurns tracks in-flight engine searches so shutdown can wait for them.
	engineTurns sync.WaitGroup
}

type Config struct {
	DefaultDifficulty int
	ClockTime         time.Duration
}

func NewGameService(gameManager *GameManager, searcher *engine.Searcher, cfg Config, log zerolog.Logger) *GameService {
	return &GameService{
		gameManager:       gameManager,
		engine:            searcher,
		log:               log,
		defaultDifficulty: cfg.DefaultDifficulty,
		clockTime:         cfg.ClockTime,
	}
}

func (gs *GameService) depth(difficulty int) (int, error) {
	if difficulty == 0 {
		difficulty = gs.defaultDifficulty
	}
	return engine.DepthForDifficulty(difficulty)
}

// CreateGame starts a game owned by playerID and returns its id.
func (gs *GameService) CreateGame(playerID string, opts CreateOptions) (string, error) {
	if opts.Mode == "" {
		opts.Mode = model.ModeComputer
	}
	if !opts.Mode.Valid() {
		return "", fmt.Errorf("%w: mode %q", ErrBadRequest, opts.Mode)
	}
	depth, err := gs.depth(opts.Difficulty)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	board, err := startBoard(opts)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	gameID := uuid.New().String()
	game := model.NewGame(gameID, playerID, board, opts.ToMove, model.Settings{
		Mode:       opts.Mode,
		HumanColor: opts.Color,
		Depth:      depth,
		ClockTime:  gs.clockTime,
	}, gs.engine, gs.log)
	if err := gs.gameManager.Add(game); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}
	gs.log.Info().
		Str("game", gameID).
		Str("player", playerID).
		Str("mode", string(opts.Mode)).
		Int("depth", depth).
		Msg("game created")

	// the engine may own the first move
	gs.dispatchEngine(game)
	return gameID, nil
}

func startBoard(opts CreateOptions) (*model.Board, error) {
	if opts.Setup != "" {
		return model.ParseBoard(opts.Setup)
	}
	switch opts.Variant {
	case "", VariantMini:
		return model.NewMiniBoard(), nil
	case VariantFourPlayer:
		return model.NewFourPlayerBoard(), nil
	}
	return nil, fmt.Errorf("unknown variant %q", opts.Variant)
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

// HandleMove plays a human move and schedules the engine reply.
func (gs *GameService) HandleMove(gameID, playerID string, move model.Move) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	if err := game.MakeMove(playerID, move); err != nil {
		return err
	}
	gs.dispatchEngine(game)
	return nil
}

// dispatchEngine runs the engine's turn off the request goroutine.
func (gs *GameService) dispatchEngine(game *model.Game) {
	if !game.EngineToMove() {
		return
	}
	gs.engineTurns.Add(1)
	go func() {
		defer gs.engineTurns.Done()
		game.PlayEngineTurn()
	}()
}

// RunJanitor removes games left idle for longer than ttl, checking every interval,
// until ctx is done.
func (gs *GameService) RunJanitor(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed := gs.gameManager.Prune(now.Add(-ttl))
			if len(removed) > 0 {
				gs.log.Info().
					Int("removed", len(removed)).
					Int("live", gs.gameManager.Count()).
					Msg("pruned idle games")
			}
		}
	}
}

// Wait blocks until every dispatched engine turn has finished.
func (gs *GameService) Wait() {
	gs.engineTurns.Wait()
}

func (gs *GameService) Hint(gameID string, difficulty int) (model.Hint, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.Hint{}, err
	}
	depth, err := gs.depth(difficulty)
	if err != nil {
		return model.Hint{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	hint, ok := game.Hint(depth)
	if !ok {
		return model.Hint{}, ErrNoMove
	}
	return hint, nil
}

func (gs *GameService) Evaluation(gameID string) (int, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return 0, err
	}
	return game.Evaluation(), nil
}

// Analysis is the stateless engine verdict on a position.
type Analysis struct {
	Status     model.Status `json:"status"`
	Evaluation int          `json:"evaluation"`
	Move       *model.Move  `json:"move"`
	Notation   string       `json:"notation,omitempty"`
	Score      int          `json:"score"`
	Nodes      int          `json:"nodes"`
}

// Analyze searches an arbitrary position without creating a game.
func (gs *GameService) Analyze(code string, side model.Color, difficulty int) (Analysis, error) {
	board, err := model.ParseBoard(code)
	if err != nil {
		return Analysis{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	depth, err := gs.depth(difficulty)
	if err != nil {
		return Analysis{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	a := Analysis{
		Status:     gs.engine.Status(board, side),
		Evaluation: gs.engine.Evaluate(board),
	}
	res := gs.engine.Search(board, side, depth)
	a.Score = res.Score
	a.Nodes = res.Nodes
	if res.Found {
		a.Move = &res.Move
		a.Notation = board.Notation(res.Move)
	}
	gs.log.Debug().
		Str("board", code).
		Stringer("side", side).
		Int("depth", depth).
		Int("nodes", res.Nodes).
		Int("ties", res.Ties).
		Msg("analyzed position")
	return a, nil
}

func (gs *GameService) Board(gameID string) (*model.Board, *model.Move, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return nil, nil, err
	}
	state := game.GetState()
	return state.Board, state.LastMove, nil
}

func (gs *GameService) RegisterConnection(gameID, playerID string, conn *websocket.Conn) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	game.RegisterConnection(playerID, conn)
	return nil
}

func (gs *GameService) UnregisterConnection(gameID string, conn *websocket.Conn) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(conn)
}

// Send replies to one websocket connection of a game.
func (gs *GameService) Send(gameID string, conn *websocket.Conn, msg ws.Message) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Send(conn, msg)
}
