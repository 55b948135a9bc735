package controller

import (
	"bytes"
	"errors"
	"strconv"

	"github.com/benbeisheim/minichess-backend/internal/model"
	"github.com/benbeisheim/minichess-backend/internal/render"
	"github.com/benbeisheim/minichess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrBadRequest),
		errors.Is(err, model.ErrBadBoard),
		errors.Is(err, model.ErrIllegalMove),
		errors.Is(err, model.ErrNoPiece):
		return fiber.StatusBadRequest
	case errors.Is(err, model.ErrNotInGame):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrNotYourTurn),
		errors.Is(err, model.ErrGameOver),
		errors.Is(err, service.ErrNoMove):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

func respondError(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func playerID(c *fiber.Ctx) string {
	id, _ := c.Locals("playerID").(string)
	return id
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var opts service.CreateOptions
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&opts); err != nil {
			return respondError(c, errors.Join(service.ErrBadRequest, err))
		}
	}

	gameID, err := gc.gameService.CreateGame(playerID(c), opts)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(gameState)
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var move model.Move
	if err := c.BodyParser(&move); err != nil {
		return respondError(c, errors.Join(service.ErrBadRequest, err))
	}

	gameID := c.Params("gameId")
	if err := gc.gameService.HandleMove(gameID, playerID(c), move); err != nil {
		return respondError(c, err)
	}
	return gc.GetGameState(c)
}

func (gc *GameController) Hint(c *fiber.Ctx) error {
	difficulty, err := queryInt(c, "difficulty")
	if err != nil {
		return respondError(c, err)
	}
	hint, err := gc.gameService.Hint(c.Params("gameId"), difficulty)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(hint)
}

func (gc *GameController) Evaluation(c *fiber.Ctx) error {
	score, err := gc.gameService.Evaluation(c.Params("gameId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"evaluation": score,
	})
}

func (gc *GameController) BoardSVG(c *fiber.Ctx) error {
	board, lastMove, err := gc.gameService.Board(c.Params("gameId"))
	if err != nil {
		return respondError(c, err)
	}
	size, err := queryInt(c, "size")
	if err != nil {
		return respondError(c, err)
	}

	var buf bytes.Buffer
	render.Board(&buf, board, render.Options{
		SquareSize: size,
		LastMove:   lastMove,
		Flip:       c.Query("flip") == "true",
	})
	c.Set(fiber.HeaderContentType, "image/svg+xml")
	return c.Send(buf.Bytes())
}

type analyzeRequest struct {
	Board      string      `json:"board"`
	Side       model.Color `json:"side"`
	Difficulty int         `json:"difficulty"`
}

func (gc *GameController) Analyze(c *fiber.Ctx) error {
	var req analyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, errors.Join(service.ErrBadRequest, err))
	}
	analysis, err := gc.gameService.Analyze(req.Board, req.Side, req.Difficulty)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(analysis)
}

func queryInt(c *fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Join(service.ErrBadRequest, err)
	}
	return n, nil
}
