package controller

import (
	"strings"

	"github.com/benbeisheim/minichess-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// SetupRoutes registers the REST and websocket routes. wsOrigins limits which
// origins may open a websocket; empty allows any.
func SetupRoutes(app *fiber.App, gameController *GameController, wsController *WebSocketController, wsOrigins []string) {
	// Set up WebSocket routes
	app.Use("/ws", middleware.EnsurePlayerID())
	app.Get("/ws/game/:gameId", middleware.WebSocketUpgrade(), websocket.New(wsController.HandleConnection, websocket.Config{
		Origins:         wsOrigins,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}))

	// Set up REST routes
	api := app.Group("/api", middleware.EnsurePlayerID())
	api.Post("/analyze", gameController.Analyze)

	gameRoutes := api.Group("/game")
	gameRoutes.Post("/create", gameController.CreateGame)
	gameRoutes.Get("/:gameId", gameController.GetGameState)
	gameRoutes.Post("/:gameId/move", gameController.MakeMove)
	gameRoutes.Get("/:gameId/hint", gameController.Hint)
	gameRoutes.Get("/:gameId/eval", gameController.Evaluation)
	gameRoutes.Get("/:gameId/board.svg", gameController.BoardSVG)
}

// SplitOrigins turns the comma separated CORS origin list into the websocket origin list.
func SplitOrigins(allow string) []string {
	var origins []string
	for _, o := range strings.Split(allow, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
