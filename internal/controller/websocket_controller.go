package controller

import (
	"encoding/json"
	"fmt"

	"github.com/benbeisheim/minichess-backend/internal/model"
	"github.com/benbeisheim/minichess-backend/internal/service"
	"github.com/benbeisheim/minichess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"
)

type WebSocketController struct {
	gameService *service.GameService
	log         zerolog.Logger
}

func NewWebSocketController(gameService *service.GameService, log zerolog.Logger) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
		log:         log,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	// Extract game ID and player ID stored by the upgrade middleware
	gameID, _ := c.Locals("wsGameID").(string)
	playerID, _ := c.Locals("wsPlayerID").(string)
	log := wsc.log.With().Str("game", gameID).Str("player", playerID).Logger()

	if err := wsc.gameService.RegisterConnection(gameID, playerID, c); err != nil {
		log.Warn().Err(err).Msg("failed to register connection")
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, c)

	// Start message handling loop
	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Msg("read loop ended")
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.sendError(gameID, c, fmt.Errorf("parse message: %w", err))
			continue
		}
		if err := wsc.handleMessage(gameID, playerID, c, msg); err != nil {
			log.Info().Err(err).Str("type", string(msg.Type)).Msg("message rejected")
			wsc.sendError(gameID, c, err)
		}
	}
}

// Handle different types of incoming messages
func (wsc *WebSocketController) handleMessage(gameID, playerID string, c *websocket.Conn, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move model.Move
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return err
		}
		// the resulting state reaches every watcher through the game broadcast
		return wsc.gameService.HandleMove(gameID, playerID, move)

	case ws.MessageTypeHint:
		var req ws.HintRequest
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &req); err != nil {
				return err
			}
		}
		hint, err := wsc.gameService.Hint(gameID, req.Difficulty)
		if err != nil {
			return err
		}
		payload, err := json.Marshal(hint)
		if err != nil {
			return err
		}
		return wsc.gameService.Send(gameID, c, ws.Message{Type: ws.MessageTypeHint, Payload: payload})

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// sendError reports a rejected message back to its sender only.
func (wsc *WebSocketController) sendError(gameID string, c *websocket.Conn, err error) {
	payload, _ := json.Marshal(ws.ErrorPayload{Error: err.Error()})
	if sendErr := wsc.gameService.Send(gameID, c, ws.Message{Type: ws.MessageTypeError, Payload: payload}); sendErr != nil {
		wsc.log.Debug().Err(sendErr).Msg("failed to send error")
	}
}
