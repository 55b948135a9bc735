package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
)

const PlayerIDHeader = "X-Player-ID"

// EnsurePlayerID resolves the caller's player id from the X-Player-ID header or the
// playerId query parameter. Callers without one are issued a fresh id, echoed in the
// response header so the client can keep it.
func EnsurePlayerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals("playerID") != nil {
			return c.Next()
		}

		playerID := c.Get(PlayerIDHeader)
		if playerID == "" {
			playerID = c.Query("playerId")
		}
		if playerID == "" {
			playerID = uuid.New().String()
		}
		// header and query values alias the request buffer, which fasthttp reuses
		playerID = utils.CopyString(playerID)

		c.Set(PlayerIDHeader, playerID)
		c.Locals("playerID", playerID)
		return c.Next()
	}
}
