package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestEnsurePlayerID(t *testing.T) {
	app := fiber.New()
	app.Use(EnsurePlayerID())
	app.Get("/", func(c *fiber.Ctx) error {
		id, _ := c.Locals("playerID").(string)
		return c.SendString(id)
	})

	tests := []struct {
		name   string
		target string
		header string
		want   string
	}{
		{"header", "/", "from-header", "from-header"},
		{"query", "/?playerId=from-query", "", "from-query"},
		{"header wins", "/?playerId=from-query", "from-header", "from-header"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set(PlayerIDHeader, tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if got := resp.Header.Get(PlayerIDHeader); got != tt.want {
				t.Fatalf("player id = %q, want %q", got, tt.want)
			}
		})
	}

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Header.Get(PlayerIDHeader)) != 36 {
		t.Fatalf("generated id %q is not a uuid", resp.Header.Get(PlayerIDHeader))
	}
}

func TestPlayerIDOutlivesRequest(t *testing.T) {
	var kept []string
	app := fiber.New()
	app.Use(EnsurePlayerID())
	app.Get("/", func(c *fiber.Ctx) error {
		id, _ := c.Locals("playerID").(string)
		kept = append(kept, id)
		return nil
	})

	ids := []string{"first-player", "zzzzzzzzzzzz", "third-player"}
	for _, id := range ids {
		req := httptest.NewRequest(fiber.MethodGet, "/?playerId="+id, nil)
		if _, err := app.Test(req); err != nil {
			t.Fatal(err)
		}
	}
	for i, id := range ids {
		if kept[i] != id {
			t.Fatalf("request %d kept %q, want %q", i, kept[i], id)
		}
	}
}
