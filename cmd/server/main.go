package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbeisheim/minichess-backend/internal/config"
	"github.com/benbeisheim/minichess-backend/internal/controller"
	"github.com/benbeisheim/minichess-backend/internal/engine"
	"github.com/benbeisheim/minichess-backend/internal/logx"
	"github.com/benbeisheim/minichess-backend/internal/middleware"
	"github.com/benbeisheim/minichess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		fallback := logx.NewLogger("info")
		fallback.Fatal().Err(err).Msg("load config")
	}
	logger := logx.NewLogger(cfg.LogLevel)

	var rng *rand.Rand
	if cfg.EngineSeed != 0 {
		rng = rand.New(rand.NewSource(cfg.EngineSeed))
	}
	searcher := engine.New(engine.Options{
		StrictLegality: cfg.StrictLegality,
		Rand:           rng,
	})

	// Initialize services
	gameManager := service.NewGameManager()
	gameService := service.NewGameService(gameManager, searcher, service.Config{
		DefaultDifficulty: cfg.Difficulty,
		ClockTime:         cfg.ClockTime,
	}, logger.With().Str("component", "games").Logger())

	// Initialize controllers
	gameController := controller.NewGameController(gameService)
	wsController := controller.NewWebSocketController(gameService, logger.With().Str("component", "ws").Logger())

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Immutable:             true,
	})
	app.Use(requestid.New())
	app.Use(middleware.AccessLog(logger.With().Str("component", "http").Logger()))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, " + middleware.PlayerIDHeader,
		ExposeHeaders:    middleware.PlayerIDHeader,
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))
	controller.SetupRoutes(app, gameController, wsController, controller.SplitOrigins(cfg.AllowOrigins))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go gameService.RunJanitor(ctx, time.Minute, cfg.GameTTL)

	go func() {
		logger.Info().
			Str("addr", cfg.Addr).
			Int("difficulty", cfg.Difficulty).
			Bool("strict", cfg.StrictLegality).
			Msg("api listening")
		if err := app.Listen(cfg.Addr); err != nil {
			logger.Fatal().Err(err).Msg("api server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn().Err(err).Msg("http server shutdown error")
	}
	gameService.Wait()
	logger.Info().Int("games", gameManager.Count()).Msg("shutdown complete")
}
