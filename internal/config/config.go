package config

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/benbeisheim/minichess-backend/internal/engine"
)

type Config struct {
	Addr           string
	AllowOrigins   string
	LogLevel       string
	Difficulty     int
	ClockTime      time.Duration
	StrictLegality bool

	// GameTTL is how long a game nobody watches may sit idle before it is dropped.
	GameTTL time.Duration

	// EngineSeed seeds engine tie-breaking; 0 seeds from the clock.
	EngineSeed int64
}

func DefaultConfig() Config {
	return Config{
		Addr:         ":3000",
		AllowOrigins: "http://localhost:5173",
		LogLevel:     "info",
		Difficulty:   2,
		ClockTime:    10 * time.Minute,
		GameTTL:      2 * time.Hour,
	}
}

const envPrefix = "MINICHESS_"

// Load layers defaults, then MINICHESS_* environment variables, then command line flags.
func Load(args []string, getenv func(string) string) (Config, error) {
	cfg := DefaultConfig()
	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.AllowOrigins, "origins", cfg.AllowOrigins, "comma separated CORS origins")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.IntVar(&cfg.Difficulty, "difficulty", cfg.Difficulty, "default engine difficulty (1-4)")
	fs.DurationVar(&cfg.ClockTime, "clock", cfg.ClockTime, "time per side")
	fs.DurationVar(&cfg.GameTTL, "game-ttl", cfg.GameTTL, "drop unwatched games idle this long")
	fs.BoolVar(&cfg.StrictLegality, "strict", cfg.StrictLegality, "filter moves that leave the own king attacked")
	fs.Int64Var(&cfg.EngineSeed, "seed", cfg.EngineSeed, "engine tie-break seed (0 = random)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv(envPrefix + "ADDR"); v != "" {
		c.Addr = v
	}
	if v := getenv(envPrefix + "ORIGINS"); v != "" {
		c.AllowOrigins = v
	}
	if v := getenv(envPrefix + "LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv(envPrefix + "DIFFICULTY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %sDIFFICULTY: %w", envPrefix, err)
		}
		c.Difficulty = n
	}
	if v := getenv(envPrefix + "CLOCK"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %sCLOCK: %w", envPrefix, err)
		}
		c.ClockTime = d
	}
	if v := getenv(envPrefix + "GAME_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %sGAME_TTL: %w", envPrefix, err)
		}
		c.GameTTL = d
	}
	if v := getenv(envPrefix + "STRICT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse %sSTRICT: %w", envPrefix, err)
		}
		c.StrictLegality = b
	}
	if v := getenv(envPrefix + "SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse %sSEED: %w", envPrefix, err)
		}
		c.EngineSeed = n
	}
	return nil
}

func (c Config) Validate() error {
	if _, err := engine.DepthForDifficulty(c.Difficulty); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.ClockTime <= 0 {
		return errors.New("config: clock must be positive")
	}
	if c.GameTTL <= 0 {
		return errors.New("config: game ttl must be positive")
	}
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("config: addr is empty")
	}
	return nil
}
