// Package config loads process configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/talgya/worldhistory/internal/world"
)

// Config is everything cmd/worldsim reads from the environment.
type Config struct {
	DBPath       string `env:"WORLDHISTORY_DB_PATH"  envDefault:"data/worldhistory.db"`
	Scenario     string `env:"WORLDHISTORY_SCENARIO"`
	Seed         int64  `env:"WORLDHISTORY_SEED"` // 0 picks one at random
	RandomOrgKey string `env:"RANDOM_ORG_API_KEY"`

	Direction string `env:"WORLDHISTORY_DIRECTION" envDefault:"forwards"`
	Timespan  string `env:"WORLDHISTORY_TIMESPAN"  envDefault:"months"`
	Steps     uint32 `env:"WORLDHISTORY_STEPS"     envDefault:"120"`

	MapWidth    uint32 `env:"WORLDHISTORY_MAP_WIDTH"   envDefault:"130"`
	MapHeight   uint32 `env:"WORLDHISTORY_MAP_HEIGHT"  envDefault:"70"`
	Workers     int    `env:"WORLDHISTORY_WORKERS"` // 0 uses GOMAXPROCS
	Settlements bool   `env:"WORLDHISTORY_SETTLEMENTS" envDefault:"true"`

	APIPort     int      `env:"WORLDHISTORY_API_PORT" envDefault:"8080"` // 0 disables the API
	CORSOrigins []string `env:"CORS_ORIGINS"          envSeparator:","`

	LogLevel         slog.Level    `env:"WORLDHISTORY_LOG_LEVEL"         envDefault:"info"`
	ProgressInterval time.Duration `env:"WORLDHISTORY_PROGRESS_INTERVAL" envDefault:"2s"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates the process configuration.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the environment parser cannot.
func (c Config) Validate() error {
	if _, err := world.ParseDirection(c.Direction); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := world.ParseTimespan(c.Timespan); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Steps < world.MinSimSteps {
		return fmt.Errorf("config: steps %d below minimum %d", c.Steps, world.MinSimSteps)
	}
	if c.MapWidth == 0 || c.MapHeight == 0 {
		return fmt.Errorf("config: map size %dx%d has no cells", c.MapWidth, c.MapHeight)
	}
	if c.ProgressInterval <= 0 {
		return fmt.Errorf("config: progress interval must be positive")
	}
	return nil
}

// SimulationConfig builds the world config these settings describe.
func (c Config) SimulationConfig(seed int64) (world.SimulationConfig, error) {
	cfg := world.DefaultSimulationConfig(seed)
	d, err := world.ParseDirection(c.Direction)
	if err != nil {
		return cfg, err
	}
	t, err := world.ParseTimespan(c.Timespan)
	if err != nil {
		return cfg, err
	}
	if err := cfg.SetDirection(d); err != nil {
		return cfg, err
	}
	if err := cfg.SetTimespan(t); err != nil {
		return cfg, err
	}
	if err := cfg.SetIncrementsForCompletion(c.Steps); err != nil {
		return cfg, err
	}
	return cfg, nil
}
