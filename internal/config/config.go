package config

import (
	"fmt"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DataDir         string   `env:"DATA_DIR"          envDefault:"data"`
	DBPath          string   `env:"DB_PATH"           envDefault:"league.db"`
	ServerPort      string   `env:"SERVER_PORT"       envDefault:"8080"`
	LogLevel        string   `env:"LOG_LEVEL"         envDefault:"info"`
	LegacyYear      string   `env:"LEGACY_YEAR"       envDefault:"2025"`
	Seasons         []string `env:"SEASONS"           envDefault:"2026" envSeparator:","`
	DefaultPodSize  int      `env:"DEFAULT_POD_SIZE"  envDefault:"4"`
	MaxPodSize      int      `env:"MAX_POD_SIZE"      envDefault:"8"`
	ScryfallBaseURL string   `env:"SCRYFALL_BASE_URL" envDefault:"https://api.scryfall.com"`
	AdminToken      string   `env:"ADMIN_TOKEN"`
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("data_dir", cfg.DataDir).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("legacy_year", cfg.LegacyYear).
		Strs("seasons", cfg.Seasons).
		Int("default_pod_size", cfg.DefaultPodSize).
		Bool("admin_token", cfg.AdminToken != "").
		Msg("configuration loaded")

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DefaultPodSize < 2 {
		return fmt.Errorf("DEFAULT_POD_SIZE must be at least 2, got %d", c.DefaultPodSize)
	}
	if c.MaxPodSize < c.DefaultPodSize {
		return fmt.Errorf("MAX_POD_SIZE (%d) is smaller than DEFAULT_POD_SIZE (%d)", c.MaxPodSize, c.DefaultPodSize)
	}
	if len(c.LegacyYear) != 4 {
		return fmt.Errorf("LEGACY_YEAR must be a 4-digit year, got %q", c.LegacyYear)
	}
	if slices.Contains(c.Seasons, c.LegacyYear) {
		return fmt.Errorf("legacy year %s cannot also be a logged season", c.LegacyYear)
	}
	return nil
}

var Module = fx.Provide(Load)
