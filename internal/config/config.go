// Package config reads process settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds every DUEL_* setting.
type Config struct {
	AppName    string `env:"DUEL_APP_NAME" envDefault:"chainduel"`
	AppVersion string `env:"DUEL_APP_VERSION" envDefault:"0.1.0"`

	DecksFile   string   `env:"DUEL_DECKS_FILE" envDefault:"decks.yaml"`
	CardScripts []string `env:"DUEL_CARD_SCRIPTS" envSeparator:","`

	LogLevel string `env:"DUEL_LOG_LEVEL" envDefault:"info"`

	StartingLifePoints int           `env:"DUEL_STARTING_LP" envDefault:"8000"`
	Seed               int64         `env:"DUEL_SEED" envDefault:"0"`
	SkipShuffle        bool          `env:"DUEL_SKIP_SHUFFLE" envDefault:"false"`
	InfoDelay          time.Duration `env:"DUEL_INFO_DELAY" envDefault:"0s"`
	AutoPass           bool          `env:"DUEL_AUTO_PASS" envDefault:"true"`

	// AllowedOrigins are websocket origin patterns; empty means same-origin only.
	AllowedOrigins []string `env:"DUEL_ALLOWED_ORIGINS" envSeparator:","`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.StartingLifePoints <= 0 {
		return Config{}, fmt.Errorf("DUEL_STARTING_LP must be positive, got %d", cfg.StartingLifePoints)
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("DUEL_LOG_LEVEL: %w", err)
	}
	return cfg, nil
}

// NewLogger builds a production zap logger at level. An empty level means info.
func NewLogger(level string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		var err error
		if lvl, err = zapcore.ParseLevel(level); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	return config.Build()
}
