// Package config loads the board server settings from LAB_ environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	Addr      string `env:"LAB_ADDR" default:"0.0.0.0:8080"`
	RootPath  string `env:"LAB_ROOT_PATH" default:"."`
	DBPath    string `env:"LAB_DB_PATH"`
	LogLevel  string `env:"LAB_LOG_LEVEL" default:"info"`
	LogFormat string `env:"LAB_LOG_FORMAT" default:"text"`
	Timezone  string `env:"LAB_TIMEZONE" default:"Local"`

	// SlidesDir replaces the built in slide fragments with <dir>/slides/*.html.
	SlidesDir     string `env:"LAB_SLIDES_DIR"`
	EventsFeedURL string `env:"LAB_EVENTS_FEED_URL"`

	S3Bucket   string `env:"LAB_S3_BUCKET"`
	S3Prefix   string `env:"LAB_S3_PREFIX" default:"assets/"`
	AWSProfile string `env:"LAB_AWS_PROFILE"`

	DisplayControl         bool   `env:"LAB_DISPLAY_CONTROL" default:"false"`
	DisplayOutput          string `env:"LAB_DISPLAY_OUTPUT" default:"HDMI-A-1"`
	DisplayFollowsSchedule bool   `env:"LAB_DISPLAY_FOLLOWS_SCHEDULE" default:"false"`

	AdminRate  float64 `env:"LAB_ADMIN_RATE" default:"5"`
	AdminBurst int     `env:"LAB_ADMIN_BURST" default:"10"`

	// Location is resolved from Timezone by Load.
	Location *time.Location
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("LAB_TIMEZONE is not a known timezone: %w", err)
	}
	cfg.Location = loc

	if cfg.RootPath == "" {
		return errors.New("LAB_ROOT_PATH must not be empty")
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.RootPath, "board.db")
	}

	if cfg.AdminRate <= 0 {
		return fmt.Errorf("LAB_ADMIN_RATE must be positive, got %v", cfg.AdminRate)
	}
	if cfg.AdminBurst < 1 {
		return fmt.Errorf("LAB_ADMIN_BURST must be at least 1, got %d", cfg.AdminBurst)
	}

	if cfg.DisplayFollowsSchedule && !cfg.DisplayControl {
		return errors.New("LAB_DISPLAY_FOLLOWS_SCHEDULE requires LAB_DISPLAY_CONTROL")
	}

	return nil
}
