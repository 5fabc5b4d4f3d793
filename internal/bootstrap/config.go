package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/hostelhub/hostel-api/config"
	"github.com/joho/godotenv"
)

var logLevel = new(slog.LevelVar)

// InitLogger installs a JSON logger on stdout as the default. LoadConfig lowers the level
// to debug in dev mode.
func InitLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return logger
}

// LoadConfig reads .env when present, parses the environment and applies guardrails.
func LoadConfig() (config.AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()
	if cfg.IsDev {
		logLevel.Set(slog.LevelDebug)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// GetEnabledServices returns the enabled service names in a stable order, for logging.
func GetEnabledServices(cfg *config.AppConfig) []string {
	if cfg == nil {
		return []string{}
	}
	services, err := cfg.GetEnabledServices()
	if err != nil {
		return []string{}
	}
	names := make([]string, 0, len(services))
	for mode, on := range services {
		if on {
			names = append(names, string(mode))
		}
	}
	slices.Sort(names)
	return names
}
