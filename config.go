package main

import (
	"fmt"
	"log/slog"
	"os"

	"postboard/internal/config"
)

// loadConfig starts from the defaults and overlays the YAML file at path, if
// there is one.
func loadConfig(path string) (*config.Config, error) {
	cfg := config.NewDefaultConfig()
	if path != "" {
		if err := config.LoadOptional(config.ExpandHome(path), cfg); err != nil {
			return nil, err
		}
	}
	cfg.Storage.SaveDirectory = config.ExpandHome(cfg.Storage.SaveDirectory)
	return cfg, nil
}

// openLogger sends structured logs to the configured file. The terminal is
// owned by the UI, so nothing is written to stderr while it runs.
func openLogger(cfg *config.Config) (*slog.Logger, func() error, error) {
	path := cfg.Storage.SavePath(cfg.App.LogFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
	return logger, f.Close, nil
}
