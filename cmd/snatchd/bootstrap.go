package main

import (
	"log/slog"
	"path/filepath"

	"snatch/internal/config"
	"snatch/internal/logging"
)

// buildLogger writes to stdout plus a daemon log file under the
// configured log directory.
func buildLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		OutputPaths: []string{
			"stdout",
			daemonLogPath(cfg),
		},
	})
}

func daemonLogPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.LogDir, "snatchd.log")
}
