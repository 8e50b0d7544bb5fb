package slogx

import (
	"log/slog"
	"os"
	"strings"
)

// Config controls the process-wide logger. Level and Format come straight
// from the environment; anything unrecognised falls back to info/json.
type Config struct {
	Service string
	Version string
	Env     string // "dev", "staging", "prod"
	Level   string // "debug", "info", "warn", "error"
	Format  string // "json", "text"
}

// New builds the service logger, installs it as the slog default and
// returns it. Source locations are attached in dev only.
func New(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: cfg.Env == "dev",
		Level:     parseLevel(cfg.Level),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With(
		slog.String("service", cfg.Service),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	slog.SetDefault(logger)
	return logger
}

func parseLevel(lvl string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(lvl)); err != nil {
		return slog.LevelInfo
	}
	return level
}
