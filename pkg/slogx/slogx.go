// Package slogx configures the service logger and carries it through
// request contexts.
package slogx

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	// DefaultService names log lines when Config.Service is empty.
	DefaultService = "gatekeeper"

	// SubjectIDKey is the attribute holding the authenticated subject.
	SubjectIDKey = "subject_id"
)

type Config struct {
	Service string
	Version string
	Env     string // "dev", "test", "prod"
	Level   string // "debug", "info", "warn", "error"
	Format  string // "json" or "text"

	Output io.Writer // stdout when nil
}

// New builds the logger described by cfg and installs it as slog's default.
// Source locations are only recorded in dev.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	service := cfg.Service
	if service == "" {
		service = DefaultService
	}

	opts := &slog.HandlerOptions{
		AddSource: cfg.Env == "dev",
		Level:     ParseLevel(cfg.Level),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(handler).With(
		slog.String("service", service),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a LOG_LEVEL value to a slog.Level. Unknown values are info.
func ParseLevel(lvl string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
