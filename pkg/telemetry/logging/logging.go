// Package logging builds the process-wide slog logger. Court records
// are public but sealed-case party names are not, so the logger can
// redact a configured set of attribute keys before they reach any
// sink.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Redacted replaces the values of redacted keys.
const Redacted = "[SEALED]"

// Config configures the logger.
type Config struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string

	// Format is the output format ("json" or "text").
	Format string

	// AddSource includes file:line in log records.
	AddSource bool

	// RedactKeys lists attribute keys whose values are replaced with
	// Redacted, for sealed-case party names and similar fields.
	RedactKeys []string

	// Writer is the output writer; defaults to os.Stdout.
	Writer io.Writer
}

// New creates a logger from the config.
func New(cfg Config) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	writer := cfg.Writer
	if writer == nil {
		writer = os.Stdout
	}

	redact := make(map[string]bool, len(cfg.RedactKeys))
	for _, k := range cfg.RedactKeys {
		redact[k] = true
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if redact[a.Key] {
				return slog.String(a.Key, Redacted)
			}
			return a
		},
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json", "":
		handler = slog.NewJSONHandler(writer, opts)
	case "text":
		handler = slog.NewTextHandler(writer, opts)
	default:
		return nil, fmt.Errorf("unknown log format: %s", cfg.Format)
	}

	return slog.New(handler), nil
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}
