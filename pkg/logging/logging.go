// Package logging builds the slog loggers used across vesselctl.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Level represents a log level.
type Level = slog.Level

// Log levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level Level

	// Output is the writer to send logs to. Defaults to os.Stderr.
	Output io.Writer

	// ForceJSON selects the JSON handler even on a terminal.
	ForceJSON bool
}

// New creates a slog.Logger with the given configuration. Terminal output
// gets the tinted handler; everything else gets line-oriented JSON.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	if !cfg.ForceJSON {
		if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			return slog.New(tint.NewHandler(out, &tint.Options{
				Level:      cfg.Level,
				TimeFormat: time.Kitchen,
			}))
		}
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.Level,
	}))
}

// Nop returns a logger that discards all output.
// Use this when a logger is required but logging is disabled.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel parses a log level string.
// Valid values: "debug", "info", "warn", "error".
// Returns LevelInfo if the string is not recognized.
func ParseLevel(s string) Level {
	switch s {
	case "debug", "DEBUG":
		return LevelDebug
	case "warn", "WARN", "warning", "WARNING":
		return LevelWarn
	case "error", "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}
