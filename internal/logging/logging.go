// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Options selects the log output format and verbosity.
type Options struct {
	// Format is "pretty" for colorized development output, anything
	// else for JSON.
	Format string
	// Level is "debug", "info", "warn", or "error". Defaults to info.
	Level string
}

// Setup installs the default slog logger and returns it.
func Setup(out io.Writer, opts Options) *slog.Logger {
	level := parseLevel(opts.Level)

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "pretty") {
		handler = tint.NewHandler(out, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
		})
	} else {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
