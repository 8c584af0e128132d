// Package slogger provides structured logging for quay-pruner using Go's
// slog with charmbracelet/log as the handler.
package slogger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type contextKey string

const loggerKey contextKey = "logger"

// Supported output formats.
const (
	FormatText   = "text"
	FormatLogfmt = "logfmt"
	FormatJSON   = "json"
)

// Config holds logger configuration.
type Config struct {
	// Verbosity controls log level:
	// 0 (default) -> Error only
	// 1 (-v)      -> Info level, decisions are narrated
	// 2+          -> Debug level, every tag is narrated
	Verbosity int

	// Format is one of FormatText (default), FormatLogfmt or FormatJSON.
	Format string

	// Output is the writer for log output. Defaults to os.Stderr.
	Output io.Writer
}

// New creates a new slog.Logger with charmbracelet/log as the handler.
func New(cfg Config) (*slog.Logger, error) {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	var level charmlog.Level
	switch {
	case cfg.Verbosity >= 2:
		level = charmlog.DebugLevel
	case cfg.Verbosity == 1:
		level = charmlog.InfoLevel
	default:
		level = charmlog.ErrorLevel
	}

	var formatter charmlog.Formatter
	switch cfg.Format {
	case "", FormatText:
		formatter = charmlog.TextFormatter
	case FormatLogfmt:
		formatter = charmlog.LogfmtFormatter
	case FormatJSON:
		formatter = charmlog.JSONFormatter
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	handler := charmlog.NewWithOptions(output, charmlog.Options{
		Level:     level,
		Formatter: formatter,
		// Narrated runs can take a long time; timestamps help follow them.
		ReportTimestamp: cfg.Verbosity > 0,
		ReportCaller:    false,
	})

	return slog.New(handler), nil
}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context.
// Returns a discarding logger if none is set (never returns nil).
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.New(slog.DiscardHandler)
}

// L is a convenience alias for FromContext.
func L(ctx context.Context) *slog.Logger {
	return FromContext(ctx)
}
