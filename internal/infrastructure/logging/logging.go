// Package logging configures slog for the CLI and carries the logger
// through context.Context.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Supported log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

type key struct{}

var loggerKey = key{}

// WithLogger returns a new context with the provided logger embedded.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from ctx, falling back to slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// NewLogger builds a text or JSON logger writing to w. Verbose lowers the
// level to debug.
func NewLogger(format string, verbose bool, w io.Writer) (*slog.Logger, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	switch format {
	case "", FormatText:
		// Using TextHandler for CLI friendliness
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q (supported: text, json)", format)
	}
}
