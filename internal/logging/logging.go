// Package logging provides the structured logger every entrypoint and
// connection handler uses. The teacher (infodancer-pop3d) calls
// logging.NewLogger(cfg.LogLevel) and logging.FromContext(ctx) throughout
// cmd/pop3d and internal/server/internal/pop3 without shipping the package
// itself in the retrieved tree; this is that package, authored to the exact
// contract those call sites expect.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

type contextKey struct{}

// NewLogger builds a slog.Logger writing JSON to stderr at the given level
// ("debug", "info", "warn", "error"; unrecognised values default to info).
func NewLogger(level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// Into returns a context carrying logger, for handlers that receive a
// context but need to log with connection-specific fields already attached.
func Into(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger stored by Into, or slog.Default() if none
// was attached.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
