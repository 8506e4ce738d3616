package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ppiankov/dispatcher/internal/model"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// RunIDKey is the context key for the per-invocation run ID
	RunIDKey ContextKey = "run_id"
	// CommandKey is the context key for the CLI command name
	CommandKey ContextKey = "command"
)

// Init installs the global slog logger. Logs go to w, or stderr when w is
// nil, so stdout stays free for command output.
func Init(cfg model.LogConfig, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}

// ParseLevel maps a config string to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch level {
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

// WithContext returns the default logger with context values attached
func WithContext(ctx context.Context) *slog.Logger {
	l := slog.Default()

	if runID, ok := ctx.Value(RunIDKey).(string); ok && runID != "" {
		l = l.With("run_id", runID)
	}
	if cmd, ok := ctx.Value(CommandKey).(string); ok && cmd != "" {
		l = l.With("command", cmd)
	}
	return l
}

// Debug logs at debug level with context
func Debug(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Debug(msg, args...)
}

// Info logs at info level with context
func Info(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Info(msg, args...)
}

// Warn logs at warn level with context
func Warn(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Warn(msg, args...)
}

// Error logs at error level with context
func Error(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Error(msg, args...)
}
