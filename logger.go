package vecfile

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with vecfile-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{Logger: slog.New(handler)}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{Logger: slog.New(handler)}
}

// WithPath adds the artifact path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{Logger: l.Logger.With("path", path)}
}

// LogAppend logs an append operation.
func (l *Logger) LogAppend(rows, dimension int, err error) {
	if err != nil {
		l.Error("append rejected",
			"rows", rows,
			"dimension", dimension,
			"error", err,
		)
	} else {
		l.Debug("append completed",
			"rows", rows,
			"dimension", dimension,
		)
	}
}

// LogSync logs a remote sync operation.
func (l *Logger) LogSync(prefix string, rows uint64, err error) {
	if err != nil {
		l.Error("sync failed",
			"prefix", prefix,
			"error", err,
		)
	} else {
		l.Info("sync completed",
			"prefix", prefix,
			"rows", rows,
		)
	}
}
