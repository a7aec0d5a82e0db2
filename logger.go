package steergo

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with steering-specific context.
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
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithBehavior adds a behavior field to the logger.
func (l *Logger) WithBehavior(behavior string) *Logger {
	return &Logger{
		Logger: l.Logger.With("behavior", behavior),
	}
}

// WithLayer adds a layer field to the logger.
func (l *Logger) WithLayer(layer int) *Logger {
	return &Logger{
		Logger: l.Logger.With("layer", layer),
	}
}

// WithModel adds a model identity field to the logger.
func (l *Logger) WithModel(identity string) *Logger {
	return &Logger{
		Logger: l.Logger.With("model", identity),
	}
}

// WithStrength adds a strength field to the logger.
func (l *Logger) WithStrength(strength float64) *Logger {
	return &Logger{
		Logger: l.Logger.With("strength", strength),
	}
}

// LogExtraction logs a vector extraction operation.
func (l *Logger) LogExtraction(ctx context.Context, behavior string, layers, pairs int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "extraction failed",
			"behavior", behavior,
			"layers", layers,
			"pairs", pairs,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "extraction completed",
			"behavior", behavior,
			"layers", layers,
			"pairs", pairs,
		)
	}
}

// LogInjection logs an injector attach operation.
func (l *Logger) LogInjection(ctx context.Context, behavior string, strength float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "injection attach failed",
			"behavior", behavior,
			"strength", strength,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "injection attached",
			"behavior", behavior,
			"strength", strength,
		)
	}
}

// LogStore logs a vector set persistence operation.
func (l *Logger) LogStore(ctx context.Context, op, behavior string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "store operation failed",
			"op", op,
			"behavior", behavior,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "store operation completed",
			"op", op,
			"behavior", behavior,
		)
	}
}
