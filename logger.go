package facetgo

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with facetgo-specific context.
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

// WithField adds the facet field name to the logger.
func (l *Logger) WithField(field string) *Logger {
	return &Logger{
		Logger: l.Logger.With("field", field),
	}
}

// LogSample logs the sampling pass of a facet computation.
func (l *Logger) LogSample(ctx context.Context, field string, sampleSize int, totalHits int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "sampling failed",
			"field", field,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "sampling completed",
			"field", field,
			"sample_size", sampleSize,
			"total_hits", totalHits,
		)
	}
}

// LogRanges logs the range building pass.
func (l *Logger) LogRanges(ctx context.Context, field string, numRanges int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "range building failed",
			"field", field,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "range building completed",
			"field", field,
			"ranges", numRanges,
		)
	}
}

// LogCount logs the exact counting pass.
func (l *Logger) LogCount(ctx context.Context, field string, docs int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "range counting failed",
			"field", field,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "range counting completed",
			"field", field,
			"docs", docs,
		)
	}
}
