package kmeans

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with clustering-specific context.
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

// WithClusters adds a clusters field to the logger.
func (l *Logger) WithClusters(clusters int) *Logger {
	return &Logger{
		Logger: l.Logger.With("clusters", clusters),
	}
}

// WithPoints adds a points field to the logger.
func (l *Logger) WithPoints(points int) *Logger {
	return &Logger{
		Logger: l.Logger.With("points", points),
	}
}

// WithAlgorithm adds an algorithm field to the logger.
func (l *Logger) WithAlgorithm(algorithm Algorithm) *Logger {
	return &Logger{
		Logger: l.Logger.With("algorithm", algorithm.String()),
	}
}

// WithSeed adds a seed field to the logger (useful for reproducing runs).
func (l *Logger) WithSeed(seed int64) *Logger {
	return &Logger{
		Logger: l.Logger.With("seed", seed),
	}
}

// LogCluster logs a clustering run.
func (l *Logger) LogCluster(ctx context.Context, clusters, iterations int, termination string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "clustering failed",
			"clusters", clusters,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "clustering completed",
			"clusters", clusters,
			"iterations", iterations,
			"termination", termination,
		)
	}
}

// LogInit logs an initialization step.
func (l *Logger) LogInit(ctx context.Context, initializer string, clusters int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "initialization failed",
			"initializer", initializer,
			"clusters", clusters,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "initialization completed",
			"initializer", initializer,
			"clusters", clusters,
		)
	}
}

// LogSnapshot logs a model snapshot operation.
func (l *Logger) LogSnapshot(ctx context.Context, filename string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"filename", filename,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"filename", filename,
		)
	}
}
