package blockstore

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with blockstore-specific context.
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
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithDevice adds a device name field to the logger.
func (l *Logger) WithDevice(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("device", name),
	}
}

// WithGeometry adds the device geometry to the logger.
func (l *Logger) WithGeometry(g Geometry) *Logger {
	return &Logger{
		Logger: l.Logger.With(
			"block_count", g.BlockCount,
			"block_size", g.BlockSize,
		),
	}
}

// LogAllocate logs an allocate or request operation.
func (l *Logger) LogAllocate(ctx context.Context, op string, id BlockID, err error) {
	if err != nil {
		l.ErrorContext(ctx, op+" failed",
			"id", id,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, op+" completed",
			"id", id,
		)
	}
}

// LogRelease logs a release operation.
func (l *Logger) LogRelease(ctx context.Context, id BlockID, wasAllocated bool) {
	l.DebugContext(ctx, "release completed",
		"id", id,
		"was_allocated", wasAllocated,
	)
}

// LogAccess logs a block read or write.
func (l *Logger) LogAccess(ctx context.Context, op string, id BlockID, err error) {
	if err != nil {
		l.ErrorContext(ctx, op+" failed",
			"id", id,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, op+" completed",
			"id", id,
		)
	}
}

// LogSave logs an image save (file, stream or blob).
func (l *Logger) LogSave(ctx context.Context, target string, n int, crc uint32, err error) {
	if err != nil {
		l.ErrorContext(ctx, "image save failed",
			"target", target,
			"bytes", n,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "image saved",
			"target", target,
			"bytes", n,
			"crc32", crc,
		)
	}
}

// LogLoad logs an image load (file, stream or blob).
func (l *Logger) LogLoad(ctx context.Context, source string, n int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "image load failed",
			"source", source,
			"bytes", n,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "image loaded",
			"source", source,
			"bytes", n,
		)
	}
}

// LogShortImage logs an accepted image that ended before the region was full.
func (l *Logger) LogShortImage(ctx context.Context, source string, expected, actual int) {
	l.WarnContext(ctx, "short image accepted, remaining bytes zeroed",
		"source", source,
		"expected", expected,
		"actual", actual,
	)
}
