// Package logger provides a levelled key-value logger built on log/slog.
package logger

import (
	"context"
	"io"
	"log/slog"
)

// Level controls the minimum severity that is emitted.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// LoggerInterface is the logging port consumed across the application.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) LoggerInterface
}

// Logger implements LoggerInterface on top of slog.
type Logger struct {
	sl *slog.Logger
}

var _ LoggerInterface = (*Logger)(nil)

func slogLevel(l Level) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a Logger writing structured text to w. The service name is
// attached to every record; extra default attrs may be nil.
func New(w io.Writer, level Level, service string, attrs []slog.Attr) *Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slogLevel(level)})

	sl := slog.New(h)
	if service != "" {
		sl = sl.With("service", service)
	}
	for _, a := range attrs {
		sl = sl.With(a)
	}

	return &Logger{sl: sl}
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.sl.DebugContext(ctx, msg, args...)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.sl.InfoContext(ctx, msg, args...)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.sl.WarnContext(ctx, msg, args...)
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.sl.ErrorContext(ctx, msg, args...)
}

// With returns a logger with the given key-value pairs attached.
func (l *Logger) With(args ...any) LoggerInterface {
	return &Logger{sl: l.sl.With(args...)}
}

// NewNop returns a logger that discards everything. Useful in tests.
func NewNop() *Logger {
	return New(io.Discard, LevelError, "", nil)
}
