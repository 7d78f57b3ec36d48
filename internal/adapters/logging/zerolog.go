package logging

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/provis-dev/provision/internal/ports"
)

// ZerologLogger emits JSON log lines via zerolog. It backs the
// --log-json flag for machine-consumed runs.
type ZerologLogger struct {
	mu     sync.Mutex
	logger zerolog.Logger
	level  ports.Level
}

// NewZerologLogger creates a JSON logger writing to w.
func NewZerologLogger(w io.Writer, level ports.Level) *ZerologLogger {
	logger := zerolog.New(w).With().Timestamp().Logger()
	return &ZerologLogger{logger: logger, level: level}
}

// Debug logs a debug message.
func (l *ZerologLogger) Debug(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelDebug, msg, fields)
}

// Info logs an informational message.
func (l *ZerologLogger) Info(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelInfo, msg, fields)
}

// Warn logs a warning message.
func (l *ZerologLogger) Warn(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelWarn, msg, fields)
}

// Error logs an error message.
func (l *ZerologLogger) Error(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelError, msg, fields)
}

// With returns a new logger with additional fields.
func (l *ZerologLogger) With(fields ...ports.Field) ports.Logger {
	logCtx := l.logger.With()
	for _, f := range fields {
		logCtx = logCtx.Interface(f.Key, f.Value)
	}
	return &ZerologLogger{logger: logCtx.Logger(), level: l.level}
}

// Level returns the minimum log level.
func (l *ZerologLogger) Level() ports.Level {
	return l.level
}

// SetLevel sets the minimum log level.
func (l *ZerologLogger) SetLevel(level ports.Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *ZerologLogger) log(_ context.Context, level ports.Level, msg string, fields []ports.Field) {
	if level < l.level {
		return
	}

	event := l.event(level)
	for _, f := range fields {
		event = event.Interface(f.Key, f.Value)
	}
	event.Msg(msg)
}

func (l *ZerologLogger) event(level ports.Level) *zerolog.Event {
	switch level {
	case ports.LevelDebug:
		return l.logger.Debug()
	case ports.LevelInfo:
		return l.logger.Info()
	case ports.LevelWarn:
		return l.logger.Warn()
	case ports.LevelError:
		return l.logger.Error()
	default:
		return l.logger.Info()
	}
}

// Ensure ZerologLogger implements Logger.
var _ ports.Logger = (*ZerologLogger)(nil)
