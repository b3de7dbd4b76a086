package telemetry

import (
	"context"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts a zerolog.Logger to the Logger interface. keyvals are
// interpreted as alternating key/value pairs, the same convention used by
// structured loggers across the ecosystem.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger constructs a Logger backed by the given zerolog.Logger.
func NewZerologLogger(logger zerolog.Logger) Logger {
	return &ZerologLogger{logger: logger}
}

func (l *ZerologLogger) event(level zerolog.Level, ctx context.Context, msg string, keyvals ...any) {
	evt := l.logger.WithLevel(level)
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		evt = evt.Interface(key, keyvals[i+1])
	}
	evt.Msg(msg)
}

// Debug logs at debug level.
func (l *ZerologLogger) Debug(ctx context.Context, msg string, keyvals ...any) {
	l.event(zerolog.DebugLevel, ctx, msg, keyvals...)
}

// Info logs at info level.
func (l *ZerologLogger) Info(ctx context.Context, msg string, keyvals ...any) {
	l.event(zerolog.InfoLevel, ctx, msg, keyvals...)
}

// Warn logs at warn level.
func (l *ZerologLogger) Warn(ctx context.Context, msg string, keyvals ...any) {
	l.event(zerolog.WarnLevel, ctx, msg, keyvals...)
}

// Error logs at error level.
func (l *ZerologLogger) Error(ctx context.Context, msg string, keyvals ...any) {
	l.event(zerolog.ErrorLevel, ctx, msg, keyvals...)
}
