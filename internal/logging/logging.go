// Package logging builds the process logger and the request-scoped
// operation logger used by services and clients.
package logging

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger. env "development" selects the console encoder;
// anything else uses the JSON production config.
func New(env, level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if env == "development" {
		cfg = zap.NewDevelopmentConfig()
	}
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

type requestIDKey struct{}

// WithRequestID stores the request id for loggers built from ctx.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

// RequestID returns the request id stored in ctx, or "".
func RequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		return rid
	}
	return ""
}

// Logger tags every entry with the request id and the operation name.
type Logger struct {
	base *zap.Logger
}

// FromContext derives an operation logger from base and ctx. A nil base
// falls back to the global zap logger.
func FromContext(ctx context.Context, base *zap.Logger) *Logger {
	if base == nil {
		base = zap.L()
	}
	rid := RequestID(ctx)
	if rid == "" {
		rid = "unknown"
	}
	return &Logger{base: base.With(zap.String("request_id", rid))}
}

func (l *Logger) LogError(operation string, err error) {
	l.base.Error("operation failed", zap.String("operation", operation), zap.Error(err))
}

func (l *Logger) LogErrorf(operation string, format string, args ...any) {
	l.base.Error(fmt.Sprintf(format, args...), zap.String("operation", operation))
}

func (l *Logger) LogInfof(operation string, format string, args ...any) {
	l.base.Info(fmt.Sprintf(format, args...), zap.String("operation", operation))
}

func (l *Logger) LogWarnf(operation string, format string, args ...any) {
	l.base.Warn(fmt.Sprintf(format, args...), zap.String("operation", operation))
}

func (l *Logger) LogDebugf(operation string, format string, args ...any) {
	l.base.Debug(fmt.Sprintf(format, args...), zap.String("operation", operation))
}
