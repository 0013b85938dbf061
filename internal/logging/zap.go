package logging

import (
	"context"

	"go.uber.org/zap"
)

// ZapLogger adapts a zap logger to Logger. The context is not inspected.
type ZapLogger struct {
	l *zap.SugaredLogger
}

func NewZapLogger(l *zap.Logger) *ZapLogger {
	return &ZapLogger{l: l.Sugar()}
}

func (z *ZapLogger) Debug(_ context.Context, msg string, args ...any) {
	z.l.Debugw(msg, args...)
}

func (z *ZapLogger) Info(_ context.Context, msg string, args ...any) {
	z.l.Infow(msg, args...)
}

func (z *ZapLogger) Warn(_ context.Context, msg string, args ...any) {
	z.l.Warnw(msg, args...)
}

func (z *ZapLogger) Error(_ context.Context, msg string, args ...any) {
	z.l.Errorw(msg, args...)
}

func (z *ZapLogger) With(args ...any) Logger {
	return &ZapLogger{l: z.l.With(args...)}
}

// Zap exposes the underlying structured logger, e.g. for HTTP access logs.
func (z *ZapLogger) Zap() *zap.Logger {
	return z.l.Desugar()
}

// AccessLogger returns the zap logger for HTTP access entries. When l is
// itself backed by zap the same core is reused; otherwise a production zap
// logger is built.
func AccessLogger(l Logger) (*zap.Logger, error) {
	if z, ok := l.(*ZapLogger); ok {
		return z.Zap().Named("http"), nil
	}
	return zap.NewProduction()
}
