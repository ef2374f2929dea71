package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts a zap logger to the printf style Logger used across
// the service.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

func NewZap(l *zap.Logger) *ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapLogger{sugar: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

// New builds a production logger, or a development one with debug output
// and console encoding.
func New(development bool, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	return cfg.Build()
}

func (z *ZapLogger) Named(name string) *ZapLogger {
	return &ZapLogger{sugar: z.sugar.Named(name)}
}

func (z *ZapLogger) Debug(format string, args ...any) {
	z.sugar.Debugf(format, args...)
}

func (z *ZapLogger) Info(format string, args ...any) {
	z.sugar.Infof(format, args...)
}

func (z *ZapLogger) Warn(format string, args ...any) {
	z.sugar.Warnf(format, args...)
}

func (z *ZapLogger) Error(format string, args ...any) {
	z.sugar.Errorf(format, args...)
}

func (z *ZapLogger) Sync() error {
	return z.sugar.Sync()
}
