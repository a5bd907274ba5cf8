// Package log is a thin wrapper around zap. Until one of the Init functions
// is called every logger is a no-op, so library code can log freely without
// writing to the terminal during tests or inside the live view.
package log

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type (
	Logger = zap.Logger
	Field  = zap.Field
	Level  = zapcore.Level
)

var (
	String   = zap.String
	Int      = zap.Int
	Float64  = zap.Float64
	Bool     = zap.Bool
	Duration = zap.Duration
	Strings  = zap.Strings
)

func ErrorField(err error) Field { return zap.Error(err) }

var current atomic.Pointer[zap.Logger]

func init() {
	current.Store(zap.NewNop())
}

func Default() *Logger { return current.Load() }

func SetDefault(l *Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	current.Store(l)
}

func InitProductionLogger() error {
	l, err := zap.NewProduction()
	if err != nil {
		return err
	}
	SetDefault(l)
	return nil
}

func InitDevelopmentLogger() error {
	l, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	SetDefault(l)
	return nil
}

// New builds a console logger at the given level, writing to stderr.
func New(level string) (*Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func Sync() { _ = Default().Sync() }
