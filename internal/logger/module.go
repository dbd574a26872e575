package logger

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/polkiloo/flashrent/internal/config"
)

// Module wires zap logger for dependency injection and routes fx events through it.
var Module = fx.Options(
	fx.Provide(newLogger),
	fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: l.Named("fx")}
	}),
)

func newLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.Logger, error) {
	l, err := New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			// stdout sync fails on some terminals; nothing to recover.
			_ = l.Sync()
			return nil
		},
	})
	return l, nil
}
