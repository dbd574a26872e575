package lock

import (
	"context"

	"github.com/go-redis/redis/v8"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/polkiloo/flashrent/internal/config"
	"github.com/polkiloo/flashrent/internal/usecase"
)

// Module provides the order locker: redis backed when an address is configured,
// in-process otherwise.
var Module = fx.Provide(newLocker)

type lockerParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *zap.Logger
}

func newLocker(p lockerParams) usecase.Locker {
	logger := p.Logger.Named("lock")
	if p.Config.RedisAddress == "" {
		logger.Info("using in-process order locks")
		return NewLocalLocker()
	}

	client := redis.NewClient(&redis.Options{Addr: p.Config.RedisAddress})
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("redis not reachable yet", zap.String("addr", p.Config.RedisAddress), zap.Error(err))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	logger.Info("using redis order locks", zap.String("addr", p.Config.RedisAddress))
	return NewRedisLocker(client, p.Config.OrderLockTTL, logger)
}
