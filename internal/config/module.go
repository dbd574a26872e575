package config

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module loads configuration and logs the effective non-secret settings once.
var Module = fx.Options(
	fx.Provide(Load),
	fx.Invoke(logSettings),
)

func logSettings(cfg *Config, logger *zap.Logger) {
	logger.Info("configuration loaded", cfg.logFields()...)
}

// logFields leaves out the database DSN and the API key hash.
func (c *Config) logFields() []zap.Field {
	return []zap.Field{
		zap.String("run_address", c.RunAddress),
		zap.String("delegation_address", c.DelegationAddress),
		zap.Duration("delegation_timeout", c.DelegationTimeout),
		zap.Bool("redis_lock", c.RedisAddress != ""),
		zap.Duration("order_lock_ttl", c.OrderLockTTL),
		zap.Duration("event_poll_interval", c.EventPollInterval),
		zap.Int("worker_pool_size", c.WorkerPoolSize),
		zap.Int("event_batch_size", c.EventBatchSize),
		zap.Duration("shutdown_timeout", c.ShutdownTimeout),
		zap.String("log_level", c.LogLevel),
	}
}
