package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"go.uber.org/zap"
)

const (
	keyPrefix      = "flashrent:lock:"
	retryInterval  = 100 * time.Millisecond
	releaseTimeout = 5 * time.Second
)

// ErrNotAcquired is returned when a distributed lock could not be taken in time.
var ErrNotAcquired = errors.New("lock not acquired")

// RedisLocker serializes holders of the same key across replicas.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisLocker constructs locker on top of a redis client. ttl bounds both how long a
// lock is held if its owner dies and how long Lock waits when ctx has no deadline.
func NewRedisLocker(client redislock.RedisClient, ttl time.Duration, logger *zap.Logger) *RedisLocker {
	return &RedisLocker{client: redislock.New(client), ttl: ttl, logger: logger}
}

// Lock obtains key, retrying until ctx is done.
func (r *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	held, err := r.client.Obtain(ctx, keyPrefix+key, r.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(retryInterval),
	})
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrNotAcquired, key)
		}
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		if err := held.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			r.logger.Warn("release lock failed", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
