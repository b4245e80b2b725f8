package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	appdistribution "github.com/nfehub/backend/internal/application/distribution"
)

// RedisLocker provides distributed locks backed by Redis. It serializes the
// distribution poll across instances so only one poller per tenant talks to
// SEFAZ at a time.
type RedisLocker struct {
	locker *redislock.Client
}

// NewRedisLocker creates a RedisLocker on top of an existing Redis client
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{locker: redislock.New(client)}
}

// Obtain acquires the named lock for at most ttl. A lock already held by
// another instance maps to ErrPollInProgress.
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (appdistribution.ReleaseFunc, error) {
	lock, err := l.locker.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, appdistribution.ErrPollInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}

	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return fmt.Errorf("failed to release lock %s: %w", key, err)
		}
		return nil
	}, nil
}
