package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nfehub/backend/internal/domain/fiscal"
)

const countersKeyPrefix = "nfe:counters:"

// RedisCountersCache caches per-tenant dashboard counters in Redis so the
// aggregate queries do not run on every dashboard load
type RedisCountersCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCountersCache creates a counters cache with the given TTL.
// A zero TTL defaults to five minutes.
func NewRedisCountersCache(client *redis.Client, ttl time.Duration) *RedisCountersCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCountersCache{client: client, ttl: ttl}
}

// Get returns the cached counters for the tenant, nil on a cache miss
func (c *RedisCountersCache) Get(ctx context.Context, tenantID uuid.UUID) (*fiscal.DocumentCounters, error) {
	payload, err := c.client.Get(ctx, countersKeyPrefix+tenantID.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read counters cache: %w", err)
	}

	var counters fiscal.DocumentCounters
	if err := json.Unmarshal(payload, &counters); err != nil {
		// A corrupt entry behaves like a miss; the next Set overwrites it.
		return nil, nil
	}
	return &counters, nil
}

// Set stores the counters for the tenant with the configured TTL
func (c *RedisCountersCache) Set(ctx context.Context, tenantID uuid.UUID, counters *fiscal.DocumentCounters) error {
	payload, err := json.Marshal(counters)
	if err != nil {
		return fmt.Errorf("failed to encode counters: %w", err)
	}
	if err := c.client.Set(ctx, countersKeyPrefix+tenantID.String(), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write counters cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached counters for the tenant
func (c *RedisCountersCache) Invalidate(ctx context.Context, tenantID uuid.UUID) error {
	if err := c.client.Del(ctx, countersKeyPrefix+tenantID.String()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate counters cache: %w", err)
	}
	return nil
}
