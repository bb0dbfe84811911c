package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/loan-approval/internal/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisKeyPrefix namespaces scoring cache keys
const RedisKeyPrefix = "score:"

// RedisCache is a Redis implementation of the ScoringCache interface.
// Expiry is delegated to Redis key TTLs.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(client *redis.Client, logger *zap.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		logger: logger,
	}
}

// Get retrieves a live entry
func (c *RedisCache) Get(ctx context.Context, key string) (*core.ScoringResult, bool, error) {
	data, err := c.client.Get(ctx, RedisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to query cache: %w", err)
	}

	result, err := decodeResult(data)
	if err != nil {
		return nil, false, err
	}
	return result, true, nil
}

// Put stores an entry for ttl
func (c *RedisCache) Put(ctx context.Context, key string, result *core.ScoringResult, ttl time.Duration) error {
	data, err := encodeResult(result)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, RedisKeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Cleanup is a no-op; Redis expires keys itself
func (c *RedisCache) Cleanup(ctx context.Context) error {
	return nil
}

// Stop closes the Redis connection
func (c *RedisCache) Stop() {
	if err := c.client.Close(); err != nil {
		c.logger.Error("Failed to close Redis client", zap.Error(err))
	}
}
