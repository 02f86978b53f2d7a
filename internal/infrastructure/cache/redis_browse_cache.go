// Package cache provides storefront browse caching implementations.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	catalogapp "github.com/ecom/backend/internal/application/catalog"
	"github.com/ecom/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// RedisBrowseCache implements BrowseCache using Redis.
// Cached entries are serialized product listings keyed by the browse query,
// invalidated wholesale whenever the catalog changes.
type RedisBrowseCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisBrowseCache creates a new Redis-based browse cache
func NewRedisBrowseCache(redisCfg config.RedisConfig, cacheCfg config.CacheConfig) (*RedisBrowseCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr(),
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisBrowseCacheWithClient(client, cacheCfg.KeyPrefix), nil
}

// NewRedisBrowseCacheWithClient creates a cache with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisBrowseCacheWithClient(client *redis.Client, keyPrefix string) *RedisBrowseCache {
	if keyPrefix == "" {
		keyPrefix = "browse:"
	}
	return &RedisBrowseCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached payload for a browse key, or found=false on a miss
func (c *RedisBrowseCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read browse cache: %w", err)
	}
	return payload, true, nil
}

// Set stores a payload under a browse key with a TTL
func (c *RedisBrowseCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.keyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write browse cache: %w", err)
	}
	return nil
}

// Invalidate drops every cached browse entry. Called after catalog writes.
func (c *RedisBrowseCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to invalidate browse cache: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan browse cache keys: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisBrowseCache) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisBrowseCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisBrowseCache implements BrowseCache
var _ catalogapp.BrowseCache = (*RedisBrowseCache)(nil)
