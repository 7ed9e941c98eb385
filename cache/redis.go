package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// RedisCache stores documents in Redis with a server-side expiry.
type RedisCache struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisCache.
type RedisOption func(*RedisCache)

// WithRedisTTL sets the expiry for cached documents.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(c *RedisCache) {
		c.ttl = ttl
	}
}

// WithRedisPrefix sets the key prefix.
func WithRedisPrefix(prefix string) RedisOption {
	return func(c *RedisCache) {
		c.prefix = prefix
	}
}

// NewRedisCache creates a Redis-backed cache.
func NewRedisCache(address, password string, db int, opts ...RedisOption) *RedisCache {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewRedisCacheFromClient(rdb, opts...)
}

// NewRedisCacheFromClient creates a Redis cache from an existing client.
func NewRedisCacheFromClient(client *backend.Client, opts ...RedisOption) *RedisCache {
	c := &RedisCache{
		client: client,
		prefix: "obiee:cache:",
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

// Get returns the cached document for key if present.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis cache get: %w", err)
	}
	return val, true, nil
}

// Set stores value under key with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, c.key(key), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis cache set: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
