package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cashflow/invader-payment/internal/port/output"
)

const keyPrefix = "invader-payment:idempotency:"

// RedisResponseCache is a secondary adapter that implements ResponseCache output port
type RedisResponseCache struct {
	client *redis.Client
}

// NewRedisResponseCache connects to redisURL (redis://...) and checks the connection
func NewRedisResponseCache(ctx context.Context, redisURL string) (*RedisResponseCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisResponseCache{client: client}, nil
}

var _ output.ResponseCache = (*RedisResponseCache)(nil)

// Get returns the cached response for key
func (c *RedisResponseCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached response: %w", err)
	}
	return value, true, nil
}

// Set stores value under key for ttl
func (c *RedisResponseCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache response: %w", err)
	}
	return nil
}

// Close closes the redis connection
func (c *RedisResponseCache) Close() error {
	return c.client.Close()
}
