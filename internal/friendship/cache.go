package friendship

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache stores computed connections for a short time. It serves eligibility
// checks only and must never back an availability decision.
type Cache interface {
	Get(ctx context.Context, key string) (*Connection, bool, error)
	Set(ctx context.Context, key string, conn *Connection, ttl time.Duration) error
}

// NoopCache disables caching.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*Connection, bool, error) { return nil, false, nil }

func (NoopCache) Set(context.Context, string, *Connection, time.Duration) error { return nil }

// RedisCache keeps connections in Redis as JSON.
type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, prefix: "stay:connection:"}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*Connection, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get connection failed: %w", err)
	}

	var conn Connection
	if err := json.Unmarshal(data, &conn); err != nil {
		return nil, false, fmt.Errorf("decode cached connection failed: %w", err)
	}
	return &conn, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, conn *Connection, ttl time.Duration) error {
	data, err := json.Marshal(conn)
	if err != nil {
		return fmt.Errorf("encode connection failed: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set connection failed: %w", err)
	}
	return nil
}

// pairKey is order independent; every cached field is symmetric.
func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}
