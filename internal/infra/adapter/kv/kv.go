// Package kv adapts redis/go-redis/v9 to the port.KvStore interface used
// by the trending engine's scope cache. Grounded on the redis.Client
// Get/Set usage in AdityaNittala03-gonews's quota manager, adapted from
// counter increments to string value caching with an explicit TTL.
package kv

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps a redis.Client satisfying port.KvStore.
type Client struct {
	rdb *redis.Client
}

// Config holds connection parameters, loaded from REDIS_ADDR,
// REDIS_PASSWORD, REDIS_DB per SPEC_FULL.md §6.3.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// New dials a Redis client per Config. Connection is lazy; the first
// Get/Set call surfaces any connectivity error.
func New(cfg Config) *Client {
	return &Client{rdb: redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})}
}

// Get returns the cached value and whether it was present. A redis.Nil
// miss is reported as (−, false, nil), not an error.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set writes value under key with the given TTL.
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}
