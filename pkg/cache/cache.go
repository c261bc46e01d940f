// Package cache is the optional read-through cache used by repositories.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/sampleapp/pkg/metrics"
)

// Store is what repositories depend on. Get reports a hit.
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Close() error
}

// Options selects and configures a driver.
type Options struct {
	Driver   string // "redis" or "none"
	Addr     string
	Password string
	DB       int
}

// Open returns a connected Store. "none" (or empty) yields a Nop store.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", "none":
		return Nop{}, nil
	case "redis":
		return Connect(ctx, opts)
	default:
		return nil, fmt.Errorf("cache: unsupported CACHE_DRIVER %q (supported: none, redis)", opts.Driver)
	}
}

// Redis stores JSON-encoded values in Redis.
type Redis struct {
	rdb *redis.Client
}

// Connect initialises the Redis client and verifies it with a ping.
func Connect(ctx context.Context, opts Options) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}
	return &Redis{rdb: rdb}, nil
}

// Get retrieves a cached value by key and unmarshals into dest.
func (c *Redis) Get(ctx context.Context, key string, dest interface{}) bool {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || json.Unmarshal(val, dest) != nil {
		metrics.CacheMisses.WithLabelValues("redis").Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues("redis").Inc()
	return true
}

// Set stores value under key for the given TTL.
func (c *Redis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, data, ttl).Err()
}

// Del removes one or more keys.
func (c *Redis) Del(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *Redis) Close() error { return c.rdb.Close() }

// Nop never hits.
type Nop struct{}

func (Nop) Get(context.Context, string, interface{}) bool                  { return false }
func (Nop) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (Nop) Del(context.Context, ...string) error                           { return nil }
func (Nop) Close() error                                                   { return nil }
