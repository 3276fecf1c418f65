package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent
var ErrCacheMiss = errors.New("cache miss")

// Cache is the key/value store used to memoize read-heavy results
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
}

// RedisCache stores JSON values in Redis under a common key prefix
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to redisURL and checks the connection
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	slog.Info("Redis connection established", "addr", opt.Addr, "db", opt.DB)
	return &RedisCache{client: client, prefix: "ledger:"}, nil
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

// Set stores value as JSON with expiration
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), data, expiration).Err()
}

// Get decodes the value at key into dest, or returns ErrCacheMiss
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Delete removes a key
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetOrSet returns the cached value at key, calling fn and caching its result on a miss.
// Cache failures are logged and fall through to fn; they never fail the read.
func GetOrSet[T any](c Cache, ctx context.Context, key string, expiration time.Duration, fn func() (T, error)) (T, error) {
	var result T

	err := c.Get(ctx, key, &result)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		slog.Warn("Cache read failed", "key", key, "error", err)
	}

	result, err = fn()
	if err != nil {
		return result, err
	}

	if err := c.Set(ctx, key, result, expiration); err != nil {
		slog.Warn("Cache write failed", "key", key, "error", err)
	}
	return result, nil
}
