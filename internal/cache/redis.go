// Package cache wraps Redis for read-through caching of prediction results.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/jfoessettjr/cbb-tracker/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Config holds Redis connection parameters
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RedisCache is a thin wrapper over a Redis client with hit/miss metrics
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis and verifies the connection with a ping
func NewRedisCache(cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info().
		Str("addr", fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)).
		Int("db", cfg.DB).
		Msg("Redis connection established")

	return &RedisCache{client: client}, nil
}

// Get returns the cached value for key; ok is false on a miss.
// Redis errors count as misses so callers fall back to computing.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		metrics.RecordCacheMiss()
		return nil, false
	}

	metrics.RecordCacheHit()
	return val, true
}

// Set stores a value under key with the given TTL
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache key %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying Redis client
func (c *RedisCache) Close() error {
	return c.client.Close()
}
