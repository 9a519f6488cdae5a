package cache

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"go-booking-api/core/config"
	"go-booking-api/core/logger"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
)

// Cache is a shared key/value store with per-entry TTL. Reads and writes are
// individually atomic; there is no cross-key locking.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// New returns the cache named by backend: "redis" (the default) shares entries through client,
// "memory" keeps them in this process.
func New(backend string, client *redis.Client) (Cache, error) {
	switch backend {
	case "", "redis":
		if client == nil {
			return nil, stdErrors.New("redis cache backend needs a client")
		}
		return NewRedisCache(client), nil
	case "memory":
		return NewMemoryCache(nil), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// NewRedisClient connects and pings the configured redis instance.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Cache:NewRedisClient:Ping:Error", "addr", cfg.Addr, "error", err)
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	if err := redisotel.InstrumentTracing(client); err != nil {
		logger.Warn("Cache:NewRedisClient:InstrumentTracing:Error", "error", err)
	}
	logger.Info("Cache:NewRedisClient:Connected", "addr", cfg.Addr, "db", cfg.DB)
	return client, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if stdErrors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
