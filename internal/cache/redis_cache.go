package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redis operations get a bounded deadline so a stalled server never
// blocks a request
const redisOpTimeout = 3 * time.Second

// RedisCache is the redis-backed cache.
type RedisCache struct {
	client     *redis.Client
	defaultTTL time.Duration
}

func init() {
	RegisterCache("redis", NewRedisCache)
}

// NewRedisCache connects to redis and verifies the connection.
func NewRedisCache(config Config) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", config.RedisAddr, err)
	}

	return &RedisCache{client: client, defaultTTL: config.DefaultTTL}, nil
}

func (r *RedisCache) op() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), redisOpTimeout)
}

// Get returns the cached value for key.
func (r *RedisCache) Get(key string) (string, bool, error) {
	ctx, cancel := r.op()
	defer cancel()

	value, err := r.client.Get(ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return value, true, nil
}

// Set stores a value, falling back to the default ttl when zero.
func (r *RedisCache) Set(key string, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.defaultTTL
	}

	ctx, cancel := r.op()
	defer cancel()
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes a key.
func (r *RedisCache) Delete(key string) error {
	ctx, cancel := r.op()
	defer cancel()
	return r.client.Del(ctx, key).Err()
}

// Clear drops every entry in the selected database.
func (r *RedisCache) Clear() error {
	ctx, cancel := r.op()
	defer cancel()
	return r.client.FlushDB(ctx).Err()
}
