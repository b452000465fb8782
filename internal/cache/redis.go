package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "goblog:render:"

// NewRedisClient parses a redis:// URL, falling back to treating it as a
// plain host:port address.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		if url == "" {
			return nil, fmt.Errorf("redis url cannot be empty")
		}
		opts = &redis.Options{Addr: url}
	}
	return redis.NewClient(opts), nil
}

// RedisRenderCache stores rendered HTML in Redis with a TTL.
type RedisRenderCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisRenderCache(client redis.Cmdable, ttl time.Duration) *RedisRenderCache {
	return &RedisRenderCache{client: client, ttl: ttl}
}

func (r *RedisRenderCache) Get(ctx context.Context, key string) (string, bool, error) {
	html, err := r.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s from redis: %w", key, err)
	}
	return html, true, nil
}

func (r *RedisRenderCache) Set(ctx context.Context, key, html string) error {
	if err := r.client.Set(ctx, redisKeyPrefix+key, html, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s to redis: %w", key, err)
	}
	return nil
}

func (r *RedisRenderCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s from redis: %w", key, err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (r *RedisRenderCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
