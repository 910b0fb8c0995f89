package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	Client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{Client: client}
}

func (c *RedisCache) Match(ctx context.Context, cacheKey string) ([]byte, error) {
	value, err := c.Client.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (c *RedisCache) Put(ctx context.Context, cacheKey string, value []byte, ttl time.Duration) error {
	return c.Client.Set(ctx, cacheKey, value, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, cacheKey string) error {
	return c.Client.Del(ctx, cacheKey).Err()
}
