package storage

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// LocalCache is the in-process second tier used when no Redis is configured.
type LocalCache struct {
	items *gocache.Cache
}

func NewLocalCache(cleanupInterval time.Duration) *LocalCache {
	return &LocalCache{items: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (c *LocalCache) Match(_ context.Context, cacheKey string) ([]byte, error) {
	value, ok := c.items.Get(cacheKey)
	if !ok {
		return nil, nil
	}
	data, _ := value.([]byte)
	return append([]byte(nil), data...), nil
}

func (c *LocalCache) Put(_ context.Context, cacheKey string, value []byte, ttl time.Duration) error {
	c.items.Set(cacheKey, append([]byte(nil), value...), ttl)
	return nil
}

func (c *LocalCache) Delete(_ context.Context, cacheKey string) error {
	c.items.Delete(cacheKey)
	return nil
}
