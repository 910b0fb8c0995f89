// Package cache implements the read-through, write-invalidate path every
// component uses to reach the key-value store. The second tier is best effort:
// any cache fault falls back to the store and is only logged.
package cache

import (
	"context"
	"fmt"
	"time"

	"lunchstats/internal/storage"

	"github.com/sirupsen/logrus"
)

// Kind selects the TTL for an entity.
type Kind int

const (
	KindRestaurant Kind = iota
	KindMenu
	KindHistory
	KindRating
)

// Config is injected at construction; there is no package level state.
type Config struct {
	KeyPrefix     string
	RestaurantTTL time.Duration
	MenuTTL       time.Duration
	HistoryTTL    time.Duration
	RatingTTL     time.Duration
}

func DefaultConfig() Config {
	return Config{
		KeyPrefix:     "lunchstats:cache:",
		RestaurantTTL: 300 * time.Second,
		MenuTTL:       600 * time.Second,
		HistoryTTL:    180 * time.Second,
		RatingTTL:     180 * time.Second,
	}
}

func (c Config) TTL(kind Kind) time.Duration {
	switch kind {
	case KindMenu:
		return c.MenuTTL
	case KindHistory:
		return c.HistoryTTL
	case KindRating:
		return c.RatingTTL
	default:
		return c.RestaurantTTL
	}
}

type Loader func(ctx context.Context) ([]byte, error)

type Accessor struct {
	store storage.Store
	cache storage.Cache
	cfg   Config
	log   *logrus.Entry
}

// NewAccessor wires the store and an optional cache. A nil cache means every read
// goes to the store.
func NewAccessor(store storage.Store, cache storage.Cache, cfg Config, log *logrus.Entry) *Accessor {
	return &Accessor{store: store, cache: cache, cfg: cfg, log: log}
}

func (a *Accessor) CacheKey(key string) string {
	return a.cfg.KeyPrefix + key
}

// GetOrLoad returns the cached bytes for key, or calls loader and populates the
// cache when the loader finds something.
func (a *Accessor) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader Loader) ([]byte, error) {
	cacheKey := a.CacheKey(key)
	if a.cache != nil {
		cached, err := a.cache.Match(ctx, cacheKey)
		if err != nil {
			a.log.WithError(err).WithField("key", key).Warn("cache match failed, reading store")
		} else if cached != nil {
			return cached, nil
		}
	}

	value, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	if value == nil || a.cache == nil {
		return value, nil
	}
	if err := a.cache.Put(ctx, cacheKey, value, ttl); err != nil {
		a.log.WithError(err).WithField("key", key).Warn("cache put failed")
	}
	return value, nil
}

// Load reads key through the cache with the TTL configured for kind.
func (a *Accessor) Load(ctx context.Context, kind Kind, key string) ([]byte, error) {
	return a.GetOrLoad(ctx, key, a.cfg.TTL(kind), func(ctx context.Context) ([]byte, error) {
		return a.store.Get(ctx, key)
	})
}

// Invalidate drops the cached copy of key. Failures are logged; the TTL bounds
// staleness if a delete is lost.
func (a *Accessor) Invalidate(ctx context.Context, key string) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Delete(ctx, a.CacheKey(key)); err != nil {
		a.log.WithError(err).WithField("key", key).Warn("cache invalidate failed")
	}
}

// Write persists value and invalidates before returning.
func (a *Accessor) Write(ctx context.Context, key string, value []byte) error {
	if err := a.store.Put(ctx, key, value); err != nil {
		return fmt.Errorf("store put: %w", err)
	}
	a.Invalidate(ctx, key)
	return nil
}

// Remove deletes key from the store and invalidates before returning.
func (a *Accessor) Remove(ctx context.Context, key string) error {
	if err := a.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("store delete: %w", err)
	}
	a.Invalidate(ctx, key)
	return nil
}

// List bypasses the cache; prefix scans are never cached.
func (a *Accessor) List(ctx context.Context, prefix string) ([]string, error) {
	keys, err := a.store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("store list: %w", err)
	}
	return keys, nil
}
