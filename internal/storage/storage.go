package storage

import (
	"context"
	"time"

	"lunchstats/internal/domain"
)

// Store is the flat key-value backend. Get returns nil, nil for a missing key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
}

// Cache is the volatile second tier. Match returns nil, nil on a miss.
type Cache interface {
	Match(ctx context.Context, cacheKey string) ([]byte, error)
	Put(ctx context.Context, cacheKey string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, cacheKey string) error
}

// Ids are escaped with domain.KeySegment so a prefix scan for one id never
// matches keys of a longer id that shares its leading characters.

func RestaurantKey(restaurantID string) string {
	return RestaurantPrefix + domain.KeySegment(restaurantID)
}

func MenuKey(restaurantID string) string {
	return "menu:" + domain.KeySegment(restaurantID)
}

func HistoryKey(userID, restaurantID string) string {
	return HistoryPrefix(userID) + domain.KeySegment(restaurantID)
}

func HistoryPrefix(userID string) string {
	return "history:" + domain.KeySegment(userID) + ":"
}

func RatingPrefix(restaurantID string) string {
	return "rating:" + domain.KeySegment(restaurantID) + ":"
}

const RestaurantPrefix = "restaurant:"
