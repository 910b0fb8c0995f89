package service_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"lunchstats/internal/cache"
	"lunchstats/internal/service"
	"lunchstats/internal/storage"

	"github.com/sirupsen/logrus"
)

// countingStore records writes so tests can assert on write amplification.
type countingStore struct {
	storage.Store
	mu         sync.Mutex
	puts       map[string]int
	failPut    bool
	failPrefix string // fails only the puts whose key starts with it
}

func (s *countingStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut || (s.failPrefix != "" && strings.HasPrefix(key, s.failPrefix)) {
		return errors.New("disk full")
	}
	s.puts[key]++
	return s.Store.Put(ctx, key, value)
}

func (s *countingStore) writes(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts[key]
}

type fixture struct {
	store       *countingStore
	accessor    *cache.Accessor
	restaurants *service.RestaurantService
	ratings     *service.RatingService
	orders      *service.OrderService
	stats       *service.StatsService
}

func quietLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func newFixture(t *testing.T, publisher service.EventPublisher, qr service.QRGenerator) *fixture {
	t.Helper()
	store := &countingStore{Store: storage.NewMemoryStore(), puts: map[string]int{}}
	log := quietLogger()
	accessor := cache.NewAccessor(store, storage.NewLocalCache(time.Minute), cache.DefaultConfig(), log)
	ratings := service.NewRatingService(accessor, publisher, log)
	return &fixture{
		store:       store,
		accessor:    accessor,
		restaurants: service.NewRestaurantService(accessor, log),
		ratings:     ratings,
		orders:      service.NewOrderService(accessor, ratings, publisher, qr, "https://lunch.example/rate", log),
		stats:       service.NewStatsService(accessor, log),
	}
}
