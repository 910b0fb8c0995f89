package cmd

import (
	"context"
	"database/sql"
	"time"

	"lunchstats/config"
	"lunchstats/internal/cache"
	"lunchstats/internal/logger"
	"lunchstats/internal/service"
	"lunchstats/internal/storage"

	"github.com/sirupsen/logrus"
)

// app owns the backends chosen by configuration and closes them on shutdown.
type app struct {
	accessor  *cache.Accessor
	publisher service.EventPublisher
	closers   []func() error
	log       *logrus.Logger
}

func newApp(ctx context.Context, cfg config.Config, log *logrus.Logger) (*app, error) {
	a := &app{log: log}

	store, err := a.openStore(ctx, cfg)
	if err != nil {
		a.close()
		return nil, err
	}

	var second storage.Cache
	switch cfg.CacheBackend {
	case config.CacheRedis:
		client := config.MustInitRedis(cfg, log)
		a.closers = append(a.closers, client.Close)
		second = storage.NewRedisCache(client)
	case config.CacheMemory:
		second = storage.NewLocalCache(time.Minute)
	}

	if cfg.EventsEnabled {
		writer := config.NewKafkaWriter(cfg)
		a.closers = append(a.closers, writer.Close)
		a.publisher = storage.NewKafkaPublisher(writer)
	}

	a.accessor = cache.NewAccessor(store, second, cfg.Cache(), logger.Component(log, "cache").WithField("backend", cfg.StoreBackend))
	log.WithFields(logrus.Fields{
		"store":  cfg.StoreBackend,
		"cache":  cfg.CacheBackend,
		"events": cfg.EventsEnabled,
	}).Info("backends ready")
	return a, nil
}

func (a *app) openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	var db *sql.DB
	var store *storage.SQLStore
	switch cfg.StoreBackend {
	case config.StoreMemory:
		return storage.NewMemoryStore(), nil
	case config.StoreSQLite:
		db = config.MustInitSQLite(cfg, a.log)
		store = storage.NewSQLiteStore(db)
	default:
		db = config.MustInitPostgres(cfg, a.log)
		store = storage.NewPostgresStore(db)
	}
	a.closers = append(a.closers, db.Close)
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (a *app) ratings() *service.RatingService {
	return service.NewRatingService(a.accessor, a.publisher, logger.Component(a.log, "ratings"))
}

func (a *app) restaurantIDs(ctx context.Context) ([]string, error) {
	return service.NewRestaurantService(a.accessor, logger.Component(a.log, "restaurants")).List(ctx)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.WithError(err).Warn("close failed")
		}
	}
}
