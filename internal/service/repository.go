package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"lunchstats/internal/cache"
	"lunchstats/internal/domain"
	"lunchstats/internal/storage"

	"github.com/sirupsen/logrus"
)

// records holds the typed load/save helpers shared by every service. Loads treat
// undecodable blobs as absent; saves go through the accessor so the cache is
// invalidated before the caller sees success.
type records struct {
	accessor *cache.Accessor
	log      *logrus.Entry
}

func (r records) decode(key string, raw []byte, target interface{}) bool {
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, target); err != nil {
		r.log.WithError(err).WithField("key", key).Warn("discarding undecodable record")
		return false
	}
	return true
}

func (r records) put(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := r.accessor.Write(ctx, key, payload); err != nil {
		return storeFault("write "+key, err)
	}
	return nil
}

func (r records) remove(ctx context.Context, key string) error {
	if err := r.accessor.Remove(ctx, key); err != nil {
		return storeFault("delete "+key, err)
	}
	return nil
}

func (r records) loadRestaurant(ctx context.Context, restaurantID string) (*domain.RestaurantRecord, error) {
	key := storage.RestaurantKey(restaurantID)
	raw, err := r.accessor.Load(ctx, cache.KindRestaurant, key)
	if err != nil {
		return nil, storeFault("read "+key, err)
	}
	var rec domain.RestaurantRecord
	if !r.decode(key, raw, &rec) || rec.ID == "" {
		return nil, nil
	}
	rec.Appearances = domain.NormalizeDates(rec.Appearances)
	rec.SoldOutDates = domain.NormalizeDates(rec.SoldOutDates)
	return &rec, nil
}

func (r records) saveRestaurant(ctx context.Context, rec *domain.RestaurantRecord) error {
	return r.put(ctx, storage.RestaurantKey(rec.ID), rec)
}

func (r records) listRestaurantIDs(ctx context.Context) ([]string, error) {
	keys, err := r.accessor.List(ctx, storage.RestaurantPrefix)
	if err != nil {
		return nil, storeFault("list restaurants", err)
	}
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		id, ok := domain.ParseKeySegment(strings.TrimPrefix(key, storage.RestaurantPrefix))
		if !ok {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r records) loadMenu(ctx context.Context, restaurantID string) (*domain.Menu, error) {
	key := storage.MenuKey(restaurantID)
	raw, err := r.accessor.Load(ctx, cache.KindMenu, key)
	if err != nil {
		return nil, storeFault("read "+key, err)
	}
	var menu domain.Menu
	if !r.decode(key, raw, &menu) {
		return nil, nil
	}
	return &menu, nil
}

func (r records) saveMenu(ctx context.Context, menu *domain.Menu) error {
	return r.put(ctx, storage.MenuKey(menu.RestaurantID), menu)
}

// loadHistory never returns a nil History.
func (r records) loadHistory(ctx context.Context, userID, restaurantID string) (domain.History, error) {
	key := storage.HistoryKey(userID, restaurantID)
	raw, err := r.accessor.Load(ctx, cache.KindHistory, key)
	if err != nil {
		return nil, storeFault("read "+key, err)
	}
	history, shape := domain.DecodeHistory(raw)
	if raw != nil && shape != domain.ShapeDateKeyed {
		r.log.WithFields(logrus.Fields{"key": key, "shape": shape.String()}).Debug("legacy history shape")
	}
	return history, nil
}

// saveHistory always writes the date-keyed shape. An empty history removes the key.
func (r records) saveHistory(ctx context.Context, userID, restaurantID string, history domain.History) error {
	key := storage.HistoryKey(userID, restaurantID)
	if len(history) == 0 {
		return r.remove(ctx, key)
	}
	payload, err := history.Marshal()
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := r.accessor.Write(ctx, key, payload); err != nil {
		return storeFault("write "+key, err)
	}
	return nil
}

func (r records) loadRating(ctx context.Context, ratingID string) (*domain.RatingRecord, error) {
	raw, err := r.accessor.Load(ctx, cache.KindRating, ratingID)
	if err != nil {
		return nil, storeFault("read "+ratingID, err)
	}
	var rec domain.RatingRecord
	if !r.decode(ratingID, raw, &rec) {
		return nil, nil
	}
	if rec.ID == "" {
		rec.ID = ratingID
	}
	return &rec, nil
}

// listRatings loads every rating record stored under the restaurant's prefix.
// Records that name another restaurant are skipped.
func (r records) listRatings(ctx context.Context, restaurantID string) ([]domain.RatingRecord, error) {
	keys, err := r.accessor.List(ctx, storage.RatingPrefix(restaurantID))
	if err != nil {
		return nil, storeFault("list ratings", err)
	}
	out := make([]domain.RatingRecord, 0, len(keys))
	for _, key := range keys {
		rec, err := r.loadRating(ctx, key)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue
		}
		if rec.RestaurantID != restaurantID {
			r.log.WithFields(logrus.Fields{
				"key":           key,
				"restaurant_id": restaurantID,
			}).Warn("rating filed under another restaurant, skipping")
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}
