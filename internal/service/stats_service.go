package service

import (
	"context"
	"strings"

	"lunchstats/internal/cache"
	"lunchstats/internal/domain"

	"github.com/sirupsen/logrus"
)

const recentOrdersLimit = 5

type StatsQuery struct {
	RestaurantID string
	UserID       string
	OrderDate    string
}

// StatsService builds read-only projections; it never writes.
type StatsService struct {
	records
}

func NewStatsService(accessor *cache.Accessor, log *logrus.Entry) *StatsService {
	return &StatsService{records: records{accessor: accessor, log: log}}
}

func validateQuery(query StatsQuery) error {
	if strings.TrimSpace(query.RestaurantID) == "" {
		return invalid("restaurant", "is required")
	}
	if query.OrderDate != "" && !domain.IsValidDate(query.OrderDate) {
		return invalid("orderDate", "must match YYYY-MM-DD")
	}
	return nil
}

// Compose always returns a renderable view; an unknown restaurant yields zeros.
func (s *StatsService) Compose(ctx context.Context, query StatsQuery) (*domain.StatsView, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}
	rec, err := s.loadRestaurant(ctx, query.RestaurantID)
	if err != nil {
		return nil, err
	}
	return s.compose(ctx, rec, query)
}

// Lookup is Compose for direct by-id reads, where an unknown restaurant is ErrNotFound.
func (s *StatsService) Lookup(ctx context.Context, query StatsQuery) (*domain.StatsView, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}
	rec, err := s.loadRestaurant(ctx, query.RestaurantID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return s.compose(ctx, rec, query)
}

func (s *StatsService) compose(ctx context.Context, rec *domain.RestaurantRecord, query StatsQuery) (*domain.StatsView, error) {
	view := projectRecord(query.RestaurantID, rec)
	if query.UserID == "" {
		return view, nil
	}

	history, err := s.loadHistory(ctx, query.UserID, query.RestaurantID)
	if err != nil {
		return nil, err
	}
	view.User = userStats(query.UserID, history, query.OrderDate)
	return view, nil
}

func projectRecord(restaurantID string, rec *domain.RestaurantRecord) *domain.StatsView {
	view := &domain.StatsView{
		RestaurantID: restaurantID,
		Appearances:  []string{},
		SoldOutDates: []string{},
	}
	if rec == nil {
		return view
	}
	view.Known = true
	view.Name = rec.Name
	view.Color = rec.Color
	view.Logo = rec.Logo
	if rec.Appearances != nil {
		view.Appearances = rec.Appearances
	}
	if rec.SoldOutDates != nil {
		view.SoldOutDates = rec.SoldOutDates
	}
	view.TotalAppearances = len(rec.Appearances)
	view.TotalSoldOut = len(rec.SoldOutDates)
	view.SoldOutRate = rec.SellOutRate()
	view.FirstSeen = rec.FirstSeen
	view.LastSeen = rec.LastSeen
	if rec.RatingStats != nil {
		view.RatingStats = rec.RatingStats
		view.Rating = rec.RatingStats.Synopsis()
	}
	return view
}

// userStats derives the user block. The last rating is picked by timestamp, not by
// the position of its day.
func userStats(userID string, history domain.History, orderDate string) *domain.UserStats {
	entries := history.Entries()
	stats := &domain.UserStats{
		UserID:         userID,
		LastOrderItems: []domain.OrderItem{},
		OrderDates:     history.Dates(),
		TotalOrders:    len(entries),
		RecentOrders:   entries,
	}
	if len(entries) > recentOrdersLimit {
		stats.RecentOrders = entries[:recentOrdersLimit]
	}
	if len(entries) > 0 {
		stats.LastOrderDate = entries[0].Date
		stats.LastOrderItems = entries[0].Items
	}

	for _, entry := range entries {
		if entry.Rating == nil {
			continue
		}
		if stats.LastRating == nil || entry.Rating.Timestamp.After(stats.LastRating.Timestamp) {
			stats.LastRating = entry.Rating
		}
	}
	if orderDate != "" {
		if day, ok := history[orderDate]; ok {
			stats.OrderRating = day.Rating
		}
	}
	return stats
}
