package service

import (
	"context"

	"lunchstats/internal/domain"
)

type RestaurantServiceInterface interface {
	TrackAppearance(ctx context.Context, req TrackRequest) (*TrackResult, error)
	UpdateAppearances(ctx context.Context, restaurantID string, appearances, soldOutDates []string) (*domain.RestaurantRecord, error)
	Get(ctx context.Context, restaurantID string) (*domain.RestaurantRecord, error)
	GetMenu(ctx context.Context, restaurantID string) (*domain.Menu, error)
	List(ctx context.Context) ([]string, error)
}

type RatingServiceInterface interface {
	Submit(ctx context.Context, input RatingInput) (*SubmitResult, error)
	Stats(ctx context.Context, restaurantID string) (*domain.RatingStatsView, error)
	Recalculate(ctx context.Context, restaurantID string) (*domain.RatingStats, bool, error)
}

type OrderServiceInterface interface {
	TrackOrders(ctx context.Context, userID, date string, orders []OrderInput) ([]OrderOutcome, error)
	ReplaceOrder(ctx context.Context, userID, restaurantID, date string, items []domain.OrderItem) (*domain.HistoryEntry, error)
	DeleteOrder(ctx context.Context, userID, restaurantID, date string) error
	Summary(ctx context.Context, userID string) ([]domain.OrderSummary, error)
	RatingQR(ctx context.Context, userID, restaurantID, date string) ([]byte, error)
}

type StatsServiceInterface interface {
	Compose(ctx context.Context, query StatsQuery) (*domain.StatsView, error)
	Lookup(ctx context.Context, query StatsQuery) (*domain.StatsView, error)
}

// RatingRecalculator is the slice of the rating service the order service and
// the event consumer depend on.
type RatingRecalculator interface {
	Recalculate(ctx context.Context, restaurantID string) (*domain.RatingStats, bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, evt domain.Event) error
}

type QRGenerator interface {
	Generate(content string) ([]byte, error)
}

var (
	_ RestaurantServiceInterface = (*RestaurantService)(nil)
	_ RatingServiceInterface     = (*RatingService)(nil)
	_ OrderServiceInterface      = (*OrderService)(nil)
	_ StatsServiceInterface      = (*StatsService)(nil)
	_ RatingRecalculator         = (*RatingService)(nil)
	_ QRGenerator                = DefaultQRGenerator{}
)
