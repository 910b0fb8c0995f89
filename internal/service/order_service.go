package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"lunchstats/internal/cache"
	"lunchstats/internal/domain"
	"lunchstats/internal/storage"

	"github.com/sirupsen/logrus"
)

const (
	OrderTracked   = "tracked"
	OrderDuplicate = "duplicate"
	OrderUnchanged = "unchanged"
	OrderFailed    = "error"
)

type OrderInput struct {
	RestaurantID string
	OrderID      string
	Items        []domain.OrderItem
}

type OrderOutcome struct {
	RestaurantID string `json:"restaurantId"`
	OrderID      string `json:"orderId,omitempty"`
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	Err          error  `json:"-"`
}

type OrderService struct {
	records
	ratings       RatingRecalculator
	publisher     EventPublisher
	qr            QRGenerator
	ratingBaseURL string
	now           func() time.Time
}

func NewOrderService(accessor *cache.Accessor, ratings RatingRecalculator, publisher EventPublisher, qr QRGenerator, ratingBaseURL string, log *logrus.Entry) *OrderService {
	return &OrderService{
		records:       records{accessor: accessor, log: log},
		ratings:       ratings,
		publisher:     publisher,
		qr:            qr,
		ratingBaseURL: ratingBaseURL,
		now:           time.Now,
	}
}

// TrackOrders folds the day's orders into each restaurant's history. Every order is
// its own unit of work: one failing does not undo the others.
func (s *OrderService) TrackOrders(ctx context.Context, userID, date string, orders []OrderInput) ([]OrderOutcome, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, invalid("userId", "is required")
	}
	if !domain.IsValidDate(date) {
		return nil, invalid("date", "must match YYYY-MM-DD")
	}
	for _, order := range orders {
		if strings.TrimSpace(order.RestaurantID) == "" {
			return nil, invalid("orders.restaurantId", "is required")
		}
	}

	outcomes := make([]OrderOutcome, 0, len(orders))
	for _, order := range orders {
		outcome := OrderOutcome{RestaurantID: order.RestaurantID, OrderID: order.OrderID}
		status, err := s.trackOrder(ctx, userID, date, order)
		if err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"restaurant_id": order.RestaurantID,
				"order_id":      order.OrderID,
			}).Warn("tracking order failed")
			outcome.Status = OrderFailed
			outcome.Message = err.Error()
			outcome.Err = err
		} else {
			outcome.Status = status
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func (s *OrderService) trackOrder(ctx context.Context, userID, date string, order OrderInput) (string, error) {
	history, err := s.loadHistory(ctx, userID, order.RestaurantID)
	if err != nil {
		return "", err
	}
	day := history[date]
	if order.OrderID != "" && day.HasOrder(order.OrderID) {
		return OrderDuplicate, nil
	}

	changed := false
	for _, item := range order.Items {
		if containsItem(day.Items, item) {
			continue
		}
		day.Items = append(day.Items, item)
		changed = true
	}
	if order.OrderID != "" {
		day.ProcessedOrderIDs = append(day.ProcessedOrderIDs, order.OrderID)
		changed = true
	}
	if !changed {
		return OrderUnchanged, nil
	}

	day.UpdatedAt = s.now().UTC()
	history[date] = day
	if err := s.saveHistory(ctx, userID, order.RestaurantID, history); err != nil {
		return "", err
	}
	return OrderTracked, nil
}

// containsItem matches by id, or by label for items that carry no id.
func containsItem(items []domain.OrderItem, candidate domain.OrderItem) bool {
	for _, item := range items {
		if candidate.ID != "" && item.ID == candidate.ID {
			return true
		}
		if candidate.ID == "" && item.ID == "" && item.Label == candidate.Label {
			return true
		}
	}
	return false
}

func validateOrderKey(userID, restaurantID, date string) error {
	if strings.TrimSpace(userID) == "" {
		return invalid("userId", "is required")
	}
	if strings.TrimSpace(restaurantID) == "" {
		return invalid("restaurantId", "is required")
	}
	if !domain.IsValidDate(date) {
		return invalid("date", "must match YYYY-MM-DD")
	}
	return nil
}

// ReplaceOrder overwrites the items of one day, keeping any attached rating.
func (s *OrderService) ReplaceOrder(ctx context.Context, userID, restaurantID, date string, items []domain.OrderItem) (*domain.HistoryEntry, error) {
	if err := validateOrderKey(userID, restaurantID, date); err != nil {
		return nil, err
	}
	history, err := s.loadHistory(ctx, userID, restaurantID)
	if err != nil {
		return nil, err
	}

	if items == nil {
		items = []domain.OrderItem{}
	}
	day := history[date]
	day.Items = items
	day.UpdatedAt = s.now().UTC()
	history[date] = day
	if err := s.saveHistory(ctx, userID, restaurantID, history); err != nil {
		return nil, err
	}
	return &domain.HistoryEntry{Date: date, Items: items, Rating: day.Rating}, nil
}

// DeleteOrder removes one day from the history. An attached rating is deleted too
// and the restaurant's stats are recomputed without it.
func (s *OrderService) DeleteOrder(ctx context.Context, userID, restaurantID, date string) error {
	if err := validateOrderKey(userID, restaurantID, date); err != nil {
		return err
	}
	history, err := s.loadHistory(ctx, userID, restaurantID)
	if err != nil {
		return err
	}
	day, ok := history[date]
	if !ok {
		return ErrNotFound
	}

	delete(history, date)
	if err := s.saveHistory(ctx, userID, restaurantID, history); err != nil {
		return err
	}
	if day.Rating == nil || day.Rating.ID == "" {
		return nil
	}

	if err := s.remove(ctx, day.Rating.ID); err != nil {
		return err
	}
	if s.ratings != nil {
		if _, _, err := s.ratings.Recalculate(ctx, restaurantID); err != nil {
			return err
		}
	}
	if s.publisher != nil {
		evt := domain.Event{
			Type:         domain.EventOrderDeleted,
			RestaurantID: restaurantID,
			UserID:       userID,
			OrderDate:    date,
			RatingID:     day.Rating.ID,
			Timestamp:    s.now().UTC(),
		}
		if err := s.publisher.Publish(ctx, evt); err != nil {
			s.log.WithError(err).WithField("restaurant_id", restaurantID).Warn("publish event failed")
		}
	}
	return nil
}

// Summary lists every restaurant the user ordered from, most recent first.
func (s *OrderService) Summary(ctx context.Context, userID string) ([]domain.OrderSummary, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, invalid("userId", "is required")
	}
	prefix := storage.HistoryPrefix(userID)
	keys, err := s.accessor.List(ctx, prefix)
	if err != nil {
		return nil, storeFault("list history", err)
	}

	summaries := make([]domain.OrderSummary, 0, len(keys))
	for _, key := range keys {
		restaurantID, ok := domain.ParseKeySegment(strings.TrimPrefix(key, prefix))
		if !ok {
			continue
		}
		history, err := s.loadHistory(ctx, userID, restaurantID)
		if err != nil {
			return nil, err
		}
		if len(history) == 0 {
			continue
		}

		dates := history.Dates()
		summary := domain.OrderSummary{
			RestaurantID:   restaurantID,
			RestaurantName: restaurantID,
			LastOrderDate:  dates[0],
			TotalOrders:    len(dates),
			OrderDates:     dates,
		}
		for _, day := range history {
			if day.Rating != nil {
				summary.RatedOrders++
			}
		}
		rec, err := s.loadRestaurant(ctx, restaurantID)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			summary.RestaurantName = rec.DisplayName()
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].LastOrderDate != summaries[j].LastOrderDate {
			return summaries[i].LastOrderDate > summaries[j].LastOrderDate
		}
		return summaries[i].RestaurantID < summaries[j].RestaurantID
	})
	return summaries, nil
}

// RatingQR renders a PNG QR code linking to the rating page for one order.
func (s *OrderService) RatingQR(ctx context.Context, userID, restaurantID, date string) ([]byte, error) {
	if err := validateOrderKey(userID, restaurantID, date); err != nil {
		return nil, err
	}
	history, err := s.loadHistory(ctx, userID, restaurantID)
	if err != nil {
		return nil, err
	}
	if _, ok := history[date]; !ok {
		return nil, ErrNotFound
	}
	return s.qr.Generate(RatingLink(s.ratingBaseURL, userID, restaurantID, date))
}
