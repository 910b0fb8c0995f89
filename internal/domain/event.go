package domain

import "time"

const (
	EventRatingSubmitted = "rating_submitted"
	EventOrderDeleted    = "order_deleted"
)

type Event struct {
	Type         string    `json:"type"`
	RestaurantID string    `json:"restaurant_id"`
	UserID       string    `json:"user_id,omitempty"`
	OrderDate    string    `json:"order_date,omitempty"`
	RatingID     string    `json:"rating_id,omitempty"`
	Rating       int       `json:"rating,omitempty"`
	IsUpdate     bool      `json:"is_update,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
