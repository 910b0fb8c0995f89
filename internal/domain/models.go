package domain

import "time"

const (
	StatusAvailable = "available"
	StatusSoldOut   = "soldout"
)

type RestaurantRecord struct {
	ID           string       `json:"id"`
	Name         *string      `json:"name"`
	Color        string       `json:"color,omitempty"`
	Logo         string       `json:"logo,omitempty"`
	Appearances  []string     `json:"appearances"`
	SoldOutDates []string     `json:"soldOutDates"`
	RatingStats  *RatingStats `json:"ratingStats,omitempty"`
	FirstSeen    string       `json:"firstSeen,omitempty"`
	LastSeen     string       `json:"lastSeen,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// NewRestaurantRecord returns an empty record for an id seen for the first time.
func NewRestaurantRecord(id string, now time.Time) *RestaurantRecord {
	return &RestaurantRecord{
		ID:           id,
		Appearances:  []string{},
		SoldOutDates: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// SellOutRate is computed on read and never persisted.
func (r *RestaurantRecord) SellOutRate() float64 {
	if r == nil || len(r.Appearances) == 0 {
		return 0
	}
	return float64(len(r.SoldOutDates)) / float64(len(r.Appearances))
}

// RefreshBounds re-derives FirstSeen/LastSeen from the sorted appearances.
func (r *RestaurantRecord) RefreshBounds() {
	if len(r.Appearances) == 0 {
		r.FirstSeen, r.LastSeen = "", ""
		return
	}
	r.FirstSeen = r.Appearances[0]
	r.LastSeen = r.Appearances[len(r.Appearances)-1]
}

func (r *RestaurantRecord) DisplayName() string {
	if r.Name != nil && *r.Name != "" {
		return *r.Name
	}
	return r.ID
}

type Menu struct {
	RestaurantID string     `json:"restaurantId"`
	Items        []MenuItem `json:"items"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type OrderItem struct {
	ID       string  `json:"id,omitempty"`
	Label    string  `json:"label"`
	Price    float64 `json:"price,omitempty"`
	Quantity int     `json:"quantity,omitempty"`
}

type RatingRecord struct {
	ID           string      `json:"id"`
	UserID       string      `json:"userId,omitempty"`
	RestaurantID string      `json:"restaurant,omitempty"`
	OrderDate    string      `json:"orderDate,omitempty"`
	Rating       int         `json:"rating"`
	Comment      string      `json:"comment"`
	Items        []OrderItem `json:"items,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
}
