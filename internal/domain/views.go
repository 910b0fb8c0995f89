package domain

// StatsView is the composed read model. Unknown restaurants yield the zero view
// with Known set to false.
type StatsView struct {
	RestaurantID     string          `json:"restaurantId"`
	Known            bool            `json:"known"`
	Name             *string         `json:"name"`
	Color            string          `json:"color,omitempty"`
	Logo             string          `json:"logo,omitempty"`
	Appearances      []string        `json:"appearances"`
	SoldOutDates     []string        `json:"soldOutDates"`
	TotalAppearances int             `json:"totalAppearances"`
	TotalSoldOut     int             `json:"totalSoldOut"`
	SoldOutRate      float64         `json:"soldOutRate"`
	FirstSeen        string          `json:"firstSeen,omitempty"`
	LastSeen         string          `json:"lastSeen,omitempty"`
	RatingStats      *RatingStats    `json:"ratingStats,omitempty"`
	Rating           *RatingSynopsis `json:"rating,omitempty"`
	User             *UserStats      `json:"user,omitempty"`
}

type UserStats struct {
	UserID         string         `json:"userId"`
	LastOrderDate  string         `json:"lastOrderDate,omitempty"`
	LastOrderItems []OrderItem    `json:"lastOrderItems"`
	OrderDates     []string       `json:"orderDates"`
	TotalOrders    int            `json:"totalOrders"`
	LastRating     *RatingRecord  `json:"lastRating,omitempty"`
	RecentOrders   []HistoryEntry `json:"recentOrders"`
	OrderRating    *RatingRecord  `json:"orderRating,omitempty"`
}

type RatingStatsView struct {
	RestaurantID string          `json:"restaurantId"`
	Stats        *RatingStats    `json:"ratingStats"`
	Synopsis     *RatingSynopsis `json:"synopsis"`
}

type OrderSummary struct {
	RestaurantID   string   `json:"restaurantId"`
	RestaurantName string   `json:"restaurantName"`
	LastOrderDate  string   `json:"lastOrderDate"`
	TotalOrders    int      `json:"totalOrders"`
	OrderDates     []string `json:"orderDates"`
	RatedOrders    int      `json:"ratedOrders"`
}
