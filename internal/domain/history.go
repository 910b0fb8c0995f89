package domain

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"
)

// HistoryShape identifies which on-disk layout a history blob was written in.
type HistoryShape int

const (
	// ShapeEmpty covers missing, null and undecodable blobs.
	ShapeEmpty HistoryShape = iota
	// ShapeOrderArray is {"orders": [{"date": ..., "items": [...]}, ...]}.
	ShapeOrderArray
	// ShapeOrdersObject is the malformed {"orders": {"2024-01-02": {...}}} variant.
	ShapeOrdersObject
	// ShapeDateKeyed is the current layout: dates at the top level.
	ShapeDateKeyed
)

func (s HistoryShape) String() string {
	switch s {
	case ShapeOrderArray:
		return "order-array"
	case ShapeOrdersObject:
		return "orders-object"
	case ShapeDateKeyed:
		return "date-keyed"
	default:
		return "empty"
	}
}

type DayEntry struct {
	Items             []OrderItem   `json:"items"`
	Rating            *RatingRecord `json:"rating,omitempty"`
	ProcessedOrderIDs []string      `json:"processedOrderIds,omitempty"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// HasOrder reports whether orderID was already folded into this day.
func (d DayEntry) HasOrder(orderID string) bool {
	for _, id := range d.ProcessedOrderIDs {
		if id == orderID {
			return true
		}
	}
	return false
}

type HistoryEntry struct {
	Date   string        `json:"date"`
	Items  []OrderItem   `json:"items"`
	Rating *RatingRecord `json:"rating,omitempty"`
}

// History is the canonical date-keyed form of a user's orders at one restaurant.
type History map[string]DayEntry

// Entries returns the days newest first.
func (h History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, 0, len(h))
	for _, date := range h.Dates() {
		day := h[date]
		items := day.Items
		if items == nil {
			items = []OrderItem{}
		}
		out = append(out, HistoryEntry{Date: date, Items: items, Rating: day.Rating})
	}
	return out
}

// Dates returns the order dates newest first.
func (h History) Dates() []string {
	dates := make([]string, 0, len(h))
	for date := range h {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

func (h History) Marshal() ([]byte, error) {
	return json.Marshal(map[string]DayEntry(h))
}

// Normalize accepts any historical layout and returns days newest first. It never
// fails: anything it cannot read is skipped.
func Normalize(raw []byte) []HistoryEntry {
	history, _ := DecodeHistory(raw)
	return history.Entries()
}

// DetectShape resolves the layout once so that nothing downstream inspects it again.
func DetectShape(raw []byte) (HistoryShape, map[string]json.RawMessage) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ShapeEmpty, nil
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &top); err != nil || top == nil {
		return ShapeEmpty, nil
	}
	if orders, ok := top["orders"]; ok {
		switch firstByte(orders) {
		case '[':
			return ShapeOrderArray, top
		case '{':
			return ShapeOrdersObject, top
		}
	}
	return ShapeDateKeyed, top
}

// DecodeHistory converts any supported layout into the canonical History.
func DecodeHistory(raw []byte) (History, HistoryShape) {
	shape, top := DetectShape(raw)
	history := History{}

	switch shape {
	case ShapeOrderArray:
		var orders []json.RawMessage
		if err := json.Unmarshal(top["orders"], &orders); err != nil {
			return history, shape
		}
		for _, order := range orders {
			var dated struct {
				Date string `json:"date"`
			}
			if err := json.Unmarshal(order, &dated); err != nil || !IsValidDate(dated.Date) {
				continue
			}
			if day, ok := decodeDay(order); ok {
				history[dated.Date] = day
			}
		}
	case ShapeOrdersObject:
		var byDate map[string]json.RawMessage
		if err := json.Unmarshal(top["orders"], &byDate); err != nil {
			return history, shape
		}
		collectDateKeyed(history, byDate)
	case ShapeDateKeyed:
		collectDateKeyed(history, top)
	}
	return history, shape
}

func collectDateKeyed(history History, byDate map[string]json.RawMessage) {
	for key, value := range byDate {
		if !IsValidDate(key) {
			continue
		}
		if day, ok := decodeDay(value); ok {
			history[key] = day
		}
	}
}

type looseDay struct {
	Items             json.RawMessage `json:"items"`
	Rating            json.RawMessage `json:"rating"`
	ProcessedOrderIDs []string        `json:"processedOrderIds"`
	UpdatedAt         json.RawMessage `json:"updatedAt"`
}

// decodeDay reads a day written as {items, rating?, updatedAt?} or as a bare item array.
func decodeDay(raw json.RawMessage) (DayEntry, bool) {
	switch firstByte(raw) {
	case '[':
		return DayEntry{Items: decodeItems(raw)}, true
	case '{':
	default:
		return DayEntry{}, false
	}
	var loose looseDay
	if err := json.Unmarshal(raw, &loose); err != nil {
		return DayEntry{}, false
	}
	return DayEntry{
		Items:             decodeItems(loose.Items),
		Rating:            decodeRating(loose.Rating),
		ProcessedOrderIDs: loose.ProcessedOrderIDs,
		UpdatedAt:         parseLooseTime(loose.UpdatedAt),
	}, true
}

type looseItem struct {
	ID       json.RawMessage `json:"id"`
	Label    string          `json:"label"`
	Name     string          `json:"name"`
	Price    json.RawMessage `json:"price"`
	Quantity int             `json:"quantity"`
}

func decodeItems(raw json.RawMessage) []OrderItem {
	var elems []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &elems) != nil {
		return []OrderItem{}
	}
	items := make([]OrderItem, 0, len(elems))
	for _, elem := range elems {
		var label string
		if json.Unmarshal(elem, &label) == nil {
			if label != "" {
				items = append(items, OrderItem{Label: label})
			}
			continue
		}
		var li looseItem
		if json.Unmarshal(elem, &li) != nil {
			continue
		}
		item := OrderItem{
			ID:       looseString(li.ID),
			Label:    li.Label,
			Price:    looseFloat(li.Price),
			Quantity: li.Quantity,
		}
		if item.Label == "" {
			item.Label = li.Name
		}
		if item.Label == "" && item.ID == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}

type looseRating struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	RestaurantID string          `json:"restaurant"`
	OrderDate    string          `json:"orderDate"`
	Rating       int             `json:"rating"`
	Comment      string          `json:"comment"`
	Items        json.RawMessage `json:"items"`
	Timestamp    json.RawMessage `json:"timestamp"`
}

func decodeRating(raw json.RawMessage) *RatingRecord {
	if firstByte(raw) != '{' {
		return nil
	}
	var lr looseRating
	if json.Unmarshal(raw, &lr) != nil || !IsValidRating(lr.Rating) {
		return nil
	}
	rec := &RatingRecord{
		ID:           lr.ID,
		UserID:       lr.UserID,
		RestaurantID: lr.RestaurantID,
		OrderDate:    lr.OrderDate,
		Rating:       lr.Rating,
		Comment:      lr.Comment,
		Timestamp:    parseLooseTime(lr.Timestamp),
	}
	if len(lr.Items) > 0 {
		rec.Items = decodeItems(lr.Items)
	}
	return rec
}

// parseLooseTime accepts RFC 3339 strings and unix milliseconds.
func parseLooseTime(raw json.RawMessage) time.Time {
	if len(raw) == 0 {
		return time.Time{}
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC()
		}
		return time.Time{}
	}
	var ms float64
	if json.Unmarshal(raw, &ms) == nil && ms > 0 {
		return time.UnixMilli(int64(ms)).UTC()
	}
	return time.Time{}
}

func looseString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

func looseFloat(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return f
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "€"))
		if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
			return f
		}
	}
	return 0
}

func firstByte(raw []byte) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
