package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	orderArrayShape = `{"orders":[
		{"date":"2024-03-01","items":[{"id":"soup","label":"Tomato soup","price":6.5}]},
		{"date":"2024-03-08","items":[{"id":"curry","label":"Green curry","price":11.9}]},
		{"date":"not-a-date","items":[{"label":"ignored"}]}
	]}`

	ordersObjectShape = `{"orders":{
		"2024-03-08":{"items":[{"id":"curry","label":"Green curry","price":11.9}]},
		"2024-03-01":[{"id":"soup","label":"Tomato soup","price":"6.50"}]
	}}`

	dateKeyedShape = `{
		"2024-03-01":{"items":[{"id":"soup","name":"Tomato soup","price":6.5}],"updatedAt":"2024-03-01T12:00:00Z"},
		"2024-03-08":{"items":[{"id":"curry","label":"Green curry","price":11.9}],"updatedAt":1709899200000},
		"userId":"u-1",
		"lastSync":"2024-03-08"
	}`
)

func TestNormalize_AllShapesAgree(t *testing.T) {
	expected := []HistoryEntry{
		{Date: "2024-03-08", Items: []OrderItem{{ID: "curry", Label: "Green curry", Price: 11.9}}},
		{Date: "2024-03-01", Items: []OrderItem{{ID: "soup", Label: "Tomato soup", Price: 6.5}}},
	}

	tests := []struct {
		name  string
		raw   string
		shape HistoryShape
	}{
		{name: "order array", raw: orderArrayShape, shape: ShapeOrderArray},
		{name: "orders object", raw: ordersObjectShape, shape: ShapeOrdersObject},
		{name: "date keyed", raw: dateKeyedShape, shape: ShapeDateKeyed},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			shape, _ := DetectShape([]byte(testCase.raw))
			assert.Equal(t, testCase.shape, shape)
			assert.Equal(t, expected, Normalize([]byte(testCase.raw)))
		})
	}
}

func TestNormalize_EmptyAndMalformed(t *testing.T) {
	for _, raw := range []string{"", "null", "[]", "{broken", `"text"`, `{}`} {
		t.Run(raw, func(t *testing.T) {
			assert.Empty(t, Normalize([]byte(raw)))
		})
	}
}

func TestDecodeHistory_KeepsRatingAndProcessedOrders(t *testing.T) {
	raw := `{"2024-03-05":{
		"items":["Pad thai"],
		"rating":{"id":"rating:thai:1:x","rating":3,"comment":"ok","timestamp":"2024-03-05T13:00:00Z"},
		"processedOrderIds":["o-1"]
	},
	"2024-03-06":{"items":[],"rating":{"rating":7}}}`

	history, shape := DecodeHistory([]byte(raw))

	require.Equal(t, ShapeDateKeyed, shape)
	day := history["2024-03-05"]
	assert.Equal(t, []OrderItem{{Label: "Pad thai"}}, day.Items)
	require.NotNil(t, day.Rating)
	assert.Equal(t, 3, day.Rating.Rating)
	assert.Equal(t, time.Date(2024, 3, 5, 13, 0, 0, 0, time.UTC), day.Rating.Timestamp)
	assert.True(t, day.HasOrder("o-1"))
	assert.False(t, day.HasOrder("o-2"))

	assert.Nil(t, history["2024-03-06"].Rating)
}

func TestHistory_MarshalIsDateKeyed(t *testing.T) {
	history, _ := DecodeHistory([]byte(orderArrayShape))

	raw, err := history.Marshal()
	require.NoError(t, err)

	shape, _ := DetectShape(raw)
	assert.Equal(t, ShapeDateKeyed, shape)
	assert.Equal(t, Normalize([]byte(orderArrayShape)), Normalize(raw))
}

func TestDecodeHistory_DuplicateDateLaterWins(t *testing.T) {
	raw := `{"orders":[
		{"date":"2024-03-01","items":[{"label":"first"}]},
		{"date":"2024-03-01","items":[{"label":"second"}]}
	]}`

	entries := Normalize([]byte(raw))

	require.Len(t, entries, 1)
	assert.Equal(t, "second", entries[0].Items[0].Label)
}
