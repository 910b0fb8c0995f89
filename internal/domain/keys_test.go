package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeySegment(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{name: "plain id", id: "pizza-place", want: "pizza-place"},
		{name: "separator", id: "thai:express", want: "thai%3Aexpress"},
		{name: "percent", id: "50%off", want: "50%25off"},
		{name: "already escaped looking", id: "a%3Ab", want: "a%253Ab"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			segment := KeySegment(testCase.id)
			assert.Equal(t, testCase.want, segment)
			assert.NotContains(t, segment, ":")

			id, ok := ParseKeySegment(segment)
			assert.True(t, ok)
			assert.Equal(t, testCase.id, id)
		})
	}
}

func TestParseKeySegment_RejectsRawSeparator(t *testing.T) {
	_, ok := ParseKeySegment("express:thai")
	assert.False(t, ok)
}

func TestRatingID_EscapesRestaurant(t *testing.T) {
	at := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "rating:thai%3Aexpress:1709640000000:ab12", RatingID("thai:express", at, "ab12"))
}
