package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingStats_AddIncremental(t *testing.T) {
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	stats := NewRatingStats()

	for _, v := range []int{4, 4, 1} {
		stats.Add(v, now)
	}

	assert.Equal(t, 3, stats.TotalRatings)
	assert.InDelta(t, 3.0, stats.AverageRating, 1e-9)
	assert.Equal(t, map[int]int{1: 1, 2: 0, 3: 0, 4: 2}, stats.RatingDistribution)
	assert.True(t, stats.Consistent())
	assert.Equal(t, now, stats.LastUpdated)
}

func TestRecalculateFromSource(t *testing.T) {
	now := time.Now()
	records := []RatingRecord{{Rating: 2}, {Rating: 4}, {Rating: 3}, {Rating: 9}}

	stats := RecalculateFromSource(records, now)

	assert.Equal(t, 3, stats.TotalRatings)
	assert.InDelta(t, 3.0, stats.AverageRating, 1e-9)
	assert.True(t, stats.Consistent())

	empty := RecalculateFromSource(nil, now)
	assert.Equal(t, 0, empty.TotalRatings)
	assert.Equal(t, 0.0, empty.AverageRating)
	assert.True(t, empty.Consistent())
}

func TestSubmission_NewThenEdit(t *testing.T) {
	now := time.Now()
	ids := 0
	newID := func() string {
		ids++
		return "rating:r1:1:" + string(rune('a'+ids))
	}

	stats := NewRatingStats()
	var source []RatingRecord
	for _, v := range []int{4, 3} {
		sub := NewSubmission(nil, RatingRecord{Rating: v}, newID)
		require.Equal(t, SubmissionNew, sub.State)
		source = append(source, sub.Record)
		stats = sub.Apply(stats, source, now)
	}
	require.Equal(t, 2, stats.TotalRatings)
	require.InDelta(t, 3.5, stats.AverageRating, 1e-9)

	existing := source[0]
	edit := NewSubmission(&existing, RatingRecord{Rating: 2}, newID)
	assert.Equal(t, SubmissionEdit, edit.State)
	assert.Equal(t, existing.ID, edit.Record.ID)

	source[0] = edit.Record
	stats = edit.Apply(stats, source, now)

	assert.Equal(t, 2, stats.TotalRatings)
	assert.InDelta(t, 2.5, stats.AverageRating, 1e-9)
	assert.Equal(t, 0, stats.RatingDistribution[4])
	assert.True(t, stats.Consistent())
}

func TestSubmission_ApplyDoesNotMutateInput(t *testing.T) {
	stats := NewRatingStats()
	stats.Add(4, time.Now())

	sub := Submission{State: SubmissionNew, Record: RatingRecord{Rating: 1}}
	next := sub.Apply(stats, nil, time.Now())

	assert.Equal(t, 1, stats.TotalRatings)
	assert.Equal(t, 2, next.TotalRatings)
}

func TestSynopsis(t *testing.T) {
	stats := NewRatingStats()
	for _, v := range []int{4, 4, 3} {
		stats.Add(v, time.Now())
	}

	syn := stats.Synopsis()

	require.NotNil(t, syn)
	assert.Equal(t, 3.7, syn.Average)
	assert.Equal(t, 3, syn.Total)
	require.Len(t, syn.Buckets, 4)
	assert.Equal(t, SynopsisBucket{Rating: 4, Count: 2, Percent: 66.7}, syn.Buckets[0])
	assert.Equal(t, 3, syn.Buckets[1].Rating)
	assert.Contains(t, syn.Summary, "4★×2")

	assert.Equal(t, "no ratings yet", NewRatingStats().Synopsis().Summary)
	assert.Nil(t, (*RatingStats)(nil).Synopsis())
}

func TestRatingID(t *testing.T) {
	at := time.UnixMilli(1709640000000)
	assert.Equal(t, "rating:pizza-place:1709640000000:ab12", RatingID("pizza-place", at, "ab12"))
}
