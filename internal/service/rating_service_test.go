package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"lunchstats/internal/domain"
	"lunchstats/internal/mocks"
	"lunchstats/internal/service"
	"lunchstats/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRatingService_NewRatingsAggregateIncrementally(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	for i, value := range []int{4, 4, 1} {
		result, err := f.ratings.Submit(ctx, service.RatingInput{
			UserID:       []string{"u1", "u2", "u3"}[i],
			RestaurantID: "thai",
			OrderDate:    "2024-03-04",
			Rating:       value,
		})
		require.NoError(t, err)
		assert.False(t, result.IsUpdate)
	}

	view, err := f.ratings.Stats(ctx, "thai")
	require.NoError(t, err)
	assert.Equal(t, 3, view.Stats.TotalRatings)
	assert.InDelta(t, 3.0, view.Stats.AverageRating, 1e-9)
	assert.Equal(t, map[int]int{1: 1, 2: 0, 3: 0, 4: 2}, view.Stats.RatingDistribution)
	assert.True(t, view.Stats.Consistent())
	assert.Equal(t, 3.0, view.Synopsis.Average)
}

func TestRatingService_EditRecomputes(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	input := service.RatingInput{UserID: "u1", RestaurantID: "thai", OrderDate: "2024-03-04", Rating: 4, Comment: "great"}

	_, err := f.ratings.Submit(ctx, service.RatingInput{UserID: "u2", RestaurantID: "thai", OrderDate: "2024-03-04", Rating: 3})
	require.NoError(t, err)
	first, err := f.ratings.Submit(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, 2, first.RatingStats.TotalRatings)
	assert.InDelta(t, 3.5, first.RatingStats.AverageRating, 1e-9)

	input.Rating = 2
	input.Comment = "cold"
	second, err := f.ratings.Submit(ctx, input)
	require.NoError(t, err)
	assert.True(t, second.IsUpdate)
	assert.Equal(t, first.Rating.ID, second.Rating.ID)
	assert.Equal(t, 2, second.RatingStats.TotalRatings)
	assert.InDelta(t, 2.5, second.RatingStats.AverageRating, 1e-9)
	assert.Equal(t, 0, second.RatingStats.RatingDistribution[4])

	keys, err := f.store.List(ctx, storage.RatingPrefix("thai"))
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}

func TestRatingService_AttachesRatingToHistory(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	_, err := f.orders.TrackOrders(ctx, "u1", "2024-03-04", []service.OrderInput{{
		RestaurantID: "thai",
		OrderID:      "o-1",
		Items:        []domain.OrderItem{{ID: "pad-thai", Label: "Pad Thai"}},
	}})
	require.NoError(t, err)

	result, err := f.ratings.Submit(ctx, service.RatingInput{UserID: "u1", RestaurantID: "thai", OrderDate: "2024-03-04", Rating: 3})
	require.NoError(t, err)
	assert.Equal(t, []domain.OrderItem{{ID: "pad-thai", Label: "Pad Thai"}}, result.Rating.Items)

	raw, err := f.store.Get(ctx, storage.HistoryKey("u1", "thai"))
	require.NoError(t, err)
	entries := domain.Normalize(raw)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Rating)
	assert.Equal(t, result.Rating.ID, entries[0].Rating.ID)
	assert.Equal(t, "pad-thai", entries[0].Items[0].ID)
}

func TestRatingService_FindsRatingMissingFromHistory(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	orphan := domain.RatingRecord{ID: "rating:thai:1700000000000:abc", UserID: "u1", RestaurantID: "thai", OrderDate: "2024-03-04", Rating: 4}
	payload, err := json.Marshal(orphan)
	require.NoError(t, err)
	require.NoError(t, f.store.Put(ctx, orphan.ID, payload))

	result, err := f.ratings.Submit(ctx, service.RatingInput{UserID: "u1", RestaurantID: "thai", OrderDate: "2024-03-04", Rating: 1})
	require.NoError(t, err)
	assert.True(t, result.IsUpdate)
	assert.Equal(t, orphan.ID, result.Rating.ID)
	assert.Equal(t, 1, result.RatingStats.TotalRatings)
}

func TestRatingService_Validation(t *testing.T) {
	f := newFixture(t, nil, nil)

	tests := []struct {
		name  string
		input service.RatingInput
		field string
	}{
		{name: "rating too high", input: service.RatingInput{UserID: "u1", RestaurantID: "thai", OrderDate: "2024-03-04", Rating: 5}, field: "rating"},
		{name: "rating zero", input: service.RatingInput{UserID: "u1", RestaurantID: "thai", OrderDate: "2024-03-04"}, field: "rating"},
		{name: "bad date", input: service.RatingInput{UserID: "u1", RestaurantID: "thai", OrderDate: "2024-3-4", Rating: 2}, field: "orderDate"},
		{name: "missing user", input: service.RatingInput{RestaurantID: "thai", OrderDate: "2024-03-04", Rating: 2}, field: "userId"},
		{name: "missing restaurant", input: service.RatingInput{UserID: "u1", OrderDate: "2024-03-04", Rating: 2}, field: "restaurant"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := f.ratings.Submit(context.Background(), testCase.input)
			var validation *service.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, testCase.field, validation.Field)
		})
	}

	keys, err := f.store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRatingService_PublishesEvent(t *testing.T) {
	publisher := mocks.NewEventPublisher(t)
	f := newFixture(t, publisher, nil)
	ctx := context.Background()

	publisher.On("Publish", ctx, mock.MatchedBy(func(evt domain.Event) bool {
		return evt.Type == domain.EventRatingSubmitted && evt.RestaurantID == "thai" && evt.Rating == 2 && !evt.IsUpdate
	})).Return(nil).Once()

	_, err := f.ratings.Submit(ctx, service.RatingInput{UserID: "u1", RestaurantID: "thai", OrderDate: "2024-03-04", Rating: 2})
	require.NoError(t, err)
}

func TestRatingService_RestaurantIDsSharingAPrefixStayApart(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	express, err := f.ratings.Submit(ctx, service.RatingInput{UserID: "u1", RestaurantID: "thai:express", OrderDate: "2024-03-04", Rating: 1})
	require.NoError(t, err)
	thai, err := f.ratings.Submit(ctx, service.RatingInput{UserID: "u1", RestaurantID: "thai", OrderDate: "2024-03-04", Rating: 4})
	require.NoError(t, err)

	assert.False(t, thai.IsUpdate)
	assert.NotEqual(t, express.Rating.ID, thai.Rating.ID)
	assert.Equal(t, "thai", thai.Rating.RestaurantID)
	assert.Equal(t, 1, thai.RatingStats.TotalRatings)

	stats, changed, err := f.ratings.Recalculate(ctx, "thai:express")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, stats.TotalRatings)
	assert.InDelta(t, 1.0, stats.AverageRating, 1e-9)

	stats, changed, err = f.ratings.Recalculate(ctx, "thai")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, stats.TotalRatings)
	assert.InDelta(t, 4.0, stats.AverageRating, 1e-9)

	keys, err := f.store.List(ctx, storage.RatingPrefix("thai"))
	require.NoError(t, err)
	assert.Equal(t, []string{thai.Rating.ID}, keys)
}

func TestRatingService_IgnoresRatingsOfAnotherRestaurant(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	stray := domain.RatingRecord{ID: "rating:thai:express:1700000000000:abc", UserID: "u1", RestaurantID: "thai:express", OrderDate: "2024-03-04", Rating: 1}
	payload, err := json.Marshal(stray)
	require.NoError(t, err)
	require.NoError(t, f.store.Put(ctx, stray.ID, payload))

	result, err := f.ratings.Submit(ctx, service.RatingInput{UserID: "u1", RestaurantID: "thai", OrderDate: "2024-03-04", Rating: 5})
	require.NoError(t, err)
	assert.False(t, result.IsUpdate)
	assert.NotEqual(t, stray.ID, result.Rating.ID)

	stats, _, err := f.ratings.Recalculate(ctx, "thai")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalRatings)
	assert.InDelta(t, 5.0, stats.AverageRating, 1e-9)

	raw, err := f.store.Get(ctx, stray.ID)
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(raw))
}

func TestRatingService_FailedStatsWriteDropsNewRating(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	input := service.RatingInput{UserID: "u1", RestaurantID: "thai", OrderDate: "2024-03-04", Rating: 4}

	f.store.failPrefix = storage.RestaurantKey("thai")
	_, err := f.ratings.Submit(ctx, input)
	require.Error(t, err)
	assert.True(t, service.IsStoreFault(err))

	keys, err := f.store.List(ctx, storage.RatingPrefix("thai"))
	require.NoError(t, err)
	assert.Empty(t, keys)
	raw, err := f.store.Get(ctx, storage.HistoryKey("u1", "thai"))
	require.NoError(t, err)
	assert.Nil(t, raw)

	f.store.failPrefix = ""
	_, err = f.ratings.Submit(ctx, service.RatingInput{UserID: "u2", RestaurantID: "thai", OrderDate: "2024-03-04", Rating: 2})
	require.NoError(t, err)
	result, err := f.ratings.Submit(ctx, input)
	require.NoError(t, err)
	assert.False(t, result.IsUpdate)
	assert.Equal(t, 2, result.RatingStats.TotalRatings)
	assert.InDelta(t, 3.0, result.RatingStats.AverageRating, 1e-9)
}

func TestRatingService_RecalculateHealsDrift(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	for i, value := range []int{2, 4} {
		_, err := f.ratings.Submit(ctx, service.RatingInput{
			UserID: []string{"u1", "u2"}[i], RestaurantID: "thai", OrderDate: "2024-03-04", Rating: value,
		})
		require.NoError(t, err)
	}

	rec, err := f.restaurants.Get(ctx, "thai")
	require.NoError(t, err)
	rec.RatingStats = domain.NewRatingStats()
	rec.RatingStats.Add(2, rec.UpdatedAt)
	payload, err := json.Marshal(rec)
	require.NoError(t, err)
	require.NoError(t, f.accessor.Write(ctx, storage.RestaurantKey("thai"), payload))

	stats, changed, err := f.ratings.Recalculate(ctx, "thai")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2, stats.TotalRatings)
	assert.InDelta(t, 3.0, stats.AverageRating, 1e-9)

	_, changed, err = f.ratings.Recalculate(ctx, "thai")
	require.NoError(t, err)
	assert.False(t, changed)

	_, changed, err = f.ratings.Recalculate(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestRatingService_StatsForUnknownRestaurant(t *testing.T) {
	f := newFixture(t, nil, nil)

	view, err := f.ratings.Stats(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, 0, view.Stats.TotalRatings)
	assert.Equal(t, "no ratings yet", view.Synopsis.Summary)

	_, err = f.ratings.Stats(context.Background(), "")
	assert.True(t, service.IsValidation(err))
}
