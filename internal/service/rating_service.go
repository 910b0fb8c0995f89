package service

import (
	"context"
	"strings"
	"time"

	"lunchstats/internal/cache"
	"lunchstats/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type RatingInput struct {
	UserID       string
	RestaurantID string
	OrderDate    string
	Rating       int
	Comment      string
	Items        []domain.OrderItem
}

type SubmitResult struct {
	Rating      domain.RatingRecord `json:"rating"`
	IsUpdate    bool                `json:"isUpdate"`
	RatingStats *domain.RatingStats `json:"ratingStats"`
}

type RatingService struct {
	records
	publisher EventPublisher
	now       func() time.Time
	newSuffix func() string
}

// NewRatingService accepts a nil publisher when events are disabled.
func NewRatingService(accessor *cache.Accessor, publisher EventPublisher, log *logrus.Entry) *RatingService {
	return &RatingService{
		records:   records{accessor: accessor, log: log},
		publisher: publisher,
		now:       time.Now,
		newSuffix: func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:12] },
	}
}

func validateRating(input RatingInput) error {
	if strings.TrimSpace(input.UserID) == "" {
		return invalid("userId", "is required")
	}
	if strings.TrimSpace(input.RestaurantID) == "" {
		return invalid("restaurant", "is required")
	}
	if !domain.IsValidDate(input.OrderDate) {
		return invalid("orderDate", "must match YYYY-MM-DD")
	}
	if !domain.IsValidRating(input.Rating) {
		return invalid("rating", "must be an integer between 1 and 4")
	}
	return nil
}

// Submit creates or edits the single rating for (user, restaurant, orderDate). A
// first rating is folded in incrementally; an edit recomputes from every stored
// rating so the previous value is not counted twice.
func (s *RatingService) Submit(ctx context.Context, input RatingInput) (*SubmitResult, error) {
	if err := validateRating(input); err != nil {
		return nil, err
	}
	now := s.now().UTC()

	history, err := s.loadHistory(ctx, input.UserID, input.RestaurantID)
	if err != nil {
		return nil, err
	}
	day := history[input.OrderDate]

	existing, err := s.findExisting(ctx, input, day)
	if err != nil {
		return nil, err
	}

	items := input.Items
	if items == nil {
		items = day.Items
	}
	submission := domain.NewSubmission(existing, domain.RatingRecord{
		UserID:       input.UserID,
		RestaurantID: input.RestaurantID,
		OrderDate:    input.OrderDate,
		Rating:       input.Rating,
		Comment:      input.Comment,
		Items:        items,
		Timestamp:    now,
	}, func() string {
		return domain.RatingID(input.RestaurantID, now, s.newSuffix())
	})
	rating := submission.Record

	if err := s.put(ctx, rating.ID, rating); err != nil {
		return nil, err
	}

	stats, err := s.applyStats(ctx, submission, now)
	if err != nil {
		if submission.State == domain.SubmissionNew {
			s.discard(ctx, rating.ID)
		}
		return nil, err
	}

	attached := rating
	day.Rating = &attached
	if day.Items == nil {
		day.Items = items
	}
	day.UpdatedAt = now
	history[input.OrderDate] = day
	if err := s.saveHistory(ctx, input.UserID, input.RestaurantID, history); err != nil {
		return nil, err
	}

	isUpdate := submission.State == domain.SubmissionEdit
	s.publish(ctx, domain.Event{
		Type:         domain.EventRatingSubmitted,
		RestaurantID: rating.RestaurantID,
		UserID:       rating.UserID,
		OrderDate:    rating.OrderDate,
		RatingID:     rating.ID,
		Rating:       rating.Rating,
		IsUpdate:     isUpdate,
		Timestamp:    now,
	})

	s.log.WithFields(logrus.Fields{
		"restaurant_id": rating.RestaurantID,
		"rating_id":     rating.ID,
		"state":         submission.State.String(),
	}).Info("rating submitted")

	return &SubmitResult{Rating: rating, IsUpdate: isUpdate, RatingStats: stats}, nil
}

// findExisting resolves the stored rating for the order: first through the id
// attached to the history day, then by scanning the restaurant's ratings. A
// record naming another restaurant never counts.
func (s *RatingService) findExisting(ctx context.Context, input RatingInput, day domain.DayEntry) (*domain.RatingRecord, error) {
	if day.Rating != nil && day.Rating.ID != "" {
		rec, err := s.loadRating(ctx, day.Rating.ID)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			rec = day.Rating
		}
		if rec.RestaurantID == "" || rec.RestaurantID == input.RestaurantID {
			return rec, nil
		}
	}

	all, err := s.listRatings(ctx, input.RestaurantID)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].UserID == input.UserID && all[i].OrderDate == input.OrderDate {
			return &all[i], nil
		}
	}
	return nil, nil
}

// discard drops a new rating whose stats could not be saved, so later ratings
// are not folded onto totals that never counted it.
func (s *RatingService) discard(ctx context.Context, ratingID string) {
	if err := s.remove(ctx, ratingID); err != nil {
		s.log.WithError(err).WithField("rating_id", ratingID).
			Error("rating stored without stats, recompute needed")
	}
}

func (s *RatingService) applyStats(ctx context.Context, submission domain.Submission, now time.Time) (*domain.RatingStats, error) {
	restaurantID := submission.Record.RestaurantID
	rec, err := s.loadRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = domain.NewRestaurantRecord(restaurantID, now)
	}

	var source []domain.RatingRecord
	if submission.State == domain.SubmissionEdit || rec.RatingStats == nil {
		if source, err = s.listRatings(ctx, restaurantID); err != nil {
			return nil, err
		}
	}

	rec.RatingStats = submission.Apply(rec.RatingStats, source, now)
	rec.UpdatedAt = now
	if err := s.saveRestaurant(ctx, rec); err != nil {
		return nil, err
	}
	return rec.RatingStats, nil
}

// Stats returns zero stats for a restaurant that has never been rated.
func (s *RatingService) Stats(ctx context.Context, restaurantID string) (*domain.RatingStatsView, error) {
	if strings.TrimSpace(restaurantID) == "" {
		return nil, invalid("restaurant", "is required")
	}
	rec, err := s.loadRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	stats := domain.NewRatingStats()
	if rec != nil && rec.RatingStats != nil {
		stats = rec.RatingStats
	}
	return &domain.RatingStatsView{
		RestaurantID: restaurantID,
		Stats:        stats,
		Synopsis:     stats.Synopsis(),
	}, nil
}

// Recalculate rebuilds the restaurant's stats from every stored rating and writes
// them only when the aggregate moved. The bool reports whether a write happened.
func (s *RatingService) Recalculate(ctx context.Context, restaurantID string) (*domain.RatingStats, bool, error) {
	if strings.TrimSpace(restaurantID) == "" {
		return nil, false, invalid("restaurant", "is required")
	}
	now := s.now().UTC()

	source, err := s.listRatings(ctx, restaurantID)
	if err != nil {
		return nil, false, err
	}
	stats := domain.RecalculateFromSource(source, now)

	rec, err := s.loadRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, false, err
	}
	if rec == nil {
		if stats.TotalRatings == 0 {
			return stats, false, nil
		}
		rec = domain.NewRestaurantRecord(restaurantID, now)
	}
	if rec.RatingStats.SameAggregate(stats) || (rec.RatingStats == nil && stats.TotalRatings == 0) {
		return stats, false, nil
	}

	rec.RatingStats = stats
	rec.UpdatedAt = now
	if err := s.saveRestaurant(ctx, rec); err != nil {
		return nil, false, err
	}
	s.log.WithFields(logrus.Fields{
		"restaurant_id": restaurantID,
		"total":         stats.TotalRatings,
	}).Info("rating stats recalculated")
	return stats, true, nil
}

func (s *RatingService) publish(ctx context.Context, evt domain.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.log.WithError(err).WithField("restaurant_id", evt.RestaurantID).Warn("publish event failed")
	}
}
