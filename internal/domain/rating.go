package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	MinRating = 1
	MaxRating = 4
)

func IsValidRating(value int) bool {
	return value >= MinRating && value <= MaxRating
}

type RatingStats struct {
	TotalRatings       int         `json:"totalRatings"`
	AverageRating      float64     `json:"averageRating"`
	RatingDistribution map[int]int `json:"ratingDistribution"`
	LastUpdated        time.Time   `json:"lastUpdated"`
}

func NewRatingStats() *RatingStats {
	return &RatingStats{RatingDistribution: emptyDistribution()}
}

func emptyDistribution() map[int]int {
	dist := make(map[int]int, MaxRating)
	for v := MinRating; v <= MaxRating; v++ {
		dist[v] = 0
	}
	return dist
}

// Add folds one new observation into the running average. Only correct for a
// rating that has never been counted before.
func (s *RatingStats) Add(value int, now time.Time) {
	if s.RatingDistribution == nil {
		s.RatingDistribution = emptyDistribution()
	}
	total := float64(s.TotalRatings)
	s.AverageRating = (s.AverageRating*total + float64(value)) / (total + 1)
	s.TotalRatings++
	s.RatingDistribution[value]++
	s.LastUpdated = now
}

// RecalculateFromSource rebuilds stats from every persisted rating. Out of range
// values are ignored.
func RecalculateFromSource(records []RatingRecord, now time.Time) *RatingStats {
	stats := NewRatingStats()
	sum := 0
	for _, rec := range records {
		if !IsValidRating(rec.Rating) {
			continue
		}
		stats.RatingDistribution[rec.Rating]++
		stats.TotalRatings++
		sum += rec.Rating
	}
	if stats.TotalRatings > 0 {
		stats.AverageRating = float64(sum) / float64(stats.TotalRatings)
	}
	stats.LastUpdated = now
	return stats
}

// Consistent checks sum(distribution) == total and average == weighted mean.
func (s *RatingStats) Consistent() bool {
	count, sum := 0, 0
	for v, n := range s.RatingDistribution {
		count += n
		sum += v * n
	}
	if count != s.TotalRatings {
		return false
	}
	if count == 0 {
		return s.AverageRating == 0
	}
	return math.Abs(float64(sum)/float64(count)-s.AverageRating) < 1e-9
}

// SameAggregate compares everything but LastUpdated.
func (s *RatingStats) SameAggregate(other *RatingStats) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.TotalRatings != other.TotalRatings || math.Abs(s.AverageRating-other.AverageRating) > 1e-9 {
		return false
	}
	for v := MinRating; v <= MaxRating; v++ {
		if s.RatingDistribution[v] != other.RatingDistribution[v] {
			return false
		}
	}
	return true
}

type SubmissionState int

const (
	SubmissionNew SubmissionState = iota
	SubmissionEdit
)

func (s SubmissionState) String() string {
	if s == SubmissionEdit {
		return "edit"
	}
	return "new"
}

// Submission carries a rating through either the New or the Edit path.
type Submission struct {
	State  SubmissionState
	Record RatingRecord
}

// NewSubmission reuses the id of an existing rating for the same order, or mints
// one through newID when there is none.
func NewSubmission(existing *RatingRecord, incoming RatingRecord, newID func() string) Submission {
	if existing != nil {
		incoming.ID = existing.ID
		return Submission{State: SubmissionEdit, Record: incoming}
	}
	incoming.ID = newID()
	return Submission{State: SubmissionNew, Record: incoming}
}

// Apply is the single aggregation entry point. source must already contain the
// persisted submission. A New rating against missing stats falls back to a full
// recompute because there is no running total to fold into.
func (s Submission) Apply(stats *RatingStats, source []RatingRecord, now time.Time) *RatingStats {
	if s.State == SubmissionEdit || stats == nil {
		return RecalculateFromSource(source, now)
	}
	next := *stats
	next.RatingDistribution = make(map[int]int, MaxRating)
	for k, v := range stats.RatingDistribution {
		next.RatingDistribution[k] = v
	}
	next.Add(s.Record.Rating, now)
	return &next
}

// RatingID builds "rating:{restaurant}:{unixMillis}:{random}" with the restaurant
// id escaped by KeySegment.
func RatingID(restaurantID string, at time.Time, random string) string {
	return fmt.Sprintf("rating:%s:%d:%s", KeySegment(restaurantID), at.UnixMilli(), random)
}

type SynopsisBucket struct {
	Rating  int     `json:"rating"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type RatingSynopsis struct {
	Average float64          `json:"average"`
	Total   int              `json:"total"`
	Buckets []SynopsisBucket `json:"buckets"`
	Summary string           `json:"summary"`
}

// Synopsis renders the human facing view: average rounded to one decimal and
// buckets from best to worst.
func (s *RatingStats) Synopsis() *RatingSynopsis {
	if s == nil {
		return nil
	}
	syn := &RatingSynopsis{
		Average: math.Round(s.AverageRating*10) / 10,
		Total:   s.TotalRatings,
		Buckets: make([]SynopsisBucket, 0, MaxRating),
	}
	parts := make([]string, 0, MaxRating)
	for v := MaxRating; v >= MinRating; v-- {
		count := s.RatingDistribution[v]
		bucket := SynopsisBucket{Rating: v, Count: count}
		if s.TotalRatings > 0 {
			bucket.Percent = math.Round(float64(count)*1000/float64(s.TotalRatings)) / 10
		}
		syn.Buckets = append(syn.Buckets, bucket)
		if count > 0 {
			parts = append(parts, fmt.Sprintf("%d★×%d", v, count))
		}
	}
	if len(parts) == 0 {
		syn.Summary = "no ratings yet"
	} else {
		syn.Summary = fmt.Sprintf("%.1f/%d from %d: %s", syn.Average, MaxRating, syn.Total, strings.Join(parts, " · "))
	}
	return syn
}
