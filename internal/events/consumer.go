// Package events consumes restaurant events and recomputes rating stats so drift
// left by concurrent writers converges.
package events

import (
	"context"
	"encoding/json"
	"errors"

	"lunchstats/internal/domain"
	"lunchstats/internal/service"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Consumer struct {
	Reader  MessageReader
	Ratings service.RatingRecalculator
	log     *logrus.Entry
}

func NewConsumer(reader MessageReader, ratings service.RatingRecalculator, log *logrus.Entry) *Consumer {
	return &Consumer{
		Reader:  reader,
		Ratings: ratings,
		log:     log,
	}
}

// Start blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	c.log.Info("starting event consumer")
	for {
		message, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			c.log.WithError(err).Error("read message failed")
			continue
		}

		var evt domain.Event
		if err := json.Unmarshal(message.Value, &evt); err != nil {
			c.log.WithError(err).WithField("offset", message.Offset).Warn("skipping malformed event")
			continue
		}
		c.ProcessEvent(ctx, evt)
	}
}

// ProcessEvent reports whether the event triggered a stats rewrite.
func (c *Consumer) ProcessEvent(ctx context.Context, evt domain.Event) bool {
	switch evt.Type {
	case domain.EventRatingSubmitted, domain.EventOrderDeleted:
	default:
		c.log.WithField("type", evt.Type).Debug("ignoring event")
		return false
	}
	if evt.RestaurantID == "" {
		c.log.WithField("type", evt.Type).Warn("event without restaurant")
		return false
	}

	log := c.log.WithFields(logrus.Fields{"type": evt.Type, "restaurant_id": evt.RestaurantID})
	stats, changed, err := c.Ratings.Recalculate(ctx, evt.RestaurantID)
	if err != nil {
		log.WithError(err).Error("recalculate failed")
		return false
	}
	if changed {
		log.WithField("total", stats.TotalRatings).Info("stats corrected")
	}
	return changed
}

func (c *Consumer) Close() error {
	return c.Reader.Close()
}
