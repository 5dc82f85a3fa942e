// Package events publishes booking lifecycle events for the external
// notification and analytics workers. Publishing is fire-and-forget:
// failures are logged, never surfaced to the booking flow.
package events

import (
	"context"
	"time"

	"stayd/pkg/kafka"
	"stayd/pkg/logger"
	"stayd/pkg/model"
)

type producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type Publisher struct {
	producer producer
	source   string
	log      *logger.Logger
}

// NewPublisher wraps a Kafka producer. A nil producer yields a no-op
// publisher, used when no brokers are configured.
func NewPublisher(p *kafka.Producer, source string, log *logger.Logger) *Publisher {
	pub := &Publisher{source: source, log: log}
	if p != nil {
		pub.producer = p
	}
	return pub
}

func (p *Publisher) BookingCreated(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, model.EventBookingCreated, booking)
}

func (p *Publisher) BookingConfirmed(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, model.EventBookingConfirmed, booking)
}

func (p *Publisher) BookingCancelled(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, model.EventBookingCancelled, booking)
}

func (p *Publisher) BookingExpired(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, model.EventBookingExpired, booking)
}

func (p *Publisher) publish(ctx context.Context, eventType string, booking *model.Booking) {
	if p.producer == nil {
		return
	}

	event := model.BookingEvent{
		BookingID:  booking.ID,
		PropertyID: booking.PropertyID,
		Status:     booking.Status,
		Timestamp:  time.Now().UTC(),
	}

	// Keyed by property so consumers see one property's events in order.
	msg := kafka.NewMessage().
		WithKey(booking.PropertyID).
		WithValue(event).
		WithEventType(eventType).
		WithSource(p.source).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"property_id", booking.PropertyID,
			"error", err,
		)
		return
	}

	p.log.Debug("Booking event published",
		"event_type", eventType,
		"booking_id", booking.ID,
	)
}
