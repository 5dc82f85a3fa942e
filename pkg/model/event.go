package model

import "time"

const (
	EventBookingCreated   = "booking-created"
	EventBookingConfirmed = "booking-confirmed"
	EventBookingCancelled = "booking-cancelled"
	EventBookingExpired   = "booking-expired"
)

// BookingEvent is the fire-and-forget payload published to the
// notification and analytics workers.
type BookingEvent struct {
	BookingID  string        `json:"booking_id"`
	PropertyID string        `json:"property_id"`
	Status     BookingStatus `json:"status"`
	Timestamp  time.Time     `json:"timestamp"`
}
