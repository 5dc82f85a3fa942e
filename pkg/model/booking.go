package model

import (
	"time"
)

type BookingStatus string

const (
	StatusRequested BookingStatus = "requested"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCheckedIn BookingStatus = "checked_in"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
	StatusRefunded  BookingStatus = "refunded"
	StatusExpired   BookingStatus = "expired"
)

// Booking is the guest-facing reservation of a property for a date range.
// Bookings are never deleted; terminal states are kept for history and
// refund audit.
type Booking struct {
	ID              string        `json:"id,omitempty" bson:"_id,omitempty"`
	PropertyID      string        `json:"property_id" bson:"property_id" validate:"required"`
	GuestID         string        `json:"guest_id" bson:"guest_id" validate:"required"`
	HostID          string        `json:"host_id" bson:"host_id" validate:"required"`
	Interval        DateInterval  `json:"interval" bson:"interval"`
	Guests          int           `json:"guests" bson:"guests" validate:"required,min=1"`
	TotalPrice      int64         `json:"total_price" bson:"total_price" validate:"min=0"`
	Currency        string        `json:"currency" bson:"currency" validate:"required,len=3"`
	Status          BookingStatus `json:"status" bson:"status" validate:"required,oneof=requested confirmed checked_in completed cancelled refunded expired"`
	RecordID        string        `json:"-" bson:"record_id"`
	PaymentIntentID string        `json:"payment_intent_id,omitempty" bson:"payment_intent_id,omitempty"`
	HoldExpiresAt   *time.Time    `json:"expires_at,omitempty" bson:"hold_expires_at,omitempty"`
	RefundAmount    int64         `json:"refund_amount,omitempty" bson:"refund_amount,omitempty"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" bson:"updated_at"`
}

// CreateBookingRequest is the wire input for booking creation.
type CreateBookingRequest struct {
	PropertyID      string `json:"property_id" validate:"required"`
	GuestID         string `json:"guest_id" validate:"required"`
	StartDate       string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate         string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Guests          int    `json:"guests" validate:"required,min=1,max=50"`
	PaymentMethodID string `json:"payment_method_id" validate:"required"`
}

type CancelBookingRequest struct {
	Actor string `json:"actor" validate:"omitempty,oneof=guest host admin"`
}
