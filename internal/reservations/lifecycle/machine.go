// Package lifecycle validates and applies booking status transitions.
// The transition matrix is closed: anything not listed is rejected.
package lifecycle

import (
	"time"

	apperrors "stayd/pkg/errors"
	"stayd/pkg/model"
)

// transitions maps each status to the statuses it may move to.
// Terminal states (refunded, expired) have no outgoing edges except
// cancelled/completed which may still receive a refund.
var transitions = map[model.BookingStatus][]model.BookingStatus{
	model.StatusRequested: {model.StatusConfirmed, model.StatusCancelled, model.StatusExpired},
	model.StatusConfirmed: {model.StatusCheckedIn, model.StatusCancelled},
	model.StatusCheckedIn: {model.StatusCompleted, model.StatusCancelled},
	model.StatusCancelled: {model.StatusRefunded},
	model.StatusCompleted: {model.StatusRefunded},
}

// CanTransition reports whether moving from one status to another is
// allowed by the matrix.
func CanTransition(from, to model.BookingStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition applies the status change to the booking, rejecting
// anything outside the matrix. The interval never changes; only status
// and the update timestamp move.
func Transition(booking *model.Booking, to model.BookingStatus, now time.Time) error {
	if !CanTransition(booking.Status, to) {
		return apperrors.Conflict(
			"Cannot transition booking from '" + string(booking.Status) + "' to '" + string(to) + "'",
		).WithDetails(map[string]any{
			"booking_id": booking.ID,
			"from":       booking.Status,
			"to":         to,
		})
	}

	booking.Status = to
	booking.UpdatedAt = now.UTC()
	return nil
}

// AllStatuses lists every booking status, used by transition-matrix
// completeness checks.
func AllStatuses() []model.BookingStatus {
	return []model.BookingStatus{
		model.StatusRequested,
		model.StatusConfirmed,
		model.StatusCheckedIn,
		model.StatusCompleted,
		model.StatusCancelled,
		model.StatusRefunded,
		model.StatusExpired,
	}
}
