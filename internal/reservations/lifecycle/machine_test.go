package lifecycle

import (
	"testing"
	"time"

	apperrors "stayd/pkg/errors"
	"stayd/pkg/model"
)

func TestCanTransition_AllowedEdges(t *testing.T) {
	allowed := []struct {
		from, to model.BookingStatus
	}{
		{model.StatusRequested, model.StatusConfirmed},
		{model.StatusRequested, model.StatusCancelled},
		{model.StatusRequested, model.StatusExpired},
		{model.StatusConfirmed, model.StatusCheckedIn},
		{model.StatusConfirmed, model.StatusCancelled},
		{model.StatusCheckedIn, model.StatusCompleted},
		{model.StatusCheckedIn, model.StatusCancelled},
		{model.StatusCancelled, model.StatusRefunded},
		{model.StatusCompleted, model.StatusRefunded},
	}

	for _, tt := range allowed {
		if !CanTransition(tt.from, tt.to) {
			t.Errorf("expected %s -> %s to be allowed", tt.from, tt.to)
		}
	}
}

// TestCanTransition_MatrixIsClosed walks the full status cross-product
// and checks that every edge outside the allowed set is rejected.
func TestCanTransition_MatrixIsClosed(t *testing.T) {
	allowed := map[model.BookingStatus]map[model.BookingStatus]bool{
		model.StatusRequested: {model.StatusConfirmed: true, model.StatusCancelled: true, model.StatusExpired: true},
		model.StatusConfirmed: {model.StatusCheckedIn: true, model.StatusCancelled: true},
		model.StatusCheckedIn: {model.StatusCompleted: true, model.StatusCancelled: true},
		model.StatusCancelled: {model.StatusRefunded: true},
		model.StatusCompleted: {model.StatusRefunded: true},
	}

	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			want := allowed[from][to]
			got := CanTransition(from, to)
			if got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestTransition_AppliesStatusAndTimestamp(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	booking := &model.Booking{
		ID:     "b1",
		Status: model.StatusRequested,
	}

	if err := Transition(booking, model.StatusConfirmed, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != model.StatusConfirmed {
		t.Errorf("status = %s, want confirmed", booking.Status)
	}
	if !booking.UpdatedAt.Equal(now) {
		t.Errorf("updated_at = %s, want %s", booking.UpdatedAt, now)
	}
}

func TestTransition_RejectsIllegalEdge(t *testing.T) {
	booking := &model.Booking{
		ID:     "b1",
		Status: model.StatusExpired,
	}

	err := Transition(booking, model.StatusConfirmed, time.Now())
	if err == nil {
		t.Fatal("expected error for expired -> confirmed")
	}
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Errorf("expected CONFLICT code, got %v", err)
	}
	if booking.Status != model.StatusExpired {
		t.Errorf("status must not change on rejected transition, got %s", booking.Status)
	}
}
