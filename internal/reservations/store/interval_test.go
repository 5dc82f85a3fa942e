package store

import (
	"testing"
	"time"

	reserrors "stayd/internal/reservations/errors"
	"stayd/pkg/model"
)

func day(s string) time.Time {
	t, err := time.ParseInLocation(model.DateLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func interval(start, end string) model.DateInterval {
	return model.DateInterval{Start: day(start), End: day(end)}
}

func hold(id, propertyID string, iv model.DateInterval, expiresAt time.Time) *model.ReservationRecord {
	return &model.ReservationRecord{
		ID:         id,
		PropertyID: propertyID,
		BookingID:  "booking-" + id,
		Interval:   iv,
		Kind:       model.KindHold,
		ExpiresAt:  &expiresAt,
		Version:    1,
	}
}

func confirmed(id, propertyID string, iv model.DateInterval) *model.ReservationRecord {
	return &model.ReservationRecord{
		ID:         id,
		PropertyID: propertyID,
		BookingID:  "booking-" + id,
		Interval:   iv,
		Kind:       model.KindConfirmed,
		Version:    1,
	}
}

func TestInsert_RejectsOverlap(t *testing.T) {
	now := time.Now()
	s := NewIntervalStore()

	if err := s.Insert(confirmed("r1", "p1", interval("2025-09-10", "2025-09-15")), now); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	tests := []struct {
		name    string
		iv      model.DateInterval
		wantErr error
	}{
		{"identical range", interval("2025-09-10", "2025-09-15"), reserrors.ErrConflict},
		{"contained range", interval("2025-09-12", "2025-09-14"), reserrors.ErrConflict},
		{"overlapping tail", interval("2025-09-14", "2025-09-20"), reserrors.ErrConflict},
		{"overlapping head", interval("2025-09-05", "2025-09-11"), reserrors.ErrConflict},
		{"adjacent after (half-open)", interval("2025-09-15", "2025-09-18"), nil},
		{"adjacent before (half-open)", interval("2025-09-08", "2025-09-10"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Insert(confirmed("r-"+tt.name, "p1", tt.iv), now)
			if err != tt.wantErr {
				t.Errorf("Insert() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestInsert_ExpiredHoldDoesNotBlock(t *testing.T) {
	now := time.Now()
	s := NewIntervalStore()

	expired := hold("r1", "p1", interval("2025-09-10", "2025-09-15"), now.Add(-time.Minute))
	if err := s.Insert(expired, now); err != nil {
		t.Fatalf("inserting expired hold failed: %v", err)
	}

	if err := s.Insert(confirmed("r2", "p1", interval("2025-09-10", "2025-09-15")), now); err != nil {
		t.Errorf("expired hold should not block insertion, got %v", err)
	}
}

func TestQueryOverlap_FiltersInactive(t *testing.T) {
	now := time.Now()
	s := NewIntervalStore()

	liveHold := hold("live", "p1", interval("2025-09-01", "2025-09-05"), now.Add(10*time.Minute))
	deadHold := hold("dead", "p1", interval("2025-09-06", "2025-09-08"), now.Add(-time.Minute))
	booked := confirmed("booked", "p1", interval("2025-09-09", "2025-09-12"))

	for _, rec := range []*model.ReservationRecord{deadHold, booked, liveHold} {
		if err := s.Insert(rec, now); err != nil {
			t.Fatalf("insert %s failed: %v", rec.ID, err)
		}
	}

	got := s.QueryOverlap("p1", interval("2025-09-01", "2025-09-30"), now)
	if len(got) != 2 {
		t.Fatalf("expected 2 active records, got %d", len(got))
	}
	if got[0].ID != "live" || got[1].ID != "booked" {
		t.Errorf("expected records ordered by start [live booked], got [%s %s]", got[0].ID, got[1].ID)
	}
}

func TestQueryOverlap_OtherProperty(t *testing.T) {
	now := time.Now()
	s := NewIntervalStore()

	if err := s.Insert(confirmed("r1", "p1", interval("2025-09-10", "2025-09-15")), now); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if got := s.QueryOverlap("p2", interval("2025-09-10", "2025-09-15"), now); len(got) != 0 {
		t.Errorf("expected no overlap on different property, got %d records", len(got))
	}
}

func TestRemove_Idempotent(t *testing.T) {
	now := time.Now()
	s := NewIntervalStore()

	if err := s.Insert(confirmed("r1", "p1", interval("2025-09-10", "2025-09-15")), now); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if !s.Remove("p1", "r1") {
		t.Error("first remove should report removal")
	}
	if s.Remove("p1", "r1") {
		t.Error("second remove should be a no-op")
	}
	if s.Remove("p1", "never-existed") {
		t.Error("removing unknown record should be a no-op")
	}
}

func TestPromote(t *testing.T) {
	now := time.Now()
	s := NewIntervalStore()

	live := hold("live", "p1", interval("2025-09-10", "2025-09-15"), now.Add(10*time.Minute))
	dead := hold("dead", "p1", interval("2025-09-20", "2025-09-22"), now.Add(-time.Second))
	for _, rec := range []*model.ReservationRecord{live, dead} {
		if err := s.Insert(rec, now); err != nil {
			t.Fatalf("insert %s failed: %v", rec.ID, err)
		}
	}

	promoted, err := s.Promote("p1", "live", now)
	if err != nil {
		t.Fatalf("promote live hold failed: %v", err)
	}
	if promoted.Kind != model.KindConfirmed {
		t.Errorf("expected kind confirmed, got %s", promoted.Kind)
	}
	if promoted.ExpiresAt != nil {
		t.Error("expected expiry cleared after promote")
	}
	if promoted.Version != 2 {
		t.Errorf("expected version bump to 2, got %d", promoted.Version)
	}

	if _, err := s.Promote("p1", "dead", now); err != reserrors.ErrAlreadyExpired {
		t.Errorf("promoting expired hold: got %v, want ErrAlreadyExpired", err)
	}
	if _, err := s.Promote("p1", "missing", now); err != reserrors.ErrAlreadyExpired {
		t.Errorf("promoting missing record: got %v, want ErrAlreadyExpired", err)
	}
}

func TestCompact(t *testing.T) {
	now := time.Now()
	s := NewIntervalStore()

	past := confirmed("past", "p1", interval("2025-01-01", "2025-01-05"))
	future := confirmed("future", "p1", interval("2025-12-01", "2025-12-05"))
	for _, rec := range []*model.ReservationRecord{past, future} {
		if err := s.Insert(rec, now); err != nil {
			t.Fatalf("insert %s failed: %v", rec.ID, err)
		}
	}

	removed := s.Compact(day("2025-06-01"))
	if removed != 1 {
		t.Errorf("expected 1 record compacted, got %d", removed)
	}
	if s.Get("p1", "past") != nil {
		t.Error("past record should be gone")
	}
	if s.Get("p1", "future") == nil {
		t.Error("future record should remain")
	}
}

func TestLoad_ReplacesState(t *testing.T) {
	now := time.Now()
	s := NewIntervalStore()

	if err := s.Insert(confirmed("old", "p1", interval("2025-09-10", "2025-09-15")), now); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	s.Load([]*model.ReservationRecord{
		confirmed("b", "p2", interval("2025-10-05", "2025-10-08")),
		confirmed("a", "p2", interval("2025-10-01", "2025-10-03")),
	})

	if s.Get("p1", "old") != nil {
		t.Error("load should replace previous state")
	}

	got := s.QueryOverlap("p2", interval("2025-10-01", "2025-10-31"), now)
	if len(got) != 2 {
		t.Fatalf("expected 2 loaded records, got %d", len(got))
	}
	if got[0].ID != "a" {
		t.Errorf("expected records sorted by start after load, got first %s", got[0].ID)
	}
}
