// Package manager owns all mutation of the interval store. Its three
// primitives serialize per property through a keyed lock table, so a
// check-then-insert can never interleave with another insert or removal
// on the same property, while different properties proceed independently.
package manager

import (
	"context"
	"errors"
	"fmt"
	"time"

	reserrors "stayd/internal/reservations/errors"
	"stayd/internal/reservations/repository"
	"stayd/internal/reservations/store"
	"stayd/pkg/config"
	"stayd/pkg/keylock"
	"stayd/pkg/model"

	"github.com/google/uuid"
)

type Manager struct {
	cfg     *config.Config
	locks   *keylock.Table
	store   *store.IntervalStore
	records repository.RecordRepository

	now func() time.Time
}

func NewManager(cfg *config.Config, intervalStore *store.IntervalStore, records repository.RecordRepository) *Manager {
	return &Manager{
		cfg:     cfg,
		locks:   keylock.New(),
		store:   intervalStore,
		records: records,
		now:     time.Now,
	}
}

// WithClock overrides the manager's time source. Expiry decisions hang
// off this clock, so tests drive it together with the service clock.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// lockProperty acquires the property's exclusive lock, waiting at most
// the configured lock timeout. A timed-out wait surfaces as
// ErrLockTimeout so callers can retry instead of blocking indefinitely.
func (m *Manager) lockProperty(ctx context.Context, propertyID string) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, m.cfg.PropertyLockTimeout)
	defer cancel()

	release, err := m.locks.Acquire(lockCtx, propertyID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, reserrors.ErrLockTimeout
	}
	return release, nil
}

// TryReserve atomically checks the property for overlapping active
// intervals and inserts a new record when the range is free. Exactly one
// of any set of concurrent overlapping attempts succeeds; the rest get
// ErrConflict with no side effect.
func (m *Manager) TryReserve(ctx context.Context, propertyID, bookingID string, interval model.DateInterval, kind model.RecordKind, expiresAt *time.Time) (*model.ReservationRecord, error) {
	if !interval.IsValid() {
		return nil, reserrors.ErrInvalidInterval
	}

	release, err := m.lockProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	defer release()

	now := m.now()
	record := &model.ReservationRecord{
		ID:         uuid.New().String(),
		PropertyID: propertyID,
		BookingID:  bookingID,
		Interval:   interval,
		Kind:       kind,
		ExpiresAt:  expiresAt,
		Version:    1,
		CreatedAt:  now.UTC(),
	}

	if err := m.store.Insert(record, now); err != nil {
		return nil, err
	}

	if err := m.records.Insert(ctx, record); err != nil {
		m.store.Remove(propertyID, record.ID)
		return nil, fmt.Errorf("failed to persist reservation record: %w", err)
	}

	m.cfg.Log.Debug("Reservation record inserted",
		"record_id", record.ID,
		"property_id", propertyID,
		"booking_id", bookingID,
		"kind", kind,
		"interval", interval.String(),
	)
	return record.Clone(), nil
}

// Release removes a record under the property lock. Releasing a record
// that is already gone is a no-op, so expiry, cancellation, and payment
// failure can all call it without coordinating.
func (m *Manager) Release(ctx context.Context, propertyID, recordID string) error {
	release, err := m.lockProperty(ctx, propertyID)
	if err != nil {
		return err
	}
	defer release()

	removed := m.store.Remove(propertyID, recordID)
	if err := m.records.Delete(ctx, recordID); err != nil {
		return fmt.Errorf("failed to delete reservation record: %w", err)
	}

	m.cfg.Log.Debug("Reservation record released",
		"record_id", recordID,
		"property_id", propertyID,
		"was_present", removed,
	)
	return nil
}

// ReleaseExpiredHold removes a record only when it is a hold whose
// window has elapsed. The kind check runs under the property lock, so a
// promotion that raced ahead of the sweep is observed here and the
// sweep stands down; the return value reports whether the hold was
// reclaimed.
func (m *Manager) ReleaseExpiredHold(ctx context.Context, propertyID, recordID string) (bool, error) {
	release, err := m.lockProperty(ctx, propertyID)
	if err != nil {
		return false, err
	}
	defer release()

	if record := m.store.Get(propertyID, recordID); record != nil {
		if record.Kind == model.KindConfirmed || record.ActiveAt(m.now()) {
			return false, nil
		}
		m.store.Remove(propertyID, recordID)
	}

	if err := m.records.Delete(ctx, recordID); err != nil {
		return false, fmt.Errorf("failed to delete reservation record: %w", err)
	}

	m.cfg.Log.Debug("Expired hold reclaimed",
		"record_id", recordID,
		"property_id", propertyID,
	)
	return true, nil
}

// Promote converts a hold into a confirmed record, failing with
// ErrAlreadyExpired when the hold is gone or past its expiry. Racing
// against an expiry sweep is safe: whichever acquires the property lock
// first wins, the loser observes a consistent post-state.
func (m *Manager) Promote(ctx context.Context, propertyID, recordID string) (*model.ReservationRecord, error) {
	release, err := m.lockProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	defer release()

	record, err := m.store.Promote(propertyID, recordID, m.now())
	if err != nil {
		return nil, err
	}

	if err := m.records.UpdatePromoted(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist record promotion: %w", err)
	}

	m.cfg.Log.Debug("Reservation record promoted",
		"record_id", recordID,
		"property_id", propertyID,
	)
	return record, nil
}

// QueryOverlap returns the active records overlapping the window.
// Read-only; does not take the property lock.
func (m *Manager) QueryOverlap(propertyID string, window model.DateInterval) []*model.ReservationRecord {
	return m.store.QueryOverlap(propertyID, window, m.now())
}

// WarmUp seeds the interval store from persisted active records. Called
// once at startup so a restarted process resumes with no lost holds.
func (m *Manager) WarmUp(ctx context.Context) error {
	records, err := m.records.FindActive(ctx, m.now())
	if err != nil {
		return fmt.Errorf("failed to warm interval store: %w", err)
	}
	m.store.Load(records)
	m.cfg.Log.Info("Interval store warmed from repository", "records", len(records))
	return nil
}

// CompactHistory drops in-memory records that ended before today.
func (m *Manager) CompactHistory() int {
	return m.store.Compact(model.Day(m.now()))
}

// IsRetryable reports whether the error is a transient lock-wait
// failure worth retrying.
func IsRetryable(err error) bool {
	return errors.Is(err, reserrors.ErrLockTimeout)
}
