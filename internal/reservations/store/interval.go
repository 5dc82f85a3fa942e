// Package store holds the authoritative per-property sets of active
// reserved intervals. All mutation happens through the reservation
// manager, which serializes per property; the store's own mutex only
// protects its data structures.
package store

import (
	"sort"
	"sync"
	"time"

	reserrors "stayd/internal/reservations/errors"
	"stayd/pkg/model"
)

// propertySet keeps a property's records ordered by interval start.
// Expired holds linger until swept, so entries are not guaranteed
// pairwise non-overlapping; the active subset is.
type propertySet struct {
	records []*model.ReservationRecord
}

type IntervalStore struct {
	mu    sync.RWMutex
	props map[string]*propertySet
}

func NewIntervalStore() *IntervalStore {
	return &IntervalStore{
		props: make(map[string]*propertySet),
	}
}

// QueryOverlap returns copies of all active records on the property that
// overlap the given interval, ordered by start date.
func (s *IntervalStore) QueryOverlap(propertyID string, interval model.DateInterval, now time.Time) []*model.ReservationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.props[propertyID]
	if !ok {
		return nil
	}

	var overlapping []*model.ReservationRecord
	for _, rec := range set.records {
		if !rec.Interval.Start.Before(interval.End) {
			break
		}
		if rec.ActiveAt(now) && rec.Interval.Overlaps(interval) {
			overlapping = append(overlapping, rec.Clone())
		}
	}
	return overlapping
}

// Insert adds the record if no active record overlaps its interval.
// Returns ErrConflict otherwise, leaving the set untouched.
func (s *IntervalStore) Insert(record *model.ReservationRecord, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.props[record.PropertyID]
	if !ok {
		set = &propertySet{}
		s.props[record.PropertyID] = set
	}

	for _, rec := range set.records {
		if !rec.Interval.Start.Before(record.Interval.End) {
			break
		}
		if rec.ActiveAt(now) && rec.Interval.Overlaps(record.Interval) {
			return reserrors.ErrConflict
		}
	}

	idx := sort.Search(len(set.records), func(i int) bool {
		return !set.records[i].Interval.Start.Before(record.Interval.Start)
	})
	set.records = append(set.records, nil)
	copy(set.records[idx+1:], set.records[idx:])
	set.records[idx] = record.Clone()
	return nil
}

// Remove deletes the record by ID. Removing an absent record is a no-op;
// the return value reports whether anything was removed.
func (s *IntervalStore) Remove(propertyID, recordID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.props[propertyID]
	if !ok {
		return false
	}

	for i, rec := range set.records {
		if rec.ID == recordID {
			set.records = append(set.records[:i], set.records[i+1:]...)
			if len(set.records) == 0 {
				delete(s.props, propertyID)
			}
			return true
		}
	}
	return false
}

// Promote converts a hold into a confirmed record and clears its expiry.
// Fails with ErrAlreadyExpired if the record is gone or its hold window
// has passed.
func (s *IntervalStore) Promote(propertyID, recordID string, now time.Time) (*model.ReservationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.props[propertyID]
	if !ok {
		return nil, reserrors.ErrAlreadyExpired
	}

	for _, rec := range set.records {
		if rec.ID != recordID {
			continue
		}
		if rec.Kind == model.KindConfirmed {
			return rec.Clone(), nil
		}
		if !rec.ActiveAt(now) {
			return nil, reserrors.ErrAlreadyExpired
		}
		rec.Kind = model.KindConfirmed
		rec.ExpiresAt = nil
		rec.Version++
		return rec.Clone(), nil
	}
	return nil, reserrors.ErrAlreadyExpired
}

// Get returns a copy of the record, or nil when absent.
func (s *IntervalStore) Get(propertyID, recordID string) *model.ReservationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.props[propertyID]
	if !ok {
		return nil
	}
	for _, rec := range set.records {
		if rec.ID == recordID {
			return rec.Clone()
		}
	}
	return nil
}

// Load seeds the store with persisted records, replacing any existing
// state. Used at startup to warm from the repository.
func (s *IntervalStore) Load(records []*model.ReservationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.props = make(map[string]*propertySet)
	for _, rec := range records {
		set, ok := s.props[rec.PropertyID]
		if !ok {
			set = &propertySet{}
			s.props[rec.PropertyID] = set
		}
		set.records = append(set.records, rec.Clone())
	}
	for _, set := range s.props {
		sort.Slice(set.records, func(i, j int) bool {
			return set.records[i].Interval.Start.Before(set.records[j].Interval.Start)
		})
	}
}

// Compact drops records whose interval ends at or before the horizon.
// Overlap checks only ever look at the present and future, so past
// intervals cost memory for nothing; their history stays in the
// repository.
func (s *IntervalStore) Compact(horizon time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for propertyID, set := range s.props {
		kept := set.records[:0]
		for _, rec := range set.records {
			if rec.Interval.End.After(horizon) {
				kept = append(kept, rec)
			} else {
				removed++
			}
		}
		set.records = kept
		if len(set.records) == 0 {
			delete(s.props, propertyID)
		}
	}
	return removed
}

// ActiveCount reports the number of active records on a property.
func (s *IntervalStore) ActiveCount(propertyID string, now time.Time) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.props[propertyID]
	if !ok {
		return 0
	}
	count := 0
	for _, rec := range set.records {
		if rec.ActiveAt(now) {
			count++
		}
	}
	return count
}
