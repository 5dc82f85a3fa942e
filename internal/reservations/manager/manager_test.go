package manager

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	reserrors "stayd/internal/reservations/errors"
	"stayd/internal/reservations/store"
	"stayd/pkg/config"
	"stayd/pkg/logger"
	"stayd/pkg/model"
)

type mockRecordRepository struct {
	insertFunc func(ctx context.Context, record *model.ReservationRecord) error
	deleteFunc func(ctx context.Context, recordID string) error
}

func (m *mockRecordRepository) Insert(ctx context.Context, record *model.ReservationRecord) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, record)
	}
	return nil
}

func (m *mockRecordRepository) Delete(ctx context.Context, recordID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, recordID)
	}
	return nil
}

func (m *mockRecordRepository) UpdatePromoted(ctx context.Context, record *model.ReservationRecord) error {
	return nil
}

func (m *mockRecordRepository) FindActive(ctx context.Context, now time.Time) ([]*model.ReservationRecord, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log:                 logger.Discard(),
		PropertyLockTimeout: 2 * time.Second,
	}
}

func newTestManager(repo *mockRecordRepository) *Manager {
	if repo == nil {
		repo = &mockRecordRepository{}
	}
	return NewManager(testConfig(), store.NewIntervalStore(), repo)
}

func interval(startOffset, nights int) model.DateInterval {
	start := model.Day(time.Now()).AddDate(0, 0, startOffset)
	return model.DateInterval{Start: start, End: start.AddDate(0, 0, nights)}
}

func TestTryReserve_ExactlyOneWinner(t *testing.T) {
	m := newTestManager(nil)
	iv := interval(10, 5)
	expiry := time.Now().Add(10 * time.Minute)

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := m.TryReserve(context.Background(), "p1", fmt.Sprintf("booking-%d", n), iv, model.KindHold, &expiry)
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, reserrors.ErrConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if wins != 1 {
		t.Errorf("expected exactly one winner, got %d", wins)
	}
	if conflicts != attempts-1 {
		t.Errorf("expected %d conflicts, got %d", attempts-1, conflicts)
	}
}

func TestTryReserve_ConcurrentFuzzNoOverlap(t *testing.T) {
	m := newTestManager(nil)
	expiry := time.Now().Add(10 * time.Minute)

	properties := []string{"p1", "p2", "p3"}
	const attempts = 200

	var mu sync.Mutex
	won := make(map[string][]*model.ReservationRecord)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(n)))
			propertyID := properties[rng.Intn(len(properties))]
			iv := interval(rng.Intn(30), 1+rng.Intn(7))

			kind := model.KindHold
			exp := &expiry
			if rng.Intn(2) == 0 {
				kind = model.KindConfirmed
				exp = nil
			}

			rec, err := m.TryReserve(context.Background(), propertyID, fmt.Sprintf("booking-%d", n), iv, kind, exp)
			if err != nil {
				if !errors.Is(err, reserrors.ErrConflict) {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			mu.Lock()
			won[propertyID] = append(won[propertyID], rec)
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	// The no-overlap invariant: every pair of successful reservations on
	// the same property must be disjoint.
	for propertyID, records := range won {
		for i := 0; i < len(records); i++ {
			for j := i + 1; j < len(records); j++ {
				if records[i].Interval.Overlaps(records[j].Interval) {
					t.Errorf("property %s: overlapping winners %s and %s",
						propertyID, records[i].Interval, records[j].Interval)
				}
			}
		}
	}
}

func TestTryReserve_InvalidInterval(t *testing.T) {
	m := newTestManager(nil)
	iv := model.DateInterval{Start: model.Day(time.Now()).AddDate(0, 0, 5), End: model.Day(time.Now())}

	_, err := m.TryReserve(context.Background(), "p1", "b1", iv, model.KindConfirmed, nil)
	if !errors.Is(err, reserrors.ErrInvalidInterval) {
		t.Errorf("expected ErrInvalidInterval, got %v", err)
	}
}

func TestTryReserve_PersistFailureRollsBack(t *testing.T) {
	calls := 0
	repo := &mockRecordRepository{
		insertFunc: func(ctx context.Context, record *model.ReservationRecord) error {
			calls++
			if calls == 1 {
				return errors.New("mongo write failed")
			}
			return nil
		},
	}
	m := newTestManager(repo)
	iv := interval(10, 3)

	if _, err := m.TryReserve(context.Background(), "p1", "b1", iv, model.KindConfirmed, nil); err == nil {
		t.Fatal("expected persist error")
	}

	// The failed insert must leave no trace; the same range reserves fine.
	if _, err := m.TryReserve(context.Background(), "p1", "b2", iv, model.KindConfirmed, nil); err != nil {
		t.Errorf("expected retry to succeed after rollback, got %v", err)
	}
}

func TestRelease_Idempotent(t *testing.T) {
	m := newTestManager(nil)
	iv := interval(10, 3)

	rec, err := m.TryReserve(context.Background(), "p1", "b1", iv, model.KindConfirmed, nil)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	if err := m.Release(context.Background(), "p1", rec.ID); err != nil {
		t.Fatalf("first release failed: %v", err)
	}
	if err := m.Release(context.Background(), "p1", rec.ID); err != nil {
		t.Errorf("second release should be a no-op, got %v", err)
	}

	// The released range is reservable again.
	if _, err := m.TryReserve(context.Background(), "p1", "b2", iv, model.KindConfirmed, nil); err != nil {
		t.Errorf("expected reserve after release to succeed, got %v", err)
	}
}

func TestReleaseExpiredHold(t *testing.T) {
	m := newTestManager(nil)
	ctx := context.Background()

	deadExpiry := time.Now().Add(-time.Second)
	dead, err := m.TryReserve(ctx, "p1", "b1", interval(10, 3), model.KindHold, &deadExpiry)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	reclaimed, err := m.ReleaseExpiredHold(ctx, "p1", dead.ID)
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if !reclaimed {
		t.Error("expected elapsed hold to be reclaimed")
	}
	if _, err := m.TryReserve(ctx, "p1", "b2", interval(10, 3), model.KindConfirmed, nil); err != nil {
		t.Errorf("expected range to be free after reclaim, got %v", err)
	}
}

func TestReleaseExpiredHold_StandsDown(t *testing.T) {
	m := newTestManager(nil)
	ctx := context.Background()

	// A hold promoted after the sweep picked it up must survive; the
	// sweep acts on a stale snapshot, the kind check here is live.
	expiry := time.Now().Add(10 * time.Minute)
	promoted, err := m.TryReserve(ctx, "p1", "b1", interval(10, 3), model.KindHold, &expiry)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if _, err := m.Promote(ctx, "p1", promoted.ID); err != nil {
		t.Fatalf("promote failed: %v", err)
	}

	reclaimed, err := m.ReleaseExpiredHold(ctx, "p1", promoted.ID)
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if reclaimed {
		t.Error("confirmed record must not be reclaimed")
	}
	if _, err := m.TryReserve(ctx, "p1", "b2", interval(10, 3), model.KindConfirmed, nil); !errors.Is(err, reserrors.ErrConflict) {
		t.Errorf("expected confirmed record to still block dates, got %v", err)
	}

	// A hold whose window has not elapsed is likewise left alone.
	liveExpiry := time.Now().Add(10 * time.Minute)
	live, err := m.TryReserve(ctx, "p1", "b3", interval(20, 3), model.KindHold, &liveExpiry)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	reclaimed, err = m.ReleaseExpiredHold(ctx, "p1", live.ID)
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if reclaimed {
		t.Error("live hold must not be reclaimed")
	}
}

func TestPromote(t *testing.T) {
	m := newTestManager(nil)

	liveExpiry := time.Now().Add(10 * time.Minute)
	live, err := m.TryReserve(context.Background(), "p1", "b1", interval(10, 3), model.KindHold, &liveExpiry)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	deadExpiry := time.Now().Add(-time.Second)
	dead, err := m.TryReserve(context.Background(), "p1", "b2", interval(20, 3), model.KindHold, &deadExpiry)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	promoted, err := m.Promote(context.Background(), "p1", live.ID)
	if err != nil {
		t.Fatalf("promote failed: %v", err)
	}
	if promoted.Kind != model.KindConfirmed || promoted.ExpiresAt != nil {
		t.Errorf("expected confirmed record without expiry, got kind=%s expires=%v", promoted.Kind, promoted.ExpiresAt)
	}

	if _, err := m.Promote(context.Background(), "p1", dead.ID); !errors.Is(err, reserrors.ErrAlreadyExpired) {
		t.Errorf("promoting expired hold: got %v, want ErrAlreadyExpired", err)
	}
}

func TestLockTimeout_SamePropertyOnly(t *testing.T) {
	blockRelease := make(chan struct{})
	entered := make(chan struct{})
	first := true
	repo := &mockRecordRepository{
		insertFunc: func(ctx context.Context, record *model.ReservationRecord) error {
			// The first insert stalls while holding p1's lock.
			if first && record.PropertyID == "p1" {
				first = false
				close(entered)
				<-blockRelease
			}
			return nil
		},
	}

	cfg := testConfig()
	cfg.PropertyLockTimeout = 50 * time.Millisecond
	m := NewManager(cfg, store.NewIntervalStore(), repo)

	go func() {
		_, _ = m.TryReserve(context.Background(), "p1", "b1", interval(10, 3), model.KindConfirmed, nil)
	}()
	<-entered

	// A second caller on the same property times out...
	_, err := m.TryReserve(context.Background(), "p1", "b2", interval(40, 3), model.KindConfirmed, nil)
	if !errors.Is(err, reserrors.ErrLockTimeout) {
		t.Errorf("expected ErrLockTimeout on held property, got %v", err)
	}
	if !IsRetryable(err) {
		t.Error("lock timeout should be retryable")
	}

	// ...while another property is untouched by p1's lock.
	if _, err := m.TryReserve(context.Background(), "p2", "b3", interval(10, 3), model.KindConfirmed, nil); err != nil {
		t.Errorf("expected reserve on independent property to succeed, got %v", err)
	}

	close(blockRelease)
}
