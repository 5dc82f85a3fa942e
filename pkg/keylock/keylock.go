// Package keylock provides a lock table keyed by string. Each key gets
// its own mutex, so callers contending on different keys never block each
// other. Acquisition is bounded by the caller's context.
package keylock

import (
	"context"
	"sync"
)

type keyLock struct {
	ch   chan struct{}
	refs int
}

type Table struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

func New() *Table {
	return &Table{
		locks: make(map[string]*keyLock),
	}
}

// Acquire blocks until the lock for key is held or ctx is done. On
// success it returns a release function that must be called exactly once.
func (t *Table) Acquire(ctx context.Context, key string) (func(), error) {
	t.mu.Lock()
	kl, ok := t.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		t.locks[key] = kl
	}
	kl.refs++
	t.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
		var once sync.Once
		release := func() {
			once.Do(func() {
				<-kl.ch
				t.unref(key, kl)
			})
		}
		return release, nil
	case <-ctx.Done():
		t.unref(key, kl)
		return nil, ctx.Err()
	}
}

// unref drops a reference and evicts the entry once nobody holds or
// waits on it, keeping the table bounded by the set of hot keys.
func (t *Table) unref(key string, kl *keyLock) {
	t.mu.Lock()
	kl.refs--
	if kl.refs == 0 {
		delete(t.locks, key)
	}
	t.mu.Unlock()
}

// Len reports how many keys currently have holders or waiters.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.locks)
}
