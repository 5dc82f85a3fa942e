// Package expirer runs the background sweep that reclaims dates from
// holds whose payment never arrived. Expiry is driven purely by the
// persisted expiry timestamps, so a sweep that runs late or twice still
// converges on the same state.
package expirer

import (
	"context"
	"sync"
	"time"

	"stayd/pkg/config"
)

type Sweeper interface {
	SweepExpiredHolds(ctx context.Context) (int, error)
}

type Compactor interface {
	CompactHistory() int
}

type Expirer struct {
	cfg       *config.Config
	sweeper   Sweeper
	compactor Compactor

	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

func New(cfg *config.Config, sweeper Sweeper, compactor Compactor) *Expirer {
	return &Expirer{
		cfg:       cfg,
		sweeper:   sweeper,
		compactor: compactor,
	}
}

// Start launches the sweep loop. Calling Start on a running expirer is
// a no-op.
func (e *Expirer) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return
	}
	e.running = true
	e.stopCh = make(chan struct{})
	e.doneCh = make(chan struct{})

	go e.loop(e.stopCh, e.doneCh)
	e.cfg.Log.Info("Hold expirer started", "sweep_interval", e.cfg.SweepInterval)
}

// Stop signals the loop and waits for the in-flight sweep to finish.
func (e *Expirer) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	stopCh, doneCh := e.stopCh, e.doneCh
	e.mu.Unlock()

	close(stopCh)
	<-doneCh
	e.cfg.Log.Info("Hold expirer stopped")
}

func (e *Expirer) loop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(e.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			e.sweep()
		}
	}
}

// sweep bounds each pass by the sweep interval so a slow batch never
// overlaps the next tick's work.
func (e *Expirer) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.SweepInterval)
	defer cancel()

	reclaimed, err := e.sweeper.SweepExpiredHolds(ctx)
	if err != nil {
		e.cfg.Log.Error("Hold sweep failed", "error", err)
		return
	}
	if reclaimed > 0 {
		e.cfg.Log.Info("Hold sweep reclaimed dates", "count", reclaimed)
	}

	if removed := e.compactor.CompactHistory(); removed > 0 {
		e.cfg.Log.Debug("Compacted past reservation records", "count", removed)
	}
}
