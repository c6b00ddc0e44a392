package memory

import (
	"log/slog"
	"sync"
	"time"
)

// Sweeper periodically reclaims expired entries. Reads never depend on it:
// Get applies the expiry rule on its own, the sweeper only frees memory
// held by keys nobody reads again.
type Sweeper struct {
	store    *Store
	interval time.Duration
	logger   *slog.Logger

	// OnSweep, if set, is called after each pass with the number removed.
	OnSweep func(removed int)

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewSweeper creates a sweeper for store. It does nothing until Start.
func NewSweeper(store *Store, interval time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		store:    store,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the sweep loop. A non-positive interval disables it.
func (w *Sweeper) Start() {
	if w.interval <= 0 {
		close(w.doneCh)
		return
	}
	go w.run()
}

// Stop halts the loop and waits for the current pass to finish.
func (w *Sweeper) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.doneCh
}

func (w *Sweeper) run() {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Debug("expiry sweeper started", "interval", w.interval)
	for {
		select {
		case <-ticker.C:
			w.sweep()
		case <-w.stopCh:
			w.logger.Debug("expiry sweeper stopped")
			return
		}
	}
}

func (w *Sweeper) sweep() {
	removed := w.store.DeleteExpired()
	if removed > 0 {
		w.logger.Debug("expired keys reclaimed", "count", removed)
	}
	if w.OnSweep != nil {
		w.OnSweep(removed)
	}
}
