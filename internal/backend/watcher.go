package backend

import (
	"context"
	"log"
	"sync"
	"time"

	"pixotope-settings-go/internal/types"
)

// Poller is polled by a Watcher on every tick.
type Poller interface {
	Poll(ctx context.Context) (types.StateUpdate, error)
}

// Watcher polls the backend at a fixed interval so changes made outside the
// panel (another operator, the Pixotope editor) reach it as state-update
// events.
type Watcher struct {
	poller   Poller
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewWatcher creates a watcher. Call Start to begin polling.
func NewWatcher(poller Poller, interval time.Duration) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		poller:   poller,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the poll loop. Subsequent calls are no-ops.
func (w *Watcher) Start() {
	w.once.Do(func() {
		log.Printf("[Watcher] Polling every %v", w.interval)
		w.wg.Add(1)
		go w.loop()
	})
}

// Stop cancels the poll loop. The current poll finishes first; use Wait
// to block until it has.
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until the poll loop has exited.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	failing := false
	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			_, err := w.poller.Poll(w.ctx)
			switch {
			case err != nil && w.ctx.Err() != nil:
				return
			case err != nil:
				// Log the first failure of a run only.
				if !failing {
					log.Printf("[Watcher] WARNING: poll failed: %v", err)
				}
				failing = true
			case failing:
				log.Println("[Watcher] Poll recovered")
				failing = false
			}
		}
	}
}
