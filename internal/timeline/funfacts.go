package timeline

import (
	"context"
	"sync"
	"time"
)

// FactInterval is how long each fun fact stays on screen while a
// visualization generates.
const FactInterval = 25 * time.Second

// FactRotator cycles an index over a fact list on a fixed cadence. It runs
// at most one goroutine; Start while running restarts from index zero.
type FactRotator struct {
	mu       sync.Mutex
	interval time.Duration
	idx      int
	count    int
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewFactRotator uses the default cadence. Tests shorten it.
func NewFactRotator(interval time.Duration) *FactRotator {
	if interval <= 0 {
		interval = FactInterval
	}
	return &FactRotator{interval: interval}
}

// Start begins rotating over count facts, invoking onChange with each new
// index from a background goroutine. Index zero is current immediately;
// the first onChange fires after one interval.
func (r *FactRotator) Start(ctx context.Context, count int, onChange func(int)) {
	r.Stop()

	r.mu.Lock()
	r.idx = 0
	r.count = count
	if count <= 1 {
		r.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	done := make(chan struct{})
	r.done = done
	r.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.mu.Lock()
				r.idx = (r.idx + 1) % r.count
				idx := r.idx
				r.mu.Unlock()
				if onChange != nil {
					onChange(idx)
				}
			}
		}
	}()
}

// Stop halts rotation and waits for the goroutine to exit. The index keeps
// its last value until the next Start.
func (r *FactRotator) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}

// Index returns the currently displayed fact index.
func (r *FactRotator) Index() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.idx
}
