package fs

import (
	"sync"
	"time"
)

// debouncer coalesces bursts of triggers into a single callback after a quiet
// period. Editors and atomic renames produce several events per logical write;
// recomputing a snapshot for each would thrash subscribers.
type debouncer struct {
	interval time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{interval: interval}
}

// trigger schedules fn after the quiet period, restarting the window if a
// trigger is already pending. Only the last fn is invoked.
func (d *debouncer) trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, fn)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
