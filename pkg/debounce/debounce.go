package debounce

import (
	"sync"
	"time"
)

// Debouncer coalesces a burst of triggers into a single callback invocation
// on the trailing edge: the callback fires once no trigger has arrived for
// the configured interval.
type Debouncer struct {
	mu       sync.Mutex
	interval time.Duration
	fn       func()
	timer    *time.Timer
	pending  bool
}

func New(interval time.Duration, fn func()) *Debouncer {
	return &Debouncer{
		interval: interval,
		fn:       fn,
	}
}

// Trigger arms (or re-arms) the debounce window. Each call resets the
// deadline, so only the last trigger of a burst results in a callback.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.mu.Unlock()

	d.fn()
}

// Flush runs the callback immediately if a trigger is pending. Used on
// shutdown so the final state is never lost to the debounce window.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	wasPending := d.pending
	d.pending = false
	d.mu.Unlock()

	if wasPending {
		d.fn()
	}
}

// Stop cancels any pending callback without running it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = false
}
