package listing

import (
	"sync"
	"time"

	"github.com/mesh-intelligence/clientdesk/internal/clock"
)

// Debouncer runs the most recently triggered function once no trigger has
// arrived for the quiet period.
type Debouncer struct {
	mu    sync.Mutex
	clock clock.Clock
	delay time.Duration
	timer clock.Timer
	seq   uint64
}

// NewDebouncer creates a Debouncer. A nil clock uses wall time; a negative
// delay is treated as zero.
func NewDebouncer(c clock.Clock, delay time.Duration) *Debouncer {
	if c == nil {
		c = clock.Real()
	}
	if delay < 0 {
		delay = 0
	}
	return &Debouncer{clock: c, delay: delay}
}

// Trigger restarts the quiet period. f supersedes any pending function.
func (d *Debouncer) Trigger(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if seq != d.seq {
			// Superseded after the timer had already started to fire.
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		f()
	})
}

// Cancel drops the pending function, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
}

// Pending reports whether a function is waiting for the quiet period to end.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
