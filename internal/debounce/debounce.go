// Package debounce collapses bursts of change events into settled signals.
package debounce

import (
	"sync"
	"time"
)

// DefaultQuietWindow is the inactivity gap required before a settle fires.
const DefaultQuietWindow = 200 * time.Millisecond

// Coalescer turns N raw events inside a quiet window into exactly one
// downstream notification. The debounce is trailing-edge: the signal fires
// only after the stream has been quiet for the full window.
//
// Each observed event records its sequence id as the latest and schedules a
// check one window later. A check fires the settle signal only if the id it
// captured at schedule time is still the latest; otherwise a newer check has
// superseded it and this one does nothing.
type Coalescer struct {
	window   time.Duration
	onSettle func(lastSeq uint64)

	mu      sync.Mutex
	latest  uint64
	timer   *time.Timer
	stopped bool
}

// New creates a Coalescer firing onSettle after window of quiet.
// A non-positive window falls back to DefaultQuietWindow.
func New(window time.Duration, onSettle func(lastSeq uint64)) *Coalescer {
	if window <= 0 {
		window = DefaultQuietWindow
	}
	return &Coalescer{
		window:   window,
		onSettle: onSettle,
	}
}

// Observe records an event and pushes the settle deadline out by one window.
// Safe for concurrent use; the latest-id state is serialized against the
// timer-fired check.
func (c *Coalescer) Observe(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}

	c.latest = seq
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.window, func() {
		c.check(seq)
	})
}

// check fires the settle signal if no newer event arrived since the check
// was scheduled.
func (c *Coalescer) check(captured uint64) {
	c.mu.Lock()
	fire := !c.stopped && c.latest == captured
	c.mu.Unlock()

	if fire {
		c.onSettle(captured)
	}
}

// Stop cancels any pending check. No settle fires after Stop returns,
// except a check already past its latest-id comparison.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
