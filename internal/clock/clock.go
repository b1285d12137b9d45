// Package clock provides the run clock shared by the scanner and profiler.
package clock

import (
	"sync"
	"time"
)

// Clock measures elapsed wall time for a single profiling run.
//
// Start and Stop bracket the run. Before Start every reading is zero; after
// Stop the elapsed time is frozen.
type Clock struct {
	mu    sync.Mutex
	now   func() time.Time
	start time.Time
	stop  time.Time
}

// New creates a clock backed by time.Now.
func New() *Clock {
	return NewWithSource(time.Now)
}

// NewWithSource creates a clock reading time from now.
func NewWithSource(now func() time.Time) *Clock {
	return &Clock{now: now}
}

// Start marks the beginning of the run and clears any previous stop mark.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = c.now()
	c.stop = time.Time{}
}

// Stop freezes the elapsed time.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.start.IsZero() || !c.stop.IsZero() {
		return
	}
	c.stop = c.now()
}

// Started reports whether Start was called.
func (c *Clock) Started() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.start.IsZero()
}

// Elapsed returns the time since Start, or the Start-Stop interval once stopped.
func (c *Clock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.start.IsZero():
		return 0
	case !c.stop.IsZero():
		return c.stop.Sub(c.start)
	default:
		return c.now().Sub(c.start)
	}
}

// Seconds returns Elapsed as fractional seconds.
func (c *Clock) Seconds() float64 {
	return c.Elapsed().Seconds()
}
