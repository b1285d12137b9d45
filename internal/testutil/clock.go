package testutil

import (
	"sync"
	"time"
)

// ManualTime is a time source that only moves when told to.
type ManualTime struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualTime creates a manual time source at a fixed instant.
func NewManualTime() *ManualTime {
	return &ManualTime{now: time.Unix(1_700_000_000, 0)}
}

// Now returns the current manual time.
func (m *ManualTime) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the time source forward by d.
func (m *ManualTime) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}
