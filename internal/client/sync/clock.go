package sync

import (
	stdsync "sync"
	"time"
)

// Clock issues the logical timestamps stamped on every accepted mutation.
// Values are unix milliseconds, bumped past the last issued or observed
// value so updated_at strictly increases even when the wall clock stalls or
// steps backwards.
type Clock struct {
	mu   stdsync.Mutex
	last int64
	now  func() time.Time
}

// NewClock returns a Clock backed by the wall clock.
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// Next returns a timestamp strictly greater than every previously issued or
// observed one.
func (c *Clock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UnixMilli()
	if t <= c.last {
		t = c.last + 1
	}
	c.last = t
	return t
}

// Observe raises the floor to a timestamp seen on a remote record, so the
// next local mutation sorts after everything already merged.
func (c *Clock) Observe(ts int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ts > c.last {
		c.last = ts
	}
}
