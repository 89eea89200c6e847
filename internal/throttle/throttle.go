// Package throttle applies a coarse fixed-interval per-user cooldown to
// command acceptance. It is not a queue: it caps how often a user's
// commands are accepted, but does nothing to serialize pipelines already
// in flight.
package throttle

import (
	"sync"
	"time"
)

// Cooldown tracks the last accepted command per user.
type Cooldown struct {
	interval time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

// NewCooldown creates a cooldown with the given acceptance interval.
func NewCooldown(interval time.Duration) *Cooldown {
	return &Cooldown{
		interval: interval,
		now:      time.Now,
		last:     make(map[string]time.Time),
	}
}

// SetClock overrides the time source. Test hook.
func (c *Cooldown) SetClock(now func() time.Time) { c.now = now }

// Allow reports whether a command from userID may be accepted now, and
// records the acceptance when it may.
func (c *Cooldown) Allow(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if last, ok := c.last[userID]; ok && now.Sub(last) < c.interval {
		return false
	}
	c.last[userID] = now
	return true
}
