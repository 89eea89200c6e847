package spend

import (
	"context"
	"sync"
	"time"
)

// MemoryLedger implements Ledger with in-process counters behind a single
// mutex, the one serialized mutation path. Suitable for single-instance
// deployments and tests.
type MemoryLedger struct {
	limits Limits
	now    func() time.Time

	mu    sync.Mutex
	days  map[string]map[string]int64 // dayKey → userID → cents
	hours map[string]map[string]int64 // hourKey → userID → cents
}

// NewMemoryLedger creates an in-process ledger.
func NewMemoryLedger(limits Limits) *MemoryLedger {
	return &MemoryLedger{
		limits: limits,
		now:    time.Now,
		days:   make(map[string]map[string]int64),
		hours:  make(map[string]map[string]int64),
	}
}

// SetClock overrides the time source. Test hook.
func (l *MemoryLedger) SetClock(now func() time.Time) { l.now = now }

func (l *MemoryLedger) SpentToday(_ context.Context, userID string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.days[dayKey(l.now())][userID], nil
}

func (l *MemoryLedger) SpentHour(_ context.Context, userID string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hours[hourKey(l.now())][userID], nil
}

func (l *MemoryLedger) Remaining(_ context.Context, userID string) (int64, error) {
	if l.limits.Exempt(userID) {
		return l.limits.DayCents, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	rem := l.limits.DayCents - l.days[dayKey(l.now())][userID]
	if rem < 0 {
		rem = 0
	}
	return rem, nil
}

func (l *MemoryLedger) Reserve(_ context.Context, userID string, amountCents int64) (bool, error) {
	if amountCents <= 0 {
		return false, nil
	}
	if l.limits.Exempt(userID) {
		return true, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	dk, hk := dayKey(now), hourKey(now)

	if l.days[dk][userID]+amountCents > l.limits.DayCents {
		return false, nil
	}
	if l.hours[hk][userID]+amountCents > l.limits.HourCents {
		return false, nil
	}

	bucket(l.days, dk)[userID] += amountCents
	bucket(l.hours, hk)[userID] += amountCents
	return true, nil
}

func (l *MemoryLedger) Release(_ context.Context, userID string, amountCents int64) error {
	if amountCents <= 0 || l.limits.Exempt(userID) {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	decrClamped(l.days[dayKey(now)], userID, amountCents)
	decrClamped(l.hours[hourKey(now)], userID, amountCents)
	return nil
}

// Evict drops day buckets older than two UTC days and hour buckets older
// than two hours. Two buckets are retained to tolerate clock-boundary
// races around midnight. Returns the number of buckets removed.
func (l *MemoryLedger) Evict() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	keepDays := map[string]bool{
		dayKey(now):                      true,
		dayKey(now.Add(-24 * time.Hour)): true,
	}
	keepHours := map[string]bool{
		hourKey(now):                 true,
		hourKey(now.Add(-time.Hour)): true,
	}

	removed := 0
	for k := range l.days {
		if !keepDays[k] {
			delete(l.days, k)
			removed++
		}
	}
	for k := range l.hours {
		if !keepHours[k] {
			delete(l.hours, k)
			removed++
		}
	}
	return removed
}

func bucket(m map[string]map[string]int64, key string) map[string]int64 {
	b, ok := m[key]
	if !ok {
		b = make(map[string]int64)
		m[key] = b
	}
	return b
}

func decrClamped(b map[string]int64, userID string, amount int64) {
	if b == nil {
		return
	}
	b[userID] -= amount
	if b[userID] <= 0 {
		delete(b, userID)
	}
}
