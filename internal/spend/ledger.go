// Package spend enforces per-user spend ceilings on same-day buy volume.
//
// The single correctness requirement is that Reserve is atomic: it checks
// the ceiling and increments the counter in one indivisible step, so two
// concurrent reservations for the same user can never both observe a stale
// "room available" result. Callers must be unable to distinguish which
// implementation (in-process or Redis) is active.
package spend

import (
	"context"
	"time"
)

// Limits configures the spend ceilings shared by all Ledger implementations.
type Limits struct {
	// DayCents is the ceiling on cumulative buy spend per UTC calendar day.
	DayCents int64

	// HourCents is the ceiling on buy spend within the current clock hour.
	// It is independently configurable and may exceed DayCents, which makes
	// the hourly check unreachable under that policy; it is kept anyway
	// because the two ceilings are meant to diverge.
	HourCents int64

	// ExemptUserID bypasses both ceilings entirely. Empty disables exemption.
	ExemptUserID string
}

// Exempt reports whether the user bypasses the ceilings.
func (l Limits) Exempt(userID string) bool {
	return l.ExemptUserID != "" && userID == l.ExemptUserID
}

// Ledger is the reserve/release spend contract.
//
// Capacity is consumed by Reserve when a confirmation is created. A
// reservation that is never released stands as committed spend; Release
// returns capacity when the reserved trade is cancelled, expires, or its
// execution fails.
type Ledger interface {
	// SpentToday returns the user's reserved-plus-committed spend for the
	// current UTC calendar day, in cents.
	SpentToday(ctx context.Context, userID string) (int64, error)

	// SpentHour returns the user's spend within the current clock hour.
	SpentHour(ctx context.Context, userID string) (int64, error)

	// Remaining returns the cents still available under the daily ceiling.
	Remaining(ctx context.Context, userID string) (int64, error)

	// Reserve atomically checks both ceilings and, only when the amount
	// fits under both, increments the counters in the same operation.
	// On a false return no mutation has happened.
	Reserve(ctx context.Context, userID string, amountCents int64) (bool, error)

	// Release returns previously reserved capacity. Releasing more than
	// was reserved clamps the counters at zero.
	Release(ctx context.Context, userID string, amountCents int64) error
}

// dayKey scopes a spend bucket to one UTC calendar date.
func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// hourKey scopes a spend bucket to one UTC clock hour.
func hourKey(t time.Time) string {
	return t.UTC().Format("2006-01-02T15")
}
