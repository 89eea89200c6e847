package spend_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Prithwiraj-CK/polybot2/internal/spend"
)

func newLedger(day, hour int64) *spend.MemoryLedger {
	return spend.NewMemoryLedger(spend.Limits{DayCents: day, HourCents: hour})
}

func TestReserve_Basic(t *testing.T) {
	ctx := context.Background()
	l := newLedger(500, 500)

	ok, err := l.Reserve(ctx, "user1", 500)
	require.NoError(t, err)
	require.True(t, ok)

	spent, err := l.SpentToday(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, int64(500), spent)

	// The ceiling is consumed; one more cent must be refused with no mutation.
	ok, err = l.Reserve(ctx, "user1", 1)
	require.NoError(t, err)
	require.False(t, ok)

	spent, err = l.SpentToday(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, int64(500), spent)
}

func TestReserve_RejectsNonPositive(t *testing.T) {
	ctx := context.Background()
	l := newLedger(500, 500)

	for _, amount := range []int64{0, -1, -500} {
		ok, err := l.Reserve(ctx, "user1", amount)
		require.NoError(t, err)
		require.False(t, ok, "amount %d", amount)
	}
}

func TestReserve_HourlyCeilingIndependent(t *testing.T) {
	ctx := context.Background()
	// Hourly ceiling tighter than daily.
	l := newLedger(1000, 300)

	ok, err := l.Reserve(ctx, "user1", 300)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = l.Reserve(ctx, "user1", 100)
	require.NoError(t, err)
	require.False(t, ok, "hourly ceiling should refuse even with daily room")
}

func TestReserve_Linearizable(t *testing.T) {
	// N concurrent reservations whose amounts sum past the ceiling:
	// only a limit-respecting subset may win.
	ctx := context.Background()
	l := newLedger(500, 500)

	const n = 100
	const amount = 100 // 100 × 100 = 10000 ≫ 500

	var wg sync.WaitGroup
	wins := make(chan struct{}, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := l.Reserve(ctx, "user1", amount)
			require.NoError(t, err)
			if ok {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for range wins {
		won++
	}
	require.Equal(t, 5, won, "exactly 500/100 reservations fit")

	spent, err := l.SpentToday(ctx, "user1")
	require.NoError(t, err)
	require.LessOrEqual(t, spent, int64(500), "recorded spend must never exceed the ceiling")
}

func TestRelease_RestoresCapacity(t *testing.T) {
	ctx := context.Background()
	l := newLedger(500, 500)

	ok, _ := l.Reserve(ctx, "user1", 500)
	require.True(t, ok)

	require.NoError(t, l.Release(ctx, "user1", 500))

	rem, err := l.Remaining(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, int64(500), rem)

	ok, _ = l.Reserve(ctx, "user1", 500)
	require.True(t, ok, "released capacity is reusable")
}

func TestRelease_ClampsAtZero(t *testing.T) {
	ctx := context.Background()
	l := newLedger(500, 500)

	ok, _ := l.Reserve(ctx, "user1", 100)
	require.True(t, ok)

	// Over-release must clamp, never go negative.
	require.NoError(t, l.Release(ctx, "user1", 400))

	spent, err := l.SpentToday(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, int64(0), spent)
}

func TestExemptUserBypassesCeilings(t *testing.T) {
	ctx := context.Background()
	l := spend.NewMemoryLedger(spend.Limits{DayCents: 500, HourCents: 500, ExemptUserID: "owner"})

	ok, err := l.Reserve(ctx, "owner", 1_000_000)
	require.NoError(t, err)
	require.True(t, ok)

	spent, err := l.SpentToday(ctx, "owner")
	require.NoError(t, err)
	require.Equal(t, int64(0), spent, "exempt spend is not recorded")
}

func TestDayBoundary_NewBucket(t *testing.T) {
	ctx := context.Background()
	l := newLedger(500, 500)

	now := time.Date(2026, 3, 1, 23, 50, 0, 0, time.UTC)
	l.SetClock(func() time.Time { return now })

	ok, _ := l.Reserve(ctx, "user1", 500)
	require.True(t, ok)

	// Past midnight UTC the daily counter starts fresh.
	now = now.Add(20 * time.Minute)

	rem, err := l.Remaining(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, int64(500), rem)

	ok, _ = l.Reserve(ctx, "user1", 500)
	require.True(t, ok)
}

func TestEvict_KeepsTwoDayBuckets(t *testing.T) {
	ctx := context.Background()
	l := newLedger(500, 500)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.SetClock(func() time.Time { return now })

	ok, _ := l.Reserve(ctx, "user1", 100)
	require.True(t, ok)

	// Next day: yesterday's bucket survives eviction.
	now = now.Add(24 * time.Hour)
	require.Equal(t, 1, l.Evict(), "only the stale hour bucket goes")

	// Two days on: the old day bucket is gone too.
	now = now.Add(24 * time.Hour)
	require.Equal(t, 1, l.Evict())
}
