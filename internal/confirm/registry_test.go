package confirm_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Prithwiraj-CK/polybot2/internal/confirm"
	"github.com/Prithwiraj-CK/polybot2/internal/model"
)

func testRequest() model.TradeRequest {
	return model.TradeRequest{
		UserID:      "user1",
		AccountID:   "acct",
		MarketID:    "rain-tomorrow",
		Outcome:     "YES",
		Action:      model.ActionBuy,
		AmountCents: 500,
	}
}

func TestRegisterAndClaim(t *testing.T) {
	r := confirm.NewRegistry(5 * time.Minute)

	p := r.Register(testRequest())
	require.NotEmpty(t, p.ID)
	require.Equal(t, 1, r.Len())

	claimed, outcome := r.Claim(p.ID)
	require.Equal(t, confirm.Claimed, outcome)
	require.Equal(t, p.ID, claimed.ID)
	require.Equal(t, int64(500), claimed.Request.AmountCents)
	require.Equal(t, 0, r.Len())

	// A second claim on the same id observes "already consumed".
	_, outcome = r.Claim(p.ID)
	require.Equal(t, confirm.NotFound, outcome)
}

func TestClaim_UnknownID(t *testing.T) {
	r := confirm.NewRegistry(5 * time.Minute)

	_, outcome := r.Claim("no-such-id")
	require.Equal(t, confirm.NotFound, outcome)
}

func TestClaim_ExactlyOnceUnderContention(t *testing.T) {
	r := confirm.NewRegistry(5 * time.Minute)
	p := r.Register(testRequest())

	const n = 50
	var wg sync.WaitGroup
	wins := make(chan confirm.Outcome, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, outcome := r.Claim(p.ID)
			wins <- outcome
		}()
	}
	wg.Wait()
	close(wins)

	claimed, notFound := 0, 0
	for outcome := range wins {
		switch outcome {
		case confirm.Claimed:
			claimed++
		case confirm.NotFound:
			notFound++
		}
	}
	require.Equal(t, 1, claimed, "exactly one concurrent claim may win")
	require.Equal(t, n-1, notFound)
}

func TestClaim_ExpiredAtUse(t *testing.T) {
	r := confirm.NewRegistry(5 * time.Minute)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r.SetClock(func() time.Time { return now })

	p := r.Register(testRequest())

	// Left untouched for the full TTL, then confirmed: expiry is
	// re-checked at the moment of use, regardless of sweep timing.
	now = now.Add(5*time.Minute + time.Second)

	claimed, outcome := r.Claim(p.ID)
	require.Equal(t, confirm.Expired, outcome)
	require.NotNil(t, claimed, "caller needs the entry to release its reservation")
	require.Equal(t, 0, r.Len())
}

func TestSweepExpired(t *testing.T) {
	r := confirm.NewRegistry(5 * time.Minute)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r.SetClock(func() time.Time { return now })

	old := r.Register(testRequest())
	now = now.Add(3 * time.Minute)
	fresh := r.Register(testRequest())

	now = now.Add(2*time.Minute + time.Second) // old past TTL, fresh not

	expired := r.SweepExpired()
	require.Len(t, expired, 1)
	require.Equal(t, old.ID, expired[0].ID)
	require.Equal(t, 1, r.Len())

	_, outcome := r.Claim(fresh.ID)
	require.Equal(t, confirm.Claimed, outcome)
}

func TestClaimIDsAreOpaqueAndFresh(t *testing.T) {
	r := confirm.NewRegistry(5 * time.Minute)

	a := r.Register(testRequest())
	b := r.Register(testRequest())
	require.NotEqual(t, a.ID, b.ID)
}
