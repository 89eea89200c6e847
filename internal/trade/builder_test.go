package trade

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Prithwiraj-CK/polybot2/internal/intent"
	"github.com/Prithwiraj-CK/polybot2/internal/model"
)

func buyIntent() *intent.TradeIntent {
	return &intent.TradeIntent{
		UserID:      "user1",
		MarketID:    "rain-tomorrow",
		Outcome:     "YES",
		Action:      model.ActionBuy,
		AmountCents: 500,
	}
}

func buildMarket() *model.Market {
	return &model.Market{ID: "rain-tomorrow", Label: "Rain tomorrow?", Status: model.MarketActive}
}

func TestBuildRequest_Fields(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	req, err := BuildRequest(buyIntent(), buildMarket(), "acct", now, 0)
	require.NoError(t, err)

	require.Equal(t, "user1", req.UserID)
	require.Equal(t, "acct", req.AccountID)
	require.Equal(t, "rain-tomorrow", req.MarketID)
	require.Equal(t, "Rain tomorrow?", req.MarketLabel)
	require.Equal(t, "YES", req.Outcome)
	require.Equal(t, model.ActionBuy, req.Action)
	require.Equal(t, int64(500), req.AmountCents)
	require.Equal(t, now, req.CreatedAt)
	require.NotEmpty(t, req.IdempotencyKey)
}

func TestBuildRequest_RetrySameBucketSameKey(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := BuildRequest(buyIntent(), buildMarket(), "acct", now, 5*time.Minute)
	require.NoError(t, err)

	// A retry two minutes later lands in the same five-minute bucket and
	// must collapse onto the same key.
	retry, err := BuildRequest(buyIntent(), buildMarket(), "acct", now.Add(2*time.Minute), 5*time.Minute)
	require.NoError(t, err)
	require.Equal(t, first.IdempotencyKey, retry.IdempotencyKey)
}

func TestBuildRequest_NewBucketNewKey(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := BuildRequest(buyIntent(), buildMarket(), "acct", now, 5*time.Minute)
	require.NoError(t, err)

	later, err := BuildRequest(buyIntent(), buildMarket(), "acct", now.Add(6*time.Minute), 5*time.Minute)
	require.NoError(t, err)
	require.NotEqual(t, first.IdempotencyKey, later.IdempotencyKey,
		"a deliberately repeated trade in a new window gets a fresh key")
}

func TestBuildRequest_KeyVariesWithInputs(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	base, err := BuildRequest(buyIntent(), buildMarket(), "acct", now, 5*time.Minute)
	require.NoError(t, err)

	other := buyIntent()
	other.AmountCents = 600
	changed, err := BuildRequest(other, buildMarket(), "acct", now, 5*time.Minute)
	require.NoError(t, err)
	require.NotEqual(t, base.IdempotencyKey, changed.IdempotencyKey)

	sell := buyIntent()
	sell.Action = model.ActionSell
	asSell, err := BuildRequest(sell, buildMarket(), "acct", now, 5*time.Minute)
	require.NoError(t, err)
	// The action is deliberately not part of the key.
	require.Equal(t, base.IdempotencyKey, asSell.IdempotencyKey)
}

func TestBuildRequest_RejectsNonTradeAction(t *testing.T) {
	in := buyIntent()
	in.Action = "balance"

	_, err := BuildRequest(in, buildMarket(), "acct", time.Now(), 0)
	require.Error(t, err)
}
