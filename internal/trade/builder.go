package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/Prithwiraj-CK/polybot2/internal/intent"
	"github.com/Prithwiraj-CK/polybot2/internal/model"
)

// DefaultIdempotencyBucket is the window within which identical retried
// submissions collapse to one logical operation. Once the window rolls
// over, a deliberately repeated trade gets a fresh key.
const DefaultIdempotencyBucket = 5 * time.Minute

// BuildRequest assembles the immutable TradeRequest from a validated
// intent. It is a pure transform: the only error is the contract
// violation of being handed a non-trade intent, never a user-data issue.
func BuildRequest(in *intent.TradeIntent, m *model.Market, accountID string, now time.Time, bucket time.Duration) (*model.TradeRequest, error) {
	if in.Action != model.ActionBuy && in.Action != model.ActionSell {
		return nil, fmt.Errorf("trade: BuildRequest called with non-trade action %q", in.Action)
	}
	if bucket <= 0 {
		bucket = DefaultIdempotencyBucket
	}

	return &model.TradeRequest{
		UserID:         in.UserID,
		AccountID:      accountID,
		MarketID:       m.ID,
		MarketLabel:    m.Label,
		Outcome:        in.Outcome,
		Action:         in.Action,
		AmountCents:    in.AmountCents,
		IdempotencyKey: idempotencyKey(in, accountID, now, bucket),
		CreatedAt:      now,
	}, nil
}

// idempotencyKey is a pure function of (identity, market, outcome, amount,
// time bucket), so retries inside one bucket produce the same key.
func idempotencyKey(in *intent.TradeIntent, accountID string, now time.Time, bucket time.Duration) string {
	return strings.Join([]string{
		in.UserID,
		accountID,
		in.MarketID,
		in.Outcome,
		fmt.Sprintf("%d", in.AmountCents),
		fmt.Sprintf("%d", now.UnixNano()/int64(bucket)),
	}, ":")
}
