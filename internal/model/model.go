// Package model defines the core domain types shared across the trade
// authorization pipeline. All user-facing amounts are integer cents,
// never float64, and display conversion goes through shopspring/decimal.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Market statuses reported by the market-data collaborator.
const (
	MarketActive = "active"
	MarketClosed = "closed"
	MarketPaused = "paused"
)

// Trade actions.
const (
	ActionBuy  = "buy"
	ActionSell = "sell"
)

// Market is a snapshot of one tradable market as returned by the
// market-data lookup.
type Market struct {
	ID       string          `json:"id"`
	Label    string          `json:"label"`
	Outcomes []string        `json:"outcomes"`
	Status   string          `json:"status"` // "active", "closed", "paused"
	Price    decimal.Decimal `json:"price"`  // last price of the primary outcome
}

// Active reports whether the market accepts new trades.
func (m *Market) Active() bool {
	return m.Status == MarketActive
}

// TradeRequest is a validated, immutable trade order. It is constructed
// exactly once per accepted intent and never rebuilt or mutated afterwards.
type TradeRequest struct {
	UserID         string    `json:"user_id"`
	AccountID      string    `json:"account_id"`
	MarketID       string    `json:"market_id"`
	MarketLabel    string    `json:"market_label"`
	Outcome        string    `json:"outcome"`
	Action         string    `json:"action"` // "buy" or "sell"
	AmountCents    int64     `json:"amount_cents"`
	IdempotencyKey string    `json:"idempotency_key"`
	CreatedAt      time.Time `json:"created_at"`
}

// AmountDisplay renders the cent amount as a dollar string, e.g. "5.00".
func (r *TradeRequest) AmountDisplay() string {
	return decimal.NewFromInt(r.AmountCents).Shift(-2).StringFixed(2)
}

// TradeResult is the tagged outcome of one execution attempt: either an
// executed trade or a failure code, never both.
type TradeResult struct {
	OK          bool      `json:"ok"`
	TradeID     string    `json:"trade_id,omitempty"`
	ExecutedAt  time.Time `json:"executed_at,omitempty"`
	AmountCents int64     `json:"amount_cents,omitempty"`
	Code        string    `json:"code,omitempty"` // gateway error code on failure
	FailedAt    time.Time `json:"failed_at,omitempty"`
}

// JournalEntry is an immutable record of an executed trade. Once written,
// entries are never modified or deleted.
type JournalEntry struct {
	TradeID        string    `json:"trade_id" db:"trade_id"`
	UserID         string    `json:"user_id" db:"user_id"`
	AccountID      string    `json:"account_id" db:"account_id"`
	MarketID       string    `json:"market_id" db:"market_id"`
	MarketLabel    string    `json:"market_label" db:"market_label"`
	Outcome        string    `json:"outcome" db:"outcome"`
	Action         string    `json:"action" db:"action"`
	AmountCents    int64     `json:"amount_cents" db:"amount_cents"`
	IdempotencyKey string    `json:"idempotency_key" db:"idempotency_key"`
	ExecutedAt     time.Time `json:"executed_at" db:"executed_at"`
}
