// Package gateway defines the boundary to the external trade execution
// service. The pipeline never retries a failed execution; every failure
// surfaces to the user, whose fresh attempt re-enters the idempotency-key
// logic upstream.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Error codes form the closed vocabulary of execution failures. Anything
// the upstream returns outside this set collapses to CodeInternalError.
const (
	CodeRateLimited         = "RATE_LIMITED"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeInvalidMarket       = "INVALID_MARKET"
	CodeMarketNotActive     = "MARKET_NOT_ACTIVE"
	CodeInvalidAmount       = "INVALID_AMOUNT"
	CodeAbuseBlocked        = "ABUSE_BLOCKED"
	CodeLimitExceeded       = "LIMIT_EXCEEDED"
	CodeInternalError       = "INTERNAL_ERROR"
)

// Error is a tagged execution failure.
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway: %s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("gateway: %s", e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// CodeOf extracts the gateway error code from err, or CodeInternalError
// for anything untagged.
func CodeOf(err error) string {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code
	}
	return CodeInternalError
}

// Order carries the exact bound parameters of one execution call.
type Order struct {
	MarketID       string `json:"market_id"`
	Outcome        string `json:"outcome"`
	Action         string `json:"action"`
	AmountCents    int64  `json:"amount_cents"`
	IdempotencyKey string `json:"idempotency_key"`
}

// Execution is the upstream's success response.
type Execution struct {
	TradeID    string    `json:"trade_id"`
	ExecutedAt time.Time `json:"executed_at"`
}

// Executor performs the actual trade.
type Executor interface {
	Execute(ctx context.Context, accountID string, order Order) (*Execution, error)
}
