// Package validate checks a structurally-valid-but-untrusted trade intent
// against injected account, market, and spend context. It is a pure
// function of its inputs: no I/O, no clock, no state.
package validate

import (
	"github.com/Prithwiraj-CK/polybot2/internal/intent"
	"github.com/Prithwiraj-CK/polybot2/internal/model"
)

// Code is a validation verdict. CodeOK means the intent may proceed to
// request assembly; every other value is terminal for this attempt.
type Code string

const (
	CodeOK Code = "OK"

	// CodeAccountNotConnected: no account could be bound to the user.
	// Unreachable in deployments with a fallback shared account, but it
	// stays a defined state.
	CodeAccountNotConnected Code = "ACCOUNT_NOT_CONNECTED"

	CodeInvalidMarket   Code = "INVALID_MARKET"
	CodeMarketNotActive Code = "MARKET_NOT_ACTIVE"
	CodeInvalidAmount   Code = "INVALID_AMOUNT"
	CodeLimitExceeded   Code = "LIMIT_EXCEEDED"
)

// Context carries the read-only per-call facts the validator needs.
// It is assembled by the pipeline from the ledger and market lookup so
// the validator itself stays free of I/O.
type Context struct {
	// AccountID is the resolved account, empty when unresolved.
	AccountID string

	// Market is the lookup result for the intent's market id; nil when
	// the id is unknown.
	Market *model.Market

	// RemainingDayCents is the capacity left under the daily ceiling.
	RemainingDayCents int64

	// SpentHourCents and HourLimitCents describe the rolling-hour ceiling.
	SpentHourCents int64
	HourLimitCents int64

	// Exempt users skip both spend checks.
	Exempt bool
}

// Check runs the validation sequence in fixed order and short-circuits on
// the first failure. Buys consume spend capacity; sells skip both limit
// checks entirely.
func Check(in *intent.TradeIntent, ctx Context) Code {
	if ctx.AccountID == "" {
		return CodeAccountNotConnected
	}

	if ctx.Market == nil {
		return CodeInvalidMarket
	}
	if !ctx.Market.Active() {
		return CodeMarketNotActive
	}

	if in.AmountCents <= 0 {
		return CodeInvalidAmount
	}

	if in.Action == model.ActionBuy && !ctx.Exempt {
		if in.AmountCents > ctx.RemainingDayCents {
			return CodeLimitExceeded
		}
		if ctx.SpentHourCents+in.AmountCents > ctx.HourLimitCents {
			return CodeLimitExceeded
		}
	}

	return CodeOK
}
