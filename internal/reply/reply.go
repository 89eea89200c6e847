// Package reply maps internal states and error codes to fixed, user-safe
// text. Nothing here ever exposes internal codes, stack traces, or
// upstream payloads; unknown codes fall back to a generic sentence.
package reply

import (
	"fmt"

	"github.com/Prithwiraj-CK/polybot2/internal/gateway"
	"github.com/Prithwiraj-CK/polybot2/internal/validate"
)

// Unparseable is the fail-closed answer for malformed or ambiguous
// extractor output.
const Unparseable = "Sorry, I couldn't confidently understand that request. Nothing was executed — please rephrase and try again."

// Cooldown is sent when a user's commands arrive faster than the
// acceptance interval.
const Cooldown = "You're sending commands too quickly. Give it a moment and try again."

// ConfirmationGone answers a confirm or cancel against an id that is
// unknown, already consumed, or expired.
const ConfirmationGone = "That confirmation is no longer available — it may have expired or already been handled. Start a new trade if you still want it."

// Cancelled acknowledges a successful cancel.
const Cancelled = "Okay, the trade was cancelled. Nothing was executed."

var validationText = map[validate.Code]string{
	validate.CodeAccountNotConnected: "No trading account is connected for you yet, so this trade can't be placed.",
	validate.CodeInvalidMarket:       "I couldn't find that market. Double-check the market and try again.",
	validate.CodeMarketNotActive:     "That market isn't accepting trades right now.",
	validate.CodeInvalidAmount:       "The amount has to be a positive number of dollars and cents.",
	validate.CodeLimitExceeded:       "That trade would take you past your spending limit. Try a smaller amount or come back tomorrow.",
}

var executionText = map[string]string{
	gateway.CodeRateLimited:         "The exchange is busy right now. Your trade wasn't placed — please try again in a moment.",
	gateway.CodeUpstreamUnavailable: "The exchange couldn't be reached. Your trade wasn't placed — please try again shortly.",
	gateway.CodeInvalidMarket:       "The exchange didn't recognize that market, so the trade wasn't placed.",
	gateway.CodeMarketNotActive:     "The exchange reports that market as closed, so the trade wasn't placed.",
	gateway.CodeInvalidAmount:       "The exchange rejected that amount, so the trade wasn't placed.",
	gateway.CodeAbuseBlocked:        "This trade was blocked by the exchange's protection rules.",
	gateway.CodeLimitExceeded:       "The exchange reports a spending limit for this account has been reached.",
	gateway.CodeInternalError:       "Something went wrong placing the trade. It wasn't executed — please try again.",
}

// Validation returns the fixed sentence for a validation failure.
func Validation(code validate.Code) string {
	if text, ok := validationText[code]; ok {
		return text
	}
	return Unparseable
}

// Execution returns the fixed sentence for a gateway failure code.
func Execution(code string) string {
	if text, ok := executionText[code]; ok {
		return text
	}
	return executionText[gateway.CodeInternalError]
}

// Executed formats the success message for a completed trade.
func Executed(marketLabel, outcome, action, amountDisplay string) string {
	return fmt.Sprintf("Done — your %s of %s on %q (%s) has been executed.",
		action, amountDisplay, marketLabel, outcome)
}

// ConfirmPrompt formats the confirmation request shown before execution.
func ConfirmPrompt(marketLabel, outcome, action, amountDisplay string) string {
	return fmt.Sprintf("Please confirm: %s %s on %q (%s). This expires in 5 minutes.",
		action, amountDisplay, marketLabel, outcome)
}
