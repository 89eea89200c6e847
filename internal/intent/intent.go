// Package intent models the untrusted structured output of the
// natural-language extraction collaborator. The extractor is an opaque
// black box; nothing it returns is trusted until it has passed the shape
// validation here, and anything outside the closed intent-type enumeration
// is a parse failure, never a partially-trusted object.
package intent

import (
	"encoding/json"
	"errors"
)

// ErrUnparseable is returned for any payload that is malformed, names an
// intent type outside the whitelist, or is missing required fields. The
// pipeline fails closed on it: no partial execution ever happens.
var ErrUnparseable = errors.New("intent: unparseable extractor output")

// Intent types accepted at the parse boundary.
const (
	TypeBuyTrade     = "buy_trade"
	TypeSellTrade    = "sell_trade"
	TypeBalanceQuery = "balance_query"
	TypeMarketQuery  = "market_query"
	TypeHistoryQuery = "history_query"
)

// TradeIntent is the ephemeral, untrusted trade request extracted from a
// chat message. It is discarded once validation has produced a
// model.TradeRequest.
type TradeIntent struct {
	UserID      string
	MarketID    string
	Outcome     string
	Action      string // model.ActionBuy or model.ActionSell
	AmountCents int64
	RawText     string
}

// Parsed is the shape-validated union of all whitelisted intents.
// Exactly one branch is populated, selected by Type.
type Parsed struct {
	Type     string
	Trade    *TradeIntent // buy_trade, sell_trade
	MarketID string       // market_query
}

// payload mirrors the extractor's JSON contract.
type payload struct {
	Type        string `json:"type"`
	MarketID    string `json:"market_id"`
	Outcome     string `json:"outcome"`
	AmountCents int64  `json:"amount_cents"`
}

// Parse shape-validates one JSON object from the extractor. Structural
// rejection here is a parse failure, distinct from the semantic validation
// that runs later against account and market context.
func Parse(raw []byte, userID, text string) (*Parsed, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, ErrUnparseable
	}

	switch p.Type {
	case TypeBuyTrade, TypeSellTrade:
		// A well-typed but incomplete trade payload gets no partial trust.
		if p.MarketID == "" || p.Outcome == "" || p.AmountCents == 0 {
			return nil, ErrUnparseable
		}
		action := "buy"
		if p.Type == TypeSellTrade {
			action = "sell"
		}
		return &Parsed{
			Type: p.Type,
			Trade: &TradeIntent{
				UserID:      userID,
				MarketID:    p.MarketID,
				Outcome:     p.Outcome,
				Action:      action,
				AmountCents: p.AmountCents,
				RawText:     text,
			},
		}, nil

	case TypeBalanceQuery, TypeHistoryQuery:
		return &Parsed{Type: p.Type}, nil

	case TypeMarketQuery:
		if p.MarketID == "" {
			return nil, ErrUnparseable
		}
		return &Parsed{Type: p.Type, MarketID: p.MarketID}, nil

	default:
		return nil, ErrUnparseable
	}
}
