package intent_test

import (
	"errors"
	"testing"

	"github.com/Prithwiraj-CK/polybot2/internal/intent"
)

func TestParse_BuyTrade(t *testing.T) {
	raw := []byte(`{"type":"buy_trade","market_id":"rain-tomorrow","outcome":"YES","amount_cents":500}`)

	p, err := intent.Parse(raw, "user1", "buy $5 of YES")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Type != intent.TypeBuyTrade {
		t.Errorf("expected type buy_trade, got %s", p.Type)
	}
	if p.Trade == nil {
		t.Fatal("expected trade intent")
	}
	if p.Trade.UserID != "user1" {
		t.Errorf("expected user1, got %s", p.Trade.UserID)
	}
	if p.Trade.Action != "buy" {
		t.Errorf("expected action buy, got %s", p.Trade.Action)
	}
	if p.Trade.AmountCents != 500 {
		t.Errorf("expected 500 cents, got %d", p.Trade.AmountCents)
	}
}

func TestParse_SellTrade(t *testing.T) {
	raw := []byte(`{"type":"sell_trade","market_id":"rain-tomorrow","outcome":"NO","amount_cents":300}`)

	p, err := intent.Parse(raw, "user1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Trade.Action != "sell" {
		t.Errorf("expected action sell, got %s", p.Trade.Action)
	}
}

func TestParse_RejectsOutsideEnum(t *testing.T) {
	cases := map[string][]byte{
		"unknown type":      []byte(`{"type":"transfer_funds","market_id":"m","amount_cents":100}`),
		"empty type":        []byte(`{"market_id":"m","outcome":"YES","amount_cents":100}`),
		"malformed json":    []byte(`{"type":"buy_trade"`),
		"not an object":     []byte(`"buy_trade"`),
		"missing market":    []byte(`{"type":"buy_trade","outcome":"YES","amount_cents":100}`),
		"missing outcome":   []byte(`{"type":"buy_trade","market_id":"m","amount_cents":100}`),
		"missing amount":    []byte(`{"type":"buy_trade","market_id":"m","outcome":"YES"}`),
		"query sans market": []byte(`{"type":"market_query"}`),
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := intent.Parse(raw, "user1", "")
			if !errors.Is(err, intent.ErrUnparseable) {
				t.Errorf("expected ErrUnparseable, got %v", err)
			}
		})
	}
}

func TestParse_Queries(t *testing.T) {
	p, err := intent.Parse([]byte(`{"type":"balance_query"}`), "user1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Type != intent.TypeBalanceQuery {
		t.Errorf("expected balance_query, got %s", p.Type)
	}

	p, err = intent.Parse([]byte(`{"type":"market_query","market_id":"rain-tomorrow"}`), "user1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.MarketID != "rain-tomorrow" {
		t.Errorf("expected market id, got %s", p.MarketID)
	}
}
