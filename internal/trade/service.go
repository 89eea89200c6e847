// Package trade wires the authorization pipeline: classification,
// validation, request assembly, spend reservation, and the confirmation
// state machine, ending in a single execution call per confirmed trade.
package trade

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Prithwiraj-CK/polybot2/internal/confirm"
	"github.com/Prithwiraj-CK/polybot2/internal/gateway"
	"github.com/Prithwiraj-CK/polybot2/internal/intent"
	"github.com/Prithwiraj-CK/polybot2/internal/journal"
	"github.com/Prithwiraj-CK/polybot2/internal/market"
	"github.com/Prithwiraj-CK/polybot2/internal/metrics"
	"github.com/Prithwiraj-CK/polybot2/internal/model"
	"github.com/Prithwiraj-CK/polybot2/internal/reply"
	"github.com/Prithwiraj-CK/polybot2/internal/spend"
	"github.com/Prithwiraj-CK/polybot2/internal/throttle"
	"github.com/Prithwiraj-CK/polybot2/internal/validate"
)

// Extractor is the opaque natural-language intent extraction collaborator.
// Its output is untrusted bytes until the intent package's shape
// validation has accepted them.
type Extractor interface {
	Extract(ctx context.Context, userID, text string) ([]byte, error)
}

// Accounts resolves a chat user to a trading account.
type Accounts interface {
	Resolve(ctx context.Context, userID string) (string, error)
}

// SharedAccount resolves every user to one fallback shared account.
type SharedAccount string

func (a SharedAccount) Resolve(context.Context, string) (string, error) {
	return string(a), nil
}

// ConfirmationRequest asks the transport to present a confirm/cancel
// choice before anything executes.
type ConfirmationRequest struct {
	ConfirmID     string `json:"confirm_id"`
	MarketLabel   string `json:"market_label"`
	Outcome       string `json:"outcome"`
	Action        string `json:"action"`
	AmountDisplay string `json:"amount_display"`
}

// Reply is the pipeline's answer to one routed message: either plain text
// or a confirmation request.
type Reply struct {
	Text         string               `json:"text,omitempty"`
	Confirmation *ConfirmationRequest `json:"confirmation,omitempty"`
}

// Service is the trade authorization pipeline.
type Service struct {
	extractor Extractor
	accounts  Accounts
	lookup    market.Lookup
	ledger    spend.Ledger
	registry  *confirm.Registry
	executor  gateway.Executor
	journal   journal.Store
	cooldown  *throttle.Cooldown
	hub       *Hub // optional WebSocket hub for execution broadcasts

	limits spend.Limits
	bucket time.Duration
	now    func() time.Time
}

// Config assembles a Service. Hub may be nil.
type Config struct {
	Extractor         Extractor
	Accounts          Accounts
	Lookup            market.Lookup
	Ledger            spend.Ledger
	Registry          *confirm.Registry
	Executor          gateway.Executor
	Journal           journal.Store
	Cooldown          *throttle.Cooldown
	Hub               *Hub
	Limits            spend.Limits
	IdempotencyBucket time.Duration
}

// NewService creates the pipeline service.
func NewService(cfg Config) *Service {
	bucket := cfg.IdempotencyBucket
	if bucket <= 0 {
		bucket = DefaultIdempotencyBucket
	}
	return &Service{
		extractor: cfg.Extractor,
		accounts:  cfg.Accounts,
		lookup:    cfg.Lookup,
		ledger:    cfg.Ledger,
		registry:  cfg.Registry,
		executor:  cfg.Executor,
		journal:   cfg.Journal,
		cooldown:  cfg.Cooldown,
		hub:       cfg.Hub,
		limits:    cfg.Limits,
		bucket:    bucket,
		now:       time.Now,
	}
}

// SetClock overrides the time source. Test hook.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// RouteMessage runs one chat command through the pipeline and returns
// either an informational reply or a confirmation request. Errors are
// reserved for infrastructure failures; every user-level problem comes
// back as user-safe reply text.
func (s *Service) RouteMessage(ctx context.Context, userID, text string) (*Reply, error) {
	if s.cooldown != nil && !s.cooldown.Allow(userID) {
		return &Reply{Text: reply.Cooldown}, nil
	}

	kind := intent.Classify(text)
	metrics.MessagesTotal.WithLabelValues(kind.String()).Inc()

	raw, err := s.extractor.Extract(ctx, userID, text)
	if err != nil {
		slog.Warn("extractor failed", "user", userID, "err", err)
		return &Reply{Text: reply.Unparseable}, nil
	}

	parsed, err := intent.Parse(raw, userID, text)
	if err != nil {
		return &Reply{Text: reply.Unparseable}, nil
	}

	switch parsed.Type {
	case intent.TypeBuyTrade, intent.TypeSellTrade:
		// The classifier resolved ambiguity toward READ; an extractor
		// claiming a trade anyway fails closed.
		if kind != intent.KindWrite {
			return &Reply{Text: reply.Unparseable}, nil
		}
		return s.startTrade(ctx, parsed.Trade)

	case intent.TypeBalanceQuery:
		return s.balanceReply(ctx, userID)

	case intent.TypeHistoryQuery:
		return s.historyReply(ctx, userID)

	case intent.TypeMarketQuery:
		return s.marketReply(ctx, parsed.MarketID)

	default:
		return &Reply{Text: reply.Unparseable}, nil
	}
}

// startTrade validates a trade intent, reserves spend capacity, and
// registers the pending confirmation.
func (s *Service) startTrade(ctx context.Context, in *intent.TradeIntent) (*Reply, error) {
	accountID, err := s.accounts.Resolve(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolving account for %s: %w", in.UserID, err)
	}

	m, err := s.lookup.Lookup(ctx, in.MarketID)
	if err != nil {
		return nil, fmt.Errorf("looking up market %s: %w", in.MarketID, err)
	}

	exempt := s.limits.Exempt(in.UserID)

	remaining, err := s.ledger.Remaining(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("reading remaining allowance: %w", err)
	}
	spentHour, err := s.ledger.SpentHour(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("reading hourly spend: %w", err)
	}

	code := validate.Check(in, validate.Context{
		AccountID:         accountID,
		Market:            m,
		RemainingDayCents: remaining,
		SpentHourCents:    spentHour,
		HourLimitCents:    s.limits.HourCents,
		Exempt:            exempt,
	})
	if code != validate.CodeOK {
		metrics.ValidationFailures.WithLabelValues(string(code)).Inc()
		slog.Info("intent rejected",
			"user", in.UserID,
			"market", in.MarketID,
			"code", string(code),
		)
		return &Reply{Text: reply.Validation(code)}, nil
	}

	req, err := BuildRequest(in, m, accountID, s.now(), s.bucket)
	if err != nil {
		return nil, err
	}

	// Capacity is consumed here, at confirmation creation. Sells never
	// touch the ledger.
	if req.Action == model.ActionBuy {
		ok, err := s.ledger.Reserve(ctx, req.UserID, req.AmountCents)
		if err != nil {
			return nil, fmt.Errorf("reserving spend: %w", err)
		}
		if !ok {
			// A concurrent request won the remaining capacity between the
			// validation snapshot and here.
			metrics.ReservationsRejected.Inc()
			return &Reply{Text: reply.Validation(validate.CodeLimitExceeded)}, nil
		}
	}

	p := s.registry.Register(*req)
	metrics.PendingConfirmations.Set(float64(s.registry.Len()))

	slog.Info("confirmation created",
		"confirm_id", p.ID,
		"user", req.UserID,
		"market", req.MarketID,
		"action", req.Action,
		"amount_cents", req.AmountCents,
		"idempotency_key", req.IdempotencyKey,
	)

	return &Reply{Confirmation: &ConfirmationRequest{
		ConfirmID:     p.ID,
		MarketLabel:   req.MarketLabel,
		Outcome:       req.Outcome,
		Action:        req.Action,
		AmountDisplay: req.AmountDisplay(),
	}}, nil
}

// ExecutePendingTrade claims and executes a confirmed trade. The second
// return is false when the confirmation is unknown, already consumed, or
// expired; in every such case the gateway is never invoked.
func (s *Service) ExecutePendingTrade(ctx context.Context, confirmID string) (string, bool) {
	p, outcome := s.registry.Claim(confirmID)
	metrics.PendingConfirmations.Set(float64(s.registry.Len()))

	switch outcome {
	case confirm.NotFound:
		return "", false
	case confirm.Expired:
		s.releaseReservation(ctx, p)
		metrics.ConfirmationsTotal.WithLabelValues("expired").Inc()
		slog.Info("confirmation expired at use", "confirm_id", confirmID)
		return "", false
	}

	metrics.ConfirmationsTotal.WithLabelValues("confirmed").Inc()
	req := p.Request
	res := s.execute(ctx, req)

	if !res.OK {
		// A failed execution returns the reserved capacity; the user's
		// next attempt starts from a clean ledger position.
		s.releaseReservation(ctx, p)
		slog.Error("execution failed",
			"confirm_id", confirmID,
			"user", req.UserID,
			"market", req.MarketID,
			"code", res.Code,
		)
		return reply.Execution(res.Code), true
	}

	entry := &model.JournalEntry{
		TradeID:        res.TradeID,
		UserID:         req.UserID,
		AccountID:      req.AccountID,
		MarketID:       req.MarketID,
		MarketLabel:    req.MarketLabel,
		Outcome:        req.Outcome,
		Action:         req.Action,
		AmountCents:    res.AmountCents,
		IdempotencyKey: req.IdempotencyKey,
		ExecutedAt:     res.ExecutedAt,
	}
	if err := s.journal.Record(ctx, entry); err != nil {
		// The trade is already executed upstream; losing the journal row
		// must not fail the user.
		slog.Error("journal write failed", "trade_id", res.TradeID, "err", err)
	}

	slog.Info("trade executed",
		"trade_id", res.TradeID,
		"user", req.UserID,
		"market", req.MarketID,
		"action", req.Action,
		"amount_cents", res.AmountCents,
	)

	if s.hub != nil {
		s.hub.Broadcast(Event{
			Type:        "trade_executed",
			TradeID:     res.TradeID,
			MarketID:    req.MarketID,
			MarketLabel: req.MarketLabel,
			Outcome:     req.Outcome,
			Action:      req.Action,
			Amount:      req.AmountDisplay(),
		})
	}

	return reply.Executed(req.MarketLabel, req.Outcome, req.Action, req.AmountDisplay()), true
}

// execute performs the single gateway call for a claimed confirmation and
// tags the outcome.
func (s *Service) execute(ctx context.Context, req model.TradeRequest) model.TradeResult {
	start := s.now()
	exec, err := s.executor.Execute(ctx, req.AccountID, gateway.Order{
		MarketID:       req.MarketID,
		Outcome:        req.Outcome,
		Action:         req.Action,
		AmountCents:    req.AmountCents,
		IdempotencyKey: req.IdempotencyKey,
	})
	metrics.ExecutionLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		code := gateway.CodeOf(err)
		metrics.ExecutionsTotal.WithLabelValues(code).Inc()
		slog.Warn("gateway call failed", "market", req.MarketID, "code", code, "err", err)
		return model.TradeResult{Code: code, FailedAt: s.now()}
	}

	metrics.ExecutionsTotal.WithLabelValues("ok").Inc()
	return model.TradeResult{
		OK:          true,
		TradeID:     exec.TradeID,
		ExecutedAt:  exec.ExecutedAt,
		AmountCents: req.AmountCents,
	}
}

// CancelPendingTrade claims and discards a pending confirmation,
// returning its reserved capacity. False means there was nothing left to
// cancel.
func (s *Service) CancelPendingTrade(ctx context.Context, confirmID string) bool {
	p, outcome := s.registry.Claim(confirmID)
	metrics.PendingConfirmations.Set(float64(s.registry.Len()))

	switch outcome {
	case confirm.NotFound:
		return false
	case confirm.Expired:
		s.releaseReservation(ctx, p)
		metrics.ConfirmationsTotal.WithLabelValues("expired").Inc()
		return false
	}

	s.releaseReservation(ctx, p)
	metrics.ConfirmationsTotal.WithLabelValues("cancelled").Inc()
	slog.Info("confirmation cancelled", "confirm_id", confirmID, "user", p.Request.UserID)
	return true
}

// ReleaseExpired returns the spend reservation of a sweep-expired
// confirmation. Wired as the registry sweep callback.
func (s *Service) ReleaseExpired(p *confirm.Pending) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.releaseReservation(ctx, p)
	metrics.ConfirmationsTotal.WithLabelValues("expired").Inc()
	metrics.PendingConfirmations.Set(float64(s.registry.Len()))
}

func (s *Service) releaseReservation(ctx context.Context, p *confirm.Pending) {
	if p == nil || p.Request.Action != model.ActionBuy {
		return
	}
	if err := s.ledger.Release(ctx, p.Request.UserID, p.Request.AmountCents); err != nil {
		slog.Error("spend release failed",
			"user", p.Request.UserID,
			"amount_cents", p.Request.AmountCents,
			"err", err,
		)
	}
}

// --- Informational replies ---

func (s *Service) balanceReply(ctx context.Context, userID string) (*Reply, error) {
	spent, err := s.ledger.SpentToday(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reading spend: %w", err)
	}
	remaining, err := s.ledger.Remaining(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reading remaining allowance: %w", err)
	}

	text := fmt.Sprintf("You've spent %s today and have %s of your daily allowance left.",
		dollars(spent), dollars(remaining))
	return &Reply{Text: text}, nil
}

func (s *Service) historyReply(ctx context.Context, userID string) (*Reply, error) {
	entries, err := s.journal.ByUser(ctx, userID, 10)
	if err != nil {
		return nil, fmt.Errorf("reading journal: %w", err)
	}
	if len(entries) == 0 {
		return &Reply{Text: "No executed trades yet."}, nil
	}

	var b strings.Builder
	b.WriteString("Your recent trades:\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s %s on %q (%s) at %s\n",
			i+1, e.Action, dollars(e.AmountCents), e.MarketLabel, e.Outcome,
			e.ExecutedAt.UTC().Format("Jan 2 15:04"))
	}
	return &Reply{Text: b.String()}, nil
}

func (s *Service) marketReply(ctx context.Context, marketID string) (*Reply, error) {
	m, err := s.lookup.Lookup(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("looking up market %s: %w", marketID, err)
	}
	if m == nil {
		return &Reply{Text: reply.Validation(validate.CodeInvalidMarket)}, nil
	}

	text := fmt.Sprintf("%s: status %s, last price %s.", m.Label, m.Status, m.Price.StringFixed(2))
	return &Reply{Text: text}, nil
}

func dollars(cents int64) string {
	return "$" + decimal.NewFromInt(cents).Shift(-2).StringFixed(2)
}
