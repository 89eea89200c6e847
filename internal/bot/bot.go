// Package bot adapts the Telegram transport onto the trade pipeline.
// The bot owns no trade logic: every message is handed to the service,
// and confirm/cancel arrive as inline-button callbacks carrying the
// confirmation id.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"gopkg.in/telebot.v3"

	"github.com/Prithwiraj-CK/polybot2/internal/reply"
	"github.com/Prithwiraj-CK/polybot2/internal/trade"
)

// Bot is the Telegram front end.
type Bot struct {
	tb  *telebot.Bot
	svc *trade.Service
}

// New creates the Telegram bot against the pipeline service.
func New(token string, svc *trade.Service) (*Bot, error) {
	tb, err := telebot.NewBot(telebot.Settings{
		Token: token,
		Poller: &telebot.LongPoller{
			Timeout: 10 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("bot: creating telegram bot: %w", err)
	}

	b := &Bot{tb: tb, svc: svc}
	b.registerHandlers()
	return b, nil
}

// Start begins long-polling. Blocks until Stop is called.
func (b *Bot) Start() {
	slog.Info("telegram bot started")
	b.tb.Start()
}

// Stop shuts the poller down.
func (b *Bot) Stop() {
	b.tb.Stop()
}

func (b *Bot) registerHandlers() {
	b.tb.Handle("/start", func(c telebot.Context) error {
		return c.Send("Hi! Tell me what you'd like to trade, or ask about your balance, history, or any market.")
	})

	b.tb.Handle("/help", func(c telebot.Context) error {
		return c.Send("Send a plain message like \"buy $5 of YES on rain-tomorrow\".\n" +
			"I'll ask you to confirm before anything executes.\n" +
			"You can also ask for your balance, trade history, or a market's status.")
	})

	b.tb.Handle(telebot.OnText, func(c telebot.Context) error {
		userID := strconv.FormatInt(c.Sender().ID, 10)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		rep, err := b.svc.RouteMessage(ctx, userID, c.Text())
		if err != nil {
			slog.Error("route message failed", "user", userID, "err", err)
			return c.Send("Something went wrong. Nothing was executed — please try again.")
		}

		if rep.Confirmation == nil {
			return c.Send(rep.Text)
		}

		cr := rep.Confirmation
		confirmBtn := telebot.InlineButton{
			Unique: "trade_confirm",
			Text:   "✅ Confirm",
			Data:   cr.ConfirmID,
		}
		cancelBtn := telebot.InlineButton{
			Unique: "trade_cancel",
			Text:   "❌ Cancel",
			Data:   cr.ConfirmID,
		}

		prompt := reply.ConfirmPrompt(cr.MarketLabel, cr.Outcome, cr.Action, cr.AmountDisplay)
		return c.Send(prompt, &telebot.ReplyMarkup{
			InlineKeyboard: [][]telebot.InlineButton{{confirmBtn, cancelBtn}},
		})
	})

	b.tb.Handle(&telebot.InlineButton{Unique: "trade_confirm"}, func(c telebot.Context) error {
		confirmID := strings.TrimSpace(c.Data())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		text, ok := b.svc.ExecutePendingTrade(ctx, confirmID)
		if !ok {
			text = reply.ConfirmationGone
		}
		if err := c.Edit(text); err != nil {
			return c.Send(text)
		}
		return nil
	})

	b.tb.Handle(&telebot.InlineButton{Unique: "trade_cancel"}, func(c telebot.Context) error {
		confirmID := strings.TrimSpace(c.Data())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		text := reply.Cancelled
		if !b.svc.CancelPendingTrade(ctx, confirmID) {
			text = reply.ConfirmationGone
		}
		if err := c.Edit(text); err != nil {
			return c.Send(text)
		}
		return nil
	})
}
