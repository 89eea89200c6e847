package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Prithwiraj-CK/polybot2/internal/bot"
	"github.com/Prithwiraj-CK/polybot2/internal/config"
	"github.com/Prithwiraj-CK/polybot2/internal/confirm"
	"github.com/Prithwiraj-CK/polybot2/internal/gateway"
	"github.com/Prithwiraj-CK/polybot2/internal/intent"
	"github.com/Prithwiraj-CK/polybot2/internal/journal"
	"github.com/Prithwiraj-CK/polybot2/internal/market"
	"github.com/Prithwiraj-CK/polybot2/internal/metrics"
	"github.com/Prithwiraj-CK/polybot2/internal/spend"
	"github.com/Prithwiraj-CK/polybot2/internal/throttle"
	"github.com/Prithwiraj-CK/polybot2/internal/trade"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		// Missing execution credentials is the one fatal startup failure.
		slog.Error("configuration failed", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cleanup []func()
	defer func() {
		for _, fn := range cleanup {
			fn()
		}
	}()

	limits := spend.Limits{
		DayCents:     cfg.DailyLimitCents,
		HourCents:    cfg.HourlyLimitCents,
		ExemptUserID: cfg.ExemptUserID,
	}

	// --- Market lookup ---
	var lookup market.Lookup
	if cfg.MarketAPIURL != "" {
		lookup = market.NewHTTPLookup(cfg.MarketAPIURL)
	} else {
		slog.Warn("MARKET_API_URL not set, using empty in-process market directory")
		lookup = market.NewDirectory()
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "err", err)
			os.Exit(1)
		}
		rdb = redis.NewClient(opt)
		cleanup = append(cleanup, func() { rdb.Close() })
		lookup = market.NewCachedLookup(lookup, rdb, 30*time.Second)
		slog.Info("Redis connected")
	}

	// --- Spend ledger ---
	var ledger spend.Ledger
	var memLedger *spend.MemoryLedger
	if rdb != nil {
		ledger = spend.NewRedisLedger(rdb, limits)
		slog.Info("using Redis spend ledger")
	} else {
		memLedger = spend.NewMemoryLedger(limits)
		ledger = memLedger
		slog.Warn("using in-process spend ledger (single instance only)")
	}

	// --- Trade journal ---
	var store journal.Store
	switch {
	case cfg.DatabaseURL != "":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, pool.Close)
		pg := journal.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			slog.Error("journal migration failed", "err", err)
			os.Exit(1)
		}
		store = pg
		slog.Info("journal on PostgreSQL")
	case cfg.SQLitePath != "":
		sq, err := journal.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			slog.Error("sqlite open failed", "err", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, func() { sq.Close() })
		store = sq
		slog.Info("journal on SQLite", "path", cfg.SQLitePath)
	default:
		store = journal.NewMemoryStore()
		slog.Warn("journal in memory (trades will not persist)")
	}

	// --- Pipeline ---
	registry := confirm.NewRegistry(cfg.ConfirmTTL)
	hub := trade.NewHub()
	go hub.Run()

	svc := trade.NewService(trade.Config{
		Extractor:         intent.NewHTTPExtractor(cfg.ExtractorURL),
		Accounts:          trade.SharedAccount("shared"),
		Lookup:            lookup,
		Ledger:            ledger,
		Registry:          registry,
		Executor:          gateway.NewHTTPExecutor(cfg.ExecutorURL, cfg.ExecutorAPIKey),
		Journal:           store,
		Cooldown:          throttle.NewCooldown(cfg.CommandCooldown),
		Hub:               hub,
		Limits:            limits,
		IdempotencyBucket: cfg.IdempotencyBucket,
	})

	// --- Background sweeps ---
	go confirm.RunSweep(ctx, registry, cfg.ConfirmSweepPeriod, svc.ReleaseExpired)
	if memLedger != nil {
		go spend.RunEviction(ctx, memLedger, cfg.LedgerSweepPeriod)
	}

	// --- Telegram transport (optional) ---
	if cfg.TelegramToken != "" {
		tgBot, err := bot.New(cfg.TelegramToken, svc)
		if err != nil {
			slog.Error("telegram bot init failed", "err", err)
			os.Exit(1)
		}
		go tgBot.Start()
		cleanup = append(cleanup, tgBot.Stop)
	}

	// --- HTTP router ---
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"polybot"}`))
	})

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ws", hub.HandleWS)
		r.Post("/messages", svc.HandleMessage)
		r.Post("/confirmations/{confirmID}/confirm", svc.HandleConfirm)
		r.Post("/confirmations/{confirmID}/cancel", svc.HandleCancel)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("polybot listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("shutting down polybot...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
	fmt.Println("polybot stopped")
}
