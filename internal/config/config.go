// Package config loads runtime configuration from the environment.
// A .env file is honored when present for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all tunable settings for the server.
type Config struct {
	Port string

	// Spend ceilings, in cents. The hourly ceiling is independently
	// configurable; default equals the daily ceiling.
	DailyLimitCents  int64
	HourlyLimitCents int64

	// ExemptUserID bypasses both spend ceilings. Empty disables exemption.
	ExemptUserID string

	ConfirmTTL         time.Duration
	ConfirmSweepPeriod time.Duration
	LedgerSweepPeriod  time.Duration
	IdempotencyBucket  time.Duration
	CommandCooldown    time.Duration

	// Execution gateway. ExecutorAPIKey is the only required setting.
	ExecutorURL    string
	ExecutorAPIKey string

	// ExtractorURL points at the intent-extraction collaborator;
	// MarketAPIURL at the market-data collaborator (optional, an empty
	// in-process directory is used when unset).
	ExtractorURL string
	MarketAPIURL string

	// Optional backing services. Empty values select in-process fallbacks.
	RedisURL    string
	DatabaseURL string
	SQLitePath  string

	// Optional Telegram transport.
	TelegramToken string
}

// Load reads configuration from the environment. It fails only on the
// one fatal condition: missing execution credentials.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnvDefault("PORT", "8080"),
		DailyLimitCents:    getEnvInt64("DAILY_LIMIT_CENTS", 500),
		ExemptUserID:       os.Getenv("EXEMPT_USER_ID"),
		ConfirmTTL:         getEnvDuration("CONFIRM_TTL", 5*time.Minute),
		ConfirmSweepPeriod: getEnvDuration("CONFIRM_SWEEP_PERIOD", 2*time.Minute),
		LedgerSweepPeriod:  getEnvDuration("LEDGER_SWEEP_PERIOD", time.Hour),
		IdempotencyBucket:  getEnvDuration("IDEMPOTENCY_BUCKET", 5*time.Minute),
		CommandCooldown:    getEnvDuration("COMMAND_COOLDOWN", 2*time.Second),
		ExecutorURL:        getEnvDefault("EXECUTOR_URL", "http://localhost:9090"),
		ExecutorAPIKey:     os.Getenv("EXECUTOR_API_KEY"),
		ExtractorURL:       getEnvDefault("EXTRACTOR_URL", "http://localhost:9091"),
		MarketAPIURL:       os.Getenv("MARKET_API_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SQLitePath:         os.Getenv("SQLITE_PATH"),
		TelegramToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	// Hourly ceiling defaults to the daily ceiling; the two are meant to
	// diverge under different operating policies.
	cfg.HourlyLimitCents = getEnvInt64("HOURLY_LIMIT_CENTS", cfg.DailyLimitCents)

	if cfg.ExecutorAPIKey == "" {
		return nil, fmt.Errorf("EXECUTOR_API_KEY is required")
	}
	if cfg.DailyLimitCents <= 0 {
		return nil, fmt.Errorf("DAILY_LIMIT_CENTS must be positive, got %d", cfg.DailyLimitCents)
	}

	return cfg, nil
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
