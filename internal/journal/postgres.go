package journal

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Prithwiraj-CK/polybot2/internal/model"
)

// PostgresStore implements Store using PostgreSQL, for deployments where
// multiple replicas share one journal.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed journal.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the trades table if missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS trades (
			trade_id        TEXT PRIMARY KEY,
			user_id         TEXT NOT NULL,
			account_id      TEXT NOT NULL,
			market_id       TEXT NOT NULL,
			market_label    TEXT NOT NULL DEFAULT '',
			outcome         TEXT NOT NULL,
			action          TEXT NOT NULL,
			amount_cents    BIGINT NOT NULL,
			idempotency_key TEXT NOT NULL,
			executed_at     TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_trades_user ON trades(user_id)`)
	if err != nil {
		return fmt.Errorf("journal migration: %w", err)
	}
	return nil
}

func (s *PostgresStore) Record(ctx context.Context, e *model.JournalEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO trades (trade_id, user_id, account_id, market_id, market_label,
			outcome, action, amount_cents, idempotency_key, executed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.TradeID, e.UserID, e.AccountID, e.MarketID, e.MarketLabel,
		e.Outcome, e.Action, e.AmountCents, e.IdempotencyKey, e.ExecutedAt,
	)
	return err
}

func (s *PostgresStore) ByUser(ctx context.Context, userID string, limit int) ([]model.JournalEntry, error) {
	query := `SELECT trade_id, user_id, account_id, market_id, market_label,
			outcome, action, amount_cents, idempotency_key, executed_at
		 FROM trades WHERE user_id = $1 ORDER BY executed_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.JournalEntry
	for rows.Next() {
		var e model.JournalEntry
		if err := rows.Scan(&e.TradeID, &e.UserID, &e.AccountID, &e.MarketID, &e.MarketLabel,
			&e.Outcome, &e.Action, &e.AmountCents, &e.IdempotencyKey, &e.ExecutedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
