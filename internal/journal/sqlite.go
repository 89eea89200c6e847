package journal

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/Prithwiraj-CK/polybot2/internal/model"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id        TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	account_id      TEXT NOT NULL,
	market_id       TEXT NOT NULL,
	market_label    TEXT NOT NULL DEFAULT '',
	outcome         TEXT NOT NULL,
	action          TEXT NOT NULL,
	amount_cents    INTEGER NOT NULL,
	idempotency_key TEXT NOT NULL,
	executed_at     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_user ON trades(user_id);
CREATE INDEX IF NOT EXISTS idx_trades_executed ON trades(executed_at);
`

// SQLiteStore implements Store on a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and migrates) a SQLite-backed journal at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal db: %w", err)
	}

	// WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema migration: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Record(ctx context.Context, e *model.JournalEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trades (trade_id, user_id, account_id, market_id, market_label,
			outcome, action, amount_cents, idempotency_key, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.TradeID, e.UserID, e.AccountID, e.MarketID, e.MarketLabel,
		e.Outcome, e.Action, e.AmountCents, e.IdempotencyKey, e.ExecutedAt,
	)
	return err
}

func (s *SQLiteStore) ByUser(ctx context.Context, userID string, limit int) ([]model.JournalEntry, error) {
	query := `
		SELECT trade_id, user_id, account_id, market_id, market_label,
			outcome, action, amount_cents, idempotency_key, executed_at
		FROM trades WHERE user_id = ? ORDER BY executed_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
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
