// Package journal persists the immutable record of executed trades.
// Implementations include PostgreSQL (shared deployments), SQLite
// (single node), and in-memory (for testing).
package journal

import (
	"context"

	"github.com/Prithwiraj-CK/polybot2/internal/model"
)

// Store is the journal persistence interface.
type Store interface {
	// Record appends one executed trade. Entries are append-only.
	Record(ctx context.Context, e *model.JournalEntry) error

	// ByUser returns a user's executed trades, most recent first,
	// capped at limit (0 means no cap).
	ByUser(ctx context.Context, userID string, limit int) ([]model.JournalEntry, error)
}
