package journal_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Prithwiraj-CK/polybot2/internal/journal"
	"github.com/Prithwiraj-CK/polybot2/internal/model"
)

func TestByUser_MostRecentFirst(t *testing.T) {
	s := journal.NewMemoryStore()
	ctx := context.Background()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record(ctx, &model.JournalEntry{
			TradeID:    fmt.Sprintf("trade-%d", i),
			UserID:     "user1",
			ExecutedAt: at.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, s.Record(ctx, &model.JournalEntry{TradeID: "other", UserID: "user2"}))

	entries, err := s.ByUser(ctx, "user1", 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "trade-4", entries[0].TradeID)
	require.Equal(t, "trade-2", entries[2].TradeID)
}

func TestByUser_Empty(t *testing.T) {
	s := journal.NewMemoryStore()

	entries, err := s.ByUser(context.Background(), "nobody", 10)
	require.NoError(t, err)
	require.Empty(t, entries)
}
