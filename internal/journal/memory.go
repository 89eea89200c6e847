package journal

import (
	"context"
	"sync"

	"github.com/Prithwiraj-CK/polybot2/internal/model"
)

// MemoryStore implements Store with an in-memory slice. Used for testing
// and development; nothing persists across restarts.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []model.JournalEntry
}

// NewMemoryStore creates an empty in-memory journal.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Record(_ context.Context, e *model.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, *e)
	return nil
}

func (s *MemoryStore) ByUser(_ context.Context, userID string, limit int) ([]model.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.JournalEntry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].UserID != userID {
			continue
		}
		result = append(result, s.entries[i])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}
