package spend

import (
	"context"
	"log/slog"
	"time"
)

// RunEviction periodically drops stale spend buckets from an in-process
// ledger until ctx is cancelled. Redis-backed buckets expire via key TTL
// and need no sweep. Never blocks foreground request handling.
func RunEviction(ctx context.Context, l *MemoryLedger, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := l.Evict(); removed > 0 {
				slog.Info("spend buckets evicted", "count", removed)
			}
		case <-ctx.Done():
			return
		}
	}
}
