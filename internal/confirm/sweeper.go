package confirm

import (
	"context"
	"log/slog"
	"time"
)

// RunSweep evicts expired confirmations on a fixed interval until ctx is
// cancelled, handing each expired entry to onExpired (used to release the
// entry's spend reservation). The interval is deliberately coarser than
// the TTL; the execution path re-checks expiry on its own, so sweep timing
// never affects correctness, only memory.
func RunSweep(ctx context.Context, r *Registry, period time.Duration, onExpired func(*Pending)) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			expired := r.SweepExpired()
			for _, p := range expired {
				if onExpired != nil {
					onExpired(p)
				}
			}
			if len(expired) > 0 {
				slog.Info("expired confirmations swept", "count", len(expired))
			}
		case <-ctx.Done():
			return
		}
	}
}
