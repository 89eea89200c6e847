package market

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Prithwiraj-CK/polybot2/internal/model"
)

// CachedLookup wraps a primary Lookup with a Redis read-through cache.
// Market status can flip between lookups, so the TTL should stay short;
// the validator treats whatever snapshot it gets as authoritative.
type CachedLookup struct {
	primary Lookup
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedLookup creates a cached wrapper around a primary lookup.
func NewCachedLookup(primary Lookup, rdb *redis.Client, ttl time.Duration) *CachedLookup {
	return &CachedLookup{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

func (c *CachedLookup) Lookup(ctx context.Context, marketID string) (*model.Market, error) {
	// Try cache.
	data, err := c.rdb.Get(ctx, marketKey(marketID)).Bytes()
	if err == nil {
		var m model.Market
		if json.Unmarshal(data, &m) == nil {
			return &m, nil
		}
	}

	// Cache miss: read from primary.
	m, err := c.primary.Lookup(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		// Unknown ids are not negatively cached; a market can appear
		// between lookups.
		return nil, nil
	}

	if data, err := json.Marshal(m); err == nil {
		c.rdb.Set(ctx, marketKey(marketID), data, c.ttl)
	}
	return m, nil
}

func marketKey(id string) string { return fmt.Sprintf("market:%s", id) }
