// Package confirm holds trades that await human approval.
//
// Every pending confirmation is claimed at most once: confirm, cancel, and
// sweep-driven expiry all go through the same atomic check-then-remove
// step, so of any number of concurrent attempts on one id exactly one
// succeeds and the rest observe "already consumed". No re-validation
// happens at claim time; the registry trusts the validation snapshot bound
// at creation.
package confirm

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Prithwiraj-CK/polybot2/internal/model"
)

// Outcome of a Claim attempt.
type Outcome int

const (
	// Claimed: the caller now owns the confirmation exclusively.
	Claimed Outcome = iota
	// NotFound: unknown id, or already consumed by a competing claim.
	NotFound
	// Expired: the entry was present but past its TTL; the claim removed
	// it and the caller must release its spend reservation.
	Expired
)

// Pending is one trade awaiting approval. The bound request carries every
// parameter needed to execute; nothing is looked up again later.
type Pending struct {
	ID        string
	Request   model.TradeRequest
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Registry is the keyed store of pending confirmations.
type Registry struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	pending map[string]*Pending
}

// NewRegistry creates a registry with the given confirmation TTL.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		ttl:     ttl,
		now:     time.Now,
		pending: make(map[string]*Pending),
	}
}

// SetClock overrides the time source. Test hook.
func (r *Registry) SetClock(now func() time.Time) { r.now = now }

// Register stores a validated request under a fresh opaque id and returns
// the pending entry.
func (r *Registry) Register(req model.TradeRequest) *Pending {
	now := r.now()
	p := &Pending{
		ID:        uuid.New().String(),
		Request:   req,
		CreatedAt: now,
		ExpiresAt: now.Add(r.ttl),
	}

	r.mu.Lock()
	r.pending[p.ID] = p
	r.mu.Unlock()

	return p
}

// Claim atomically consumes the confirmation with the given id. The entry
// is removed regardless of the Expired/Claimed distinction; expiry is
// re-checked here at the moment of use so no execution can happen after
// TTL no matter when the sweep last ran.
func (r *Registry) Claim(id string) (*Pending, Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pending[id]
	if !ok {
		return nil, NotFound
	}
	delete(r.pending, id)

	if r.now().After(p.ExpiresAt) {
		return p, Expired
	}
	return p, Claimed
}

// Len returns the number of pending confirmations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// SweepExpired removes every entry past its TTL and returns them so the
// caller can release their spend reservations. Bounds memory without a
// per-entry timer.
func (r *Registry) SweepExpired() []*Pending {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var expired []*Pending
	for id, p := range r.pending {
		if now.After(p.ExpiresAt) {
			delete(r.pending, id)
			expired = append(expired, p)
		}
	}
	return expired
}
