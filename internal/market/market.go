// Package market defines the lookup boundary to the market-data
// collaborator. Discovery, search, and ranking live outside this service;
// the pipeline only needs existence and status for a known market id.
package market

import (
	"context"
	"sync"

	"github.com/Prithwiraj-CK/polybot2/internal/model"
)

// Lookup resolves a market id to a snapshot. A nil market with a nil
// error means the id is unknown.
type Lookup interface {
	Lookup(ctx context.Context, marketID string) (*model.Market, error)
}

// LookupFunc adapts a plain function to the Lookup interface.
type LookupFunc func(ctx context.Context, marketID string) (*model.Market, error)

func (f LookupFunc) Lookup(ctx context.Context, marketID string) (*model.Market, error) {
	return f(ctx, marketID)
}

// Directory is an in-process Lookup backed by a map. Used for testing and
// single-node deployments seeded from a market feed.
type Directory struct {
	mu      sync.RWMutex
	markets map[string]*model.Market
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{markets: make(map[string]*model.Market)}
}

// Put inserts or replaces a market snapshot.
func (d *Directory) Put(m *model.Market) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cp := *m
	d.markets[m.ID] = &cp
}

func (d *Directory) Lookup(_ context.Context, marketID string) (*model.Market, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	m, ok := d.markets[marketID]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}
