package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Prithwiraj-CK/polybot2/internal/model"
)

// HTTPLookup queries the market-data collaborator over HTTP. A 404 from
// upstream maps to the unknown-market result (nil, nil).
type HTTPLookup struct {
	baseURL string
	http    *http.Client
}

// NewHTTPLookup creates a lookup client for the given base URL.
func NewHTTPLookup(baseURL string) *HTTPLookup {
	return &HTTPLookup{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (l *HTTPLookup) Lookup(ctx context.Context, marketID string) (*model.Market, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/v1/markets/"+marketID, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("market: lookup %s: %w", marketID, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var m model.Market
		if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
			return nil, fmt.Errorf("market: decoding %s: %w", marketID, err)
		}
		return &m, nil
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("market: lookup %s: upstream status %d", marketID, resp.StatusCode)
	}
}
