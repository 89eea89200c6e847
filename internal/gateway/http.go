package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// knownCodes guards the closed vocabulary: upstream codes outside it are
// reported as INTERNAL_ERROR rather than leaked through.
var knownCodes = map[string]bool{
	CodeRateLimited:         true,
	CodeUpstreamUnavailable: true,
	CodeInvalidMarket:       true,
	CodeMarketNotActive:     true,
	CodeInvalidAmount:       true,
	CodeAbuseBlocked:        true,
	CodeLimitExceeded:       true,
	CodeInternalError:       true,
}

// HTTPExecutor calls a remote execution service over HTTP.
type HTTPExecutor struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewHTTPExecutor creates an executor client for the given base URL.
func NewHTTPExecutor(baseURL, apiKey string) *HTTPExecutor {
	return &HTTPExecutor{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type executeRequest struct {
	AccountID string `json:"account_id"`
	Order     Order  `json:"order"`
}

type executeResponse struct {
	TradeID    string    `json:"trade_id"`
	ExecutedAt time.Time `json:"executed_at"`
	Error      string    `json:"error,omitempty"`
}

func (e *HTTPExecutor) Execute(ctx context.Context, accountID string, order Order) (*Execution, error) {
	body, err := json.Marshal(executeRequest{AccountID: accountID, Order: order})
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/trades", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Idempotency-Key", order.IdempotencyKey)

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, &Error{Code: CodeUpstreamUnavailable, Err: err}
	}
	defer resp.Body.Close()

	var out executeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &Error{Code: CodeInternalError, Err: fmt.Errorf("decoding response: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		if out.TradeID == "" {
			return nil, &Error{Code: CodeInternalError, Err: fmt.Errorf("empty trade_id in 200 response")}
		}
		return &Execution{TradeID: out.TradeID, ExecutedAt: out.ExecutedAt}, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &Error{Code: CodeRateLimited}

	case resp.StatusCode >= 500:
		return nil, &Error{Code: CodeUpstreamUnavailable, Err: fmt.Errorf("upstream status %d", resp.StatusCode)}

	default:
		code := out.Error
		if !knownCodes[code] {
			code = CodeInternalError
		}
		return nil, &Error{Code: code}
	}
}
