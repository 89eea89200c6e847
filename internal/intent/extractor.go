package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPExtractor calls the remote intent-extraction collaborator. The
// response body is returned as-is; trust is established only by Parse.
type HTTPExtractor struct {
	baseURL string
	http    *http.Client
}

// NewHTTPExtractor creates an extractor client for the given base URL.
func NewHTTPExtractor(baseURL string) *HTTPExtractor {
	return &HTTPExtractor{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type extractRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

func (e *HTTPExtractor) Extract(ctx context.Context, userID, text string) ([]byte, error) {
	body, err := json.Marshal(extractRequest{UserID: userID, Text: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/extract", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("intent: extract call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("intent: extractor status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, 1<<16))
}
