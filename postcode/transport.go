package postcode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

// Transport issues the HTTP requests built by Client. Implementations decode
// a successful JSON response into out and report transport failures and
// non-2xx responses as errors.
type Transport interface {
	Get(ctx context.Context, url string, out any) error
	Post(ctx context.Context, url string, body, out any) error
}

// HTTPTransport is the default Transport, backed by an *http.Client.
type HTTPTransport struct {
	http      *http.Client
	userAgent string
}

// NewHTTPTransport returns a Transport using hc. A nil hc gets a client with
// a 10 second timeout.
func NewHTTPTransport(hc *http.Client, userAgent string) *HTTPTransport {
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPTransport{http: hc, userAgent: userAgent}
}

// Get implements Transport.
func (t *HTTPTransport) Get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return t.do(req, out)
}

// Post implements Transport. body is sent as JSON.
func (t *HTTPTransport) Post(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return t.do(req, out)
}

func (t *HTTPTransport) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newResponseError(resp.StatusCode, body)
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
