// Package httpclient is the outbound HTTP transport shared by every collaborator that
// talks to EDGAR, the ticker source or the alert webhook.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 60 * time.Second

	// DefaultRateLimit caps requests per second (SEC fair access allows 10).
	DefaultRateLimit = 10
)

// Options configures a Client.
type Options struct {
	// Headers are sent with every request. A User-Agent identifying the operator is
	// required by EDGAR.
	Headers map[string]string
	Timeout time.Duration
	// RequestsPerSecond limits the request rate; <= 0 uses DefaultRateLimit.
	RequestsPerSecond float64
	// HTTPClient overrides the underlying client (tests).
	HTTPClient *http.Client
}

type Client struct {
	httpClient *http.Client
	headers    map[string]string
	limiter    *rate.Limiter
}

// StatusError is returned when a GET answers with a non-200 status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("received non-OK status code %d from %s", e.StatusCode, e.URL)
}

func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRateLimit
	}

	headers := make(map[string]string, len(opts.Headers))
	for k, v := range opts.Headers {
		headers[k] = v
	}

	return &Client{
		httpClient: hc,
		headers:    headers,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Get fetches url and returns the body. Any status other than 200 is a *StatusError.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from %s: %w", url, err)
	}
	return body, nil
}

// Response is the status and body of a POST.
type Response struct {
	StatusCode int
	Body       string
}

// PostJSON posts v encoded as JSON and returns the response regardless of status.
func (c *Client) PostJSON(ctx context.Context, url string, v any) (*Response, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to post to %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from %s: %w", url, err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: string(body)}, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	return c.httpClient.Do(req)
}
