// Package client wraps outbound API calls: it executes an operation, applies
// the error classifier on failure, and hands callers a normalized error with
// the endpoint attached. It never retries on its own; retry stays with the
// caller (see RetryWithBackoff for the opt-in helper).
package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/dotcommander/faultline/internal/apperr"
	"github.com/dotcommander/faultline/internal/report"
	"github.com/dotcommander/faultline/pkg/cache"
)

// Client holds the HTTP transport plus the optional reporter and response
// cache shared by calls built against it.
type Client struct {
	http     *http.Client
	baseURL  string
	reporter report.Reporter
	cache    *cache.Cache
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithReporter sets the sink notified on every normalized failure.
func WithReporter(r report.Reporter) Option {
	return func(c *Client) {
		if r != nil {
			c.reporter = r
		}
	}
}

// WithCache enables the GET response cache.
func WithCache(cc *cache.Cache) Option {
	return func(c *Client) { c.cache = cc }
}

// New creates a client for the given base URL (may be empty when calls use
// absolute URLs).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http:     &http.Client{Timeout: 30 * time.Second},
		baseURL:  baseURL,
		reporter: report.Nop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call pairs an endpoint identifier with a zero-argument operation. Retry is
// caller-initiated: invoke Do again on the same value. Concurrent duplicate
// invocations are not deduplicated here.
type Call[T any] struct {
	Endpoint string
	Op       func(ctx context.Context) (T, error)

	reporter report.Reporter
}

// NewCall binds an operation to a client so failures are reported through
// the client's sink. A zero Call literal also works; it just reports nowhere.
func NewCall[T any](c *Client, endpoint string, op func(ctx context.Context) (T, error)) Call[T] {
	return Call[T]{Endpoint: endpoint, Op: op, reporter: c.reporter}
}

// Do executes the operation once. On success the result is returned
// unchanged. On failure the classifier runs, the endpoint is attached, and
// the returned error is always a *apperr.Error; the original failure is
// preserved only in its Details.
func (c Call[T]) Do(ctx context.Context) (T, error) {
	v, err := c.Op(ctx)
	if err == nil {
		return v, nil
	}

	norm := apperr.Classify(err).WithEndpoint(c.Endpoint)
	if c.reporter != nil {
		func() {
			defer func() { _ = recover() }()
			c.reporter.LogError(norm, map[string]any{"endpoint": c.Endpoint})
		}()
	}

	var zero T
	return zero, norm
}

// NewGet builds a Call that GETs path relative to the client's base URL and
// decodes the JSON response into T. When the client carries a cache, the
// response body is served from it on subsequent calls until expiry.
func NewGet[T any](c *Client, path string) Call[T] {
	return NewCall(c, path, func(ctx context.Context) (T, error) {
		return getJSON[T](ctx, c, path)
	})
}

// GetJSON is shorthand for NewGet(...).Do(ctx).
func GetJSON[T any](ctx context.Context, c *Client, path string) (T, error) {
	return NewGet[T](c, path).Do(ctx)
}

func getJSON[T any](ctx context.Context, c *Client, path string) (T, error) {
	var zero T
	key := "GET " + path
	start := time.Now()

	if c.cache != nil {
		if body, ok := c.cache.Get(key); ok {
			var v T
			if err := json.Unmarshal([]byte(body), &v); err == nil {
				c.cache.Metrics().ObserveCached(time.Since(start))
				return v, nil
			}
			// Cached body no longer decodes into T; drop it and refetch.
			c.cache.Invalidate(key)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return zero, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return zero, apperr.ClassifyTransport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, apperr.ClassifyTransport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return zero, apperr.ClassifyResponse(resp.StatusCode, body)
	}

	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return zero, apperr.ClassifyParseFailure(err)
	}

	if c.cache != nil {
		c.cache.Put(key, string(body))
		c.cache.Metrics().ObserveUncached(time.Since(start))
	}
	return v, nil
}

// Invalidate drops a cached GET response, if any.
func (c *Client) Invalidate(path string) {
	if c.cache != nil {
		c.cache.Invalidate("GET " + path)
	}
}
