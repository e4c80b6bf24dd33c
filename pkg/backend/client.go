package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rubiojr/stusearch/pkg/log"
	"github.com/rubiojr/stusearch/pkg/metrics"
	"github.com/xeipuuv/gojsonschema"
)

// DefaultBaseURL is where the records backend listens by default.
const DefaultBaseURL = "http://localhost:5000/api"

var (
	// ErrTransport wraps network failures: refused connections, resets,
	// timeouts and cancelled contexts.
	ErrTransport = errors.New("backend: transport failure")
	// ErrUnhealthy is returned by Health for non-2xx answers.
	ErrUnhealthy = errors.New("backend: unhealthy")
	// ErrMalformedResponse is returned when a body is not valid JSON or does
	// not match the expected shape.
	ErrMalformedResponse = errors.New("backend: malformed response")
)

var logger = log.ForService("backend")

// Client talks to the records backend. All calls are unauthenticated GETs.
type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each request. Zero leaves requests unbounded, relying on
// transport defaults.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.http
			hc.Timeout = d
			c.http = &hc
		}
	}
}

// NewClient creates a client for baseURL (e.g. http://localhost:5000/api).
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health probes {base}/health. Any 2xx answer is healthy; the body is ignored.
func (c *Client) Health(ctx context.Context) error {
	resp, _, err := c.get(ctx, "health", "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.BackendRequestsTotal.WithLabelValues("health", "unhealthy").Inc()
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// Columns fetches {base}/columns, which carries the column list and the
// total number of records.
func (c *Client) Columns(ctx context.Context) (*ColumnsResponse, error) {
	resp, _, err := c.get(ctx, "columns", "/columns")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out ColumnsResponse
	if err := decode(resp.Body, columnsValidator, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search runs {base}/search?q=term. A response with success:false is
// returned as data, not as an error.
//
// The returned duration is the time until the response headers arrived. It
// is set whenever a response was received, even if decoding the body fails.
func (c *Client) Search(ctx context.Context, term string) (*SearchResponse, time.Duration, error) {
	resp, elapsed, err := c.get(ctx, "search", "/search?q="+queryEscape(term))
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var out SearchResponse
	if err := decode(resp.Body, searchValidator, &out); err != nil {
		return nil, elapsed, err
	}
	logger.Debugf("search %q: success=%t students=%d", term, out.Success, len(out.Students))
	return &out, elapsed, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string) (*http.Response, time.Duration, error) {
	u := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("building request for %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		metrics.ObserveBackend(endpoint, "transport_error", elapsed)
		logger.Warnf("GET %s failed after %s: %v", u, elapsed, err)
		return nil, 0, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	metrics.ObserveBackend(endpoint, fmt.Sprintf("%dxx", resp.StatusCode/100), elapsed)
	logger.Debugf("GET %s -> %d in %s", u, resp.StatusCode, elapsed)
	return resp, elapsed, nil
}

// decode reads body, validates it against schema and unmarshals it into v.
func decode(r io.Reader, schema *gojsonschema.Schema, v any) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("%w: reading body: %v", ErrTransport, err)
	}
	if !json.Valid(body) {
		return fmt.Errorf("%w: body is not JSON", ErrMalformedResponse)
	}
	if err := validate(schema, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// queryEscape encodes a query value with spaces as %20 rather than "+".
func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
