// Package api is the HTTP client for the remote todo collection.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"
	"github.com/google/uuid"

	"github.com/idilsaglam/tada/internal/model"
)

// DefaultBaseURL is the collection endpoint of the local development server.
const DefaultBaseURL = "https://localhost:7219/api/todos"

// RequestIDHeader carries a per-request id for log correlation.
const RequestIDHeader = "X-Request-ID"

// maxErrorBody caps, in cells, how much of a failed response body is kept.
const maxErrorBody = 512

// Client talks to GET/POST/PUT/DELETE on a single REST collection.
// It never retries.
type Client struct {
	base       string
	http       *http.Client
	logger     *log.Logger
	timeout    time.Duration
	insecure   bool
	metrics    *Metrics
	transport  http.RoundTripper
	customHTTP bool
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithInsecureTLS disables certificate verification.
func WithInsecureTLS(insecure bool) Option {
	return func(c *Client) { c.insecure = insecure }
}

// WithMetrics instruments the transport.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHTTPClient uses hc as is; timeout, TLS and metrics options are ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
		c.customHTTP = true
	}
}

// WithTransport sets the base round tripper that metrics wrap.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport = rt }
}

// New builds a client for the collection at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q: missing host", baseURL)
	}

	c := &Client{
		base:   strings.TrimRight(baseURL, "/"),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}

	if !c.customHTTP {
		rt := c.transport
		if rt == nil {
			t := http.DefaultTransport.(*http.Transport).Clone()
			if c.insecure {
				t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
			}
			rt = t
		}
		if c.metrics != nil {
			rt = c.metrics.Instrument(rt)
		}
		c.http = &http.Client{Transport: rt, Timeout: c.timeout}
	}
	return c, nil
}

// BaseURL returns the collection URL without a trailing slash.
func (c *Client) BaseURL() string { return c.base }

// List fetches the full collection.
func (c *Client) List(ctx context.Context) ([]model.Todo, error) {
	body, err := c.do(ctx, http.MethodGet, c.base, nil)
	if err != nil {
		return nil, err
	}
	todos := []model.Todo{}
	if err := decodeValidated(body, todoListSchema, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// Create posts a new todo and returns it with its server-assigned id.
func (c *Client) Create(ctx context.Context, d model.Draft) (model.Todo, error) {
	body, err := c.do(ctx, http.MethodPost, c.base, d)
	if err != nil {
		return model.Todo{}, err
	}
	var t model.Todo
	if err := decodeValidated(body, todoSchema, &t); err != nil {
		return model.Todo{}, err
	}
	return t, nil
}

// Replace sends the full resource. The response body is ignored.
func (c *Client) Replace(ctx context.Context, t model.Todo) error {
	_, err := c.do(ctx, http.MethodPut, c.itemURL(t.ID), t)
	return err
}

// Delete removes the todo with the given id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, c.itemURL(id), nil)
	return err
}

func (c *Client) itemURL(id int64) string {
	return c.base + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, target string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s body: %w", method, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "url", target, "request_id", reqID, "err", err)
		return nil, fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s %s body: %w", ErrNetwork, method, target, err)
	}
	c.logger.Debug("request done",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"request_id", reqID,
		"took", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := ansi.Truncate(strings.TrimSpace(string(body)), maxErrorBody, "")
		return nil, &StatusError{Method: method, URL: target, Code: resp.StatusCode, Body: msg}
	}
	return body, nil
}
