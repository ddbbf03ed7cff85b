// Package api is the HTTP client for the storefront backend.
//
// Every call is an independent unit bounded by its context. The client
// never touches application state itself, with one exception: a 401 on an
// authenticated call invokes the unauthorized handler so the session can be
// invalidated immediately, whoever made the call.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/roach88/storefront/internal/ident"
)

// DefaultTimeout bounds a single request when no http.Client is supplied.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of an error response is read for a message.
const maxErrorBody = 64 << 10

// TokenSource returns the current bearer token, or "" when anonymous.
type TokenSource func() string

// UnauthorizedHandler is called after any authenticated call receives 401,
// with the token that call sent.
type UnauthorizedHandler func(ctx context.Context, token string)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = &http.Client{Timeout: d}
	}
}

// WithRequestIDs sets the generator for X-Request-ID headers.
func WithRequestIDs(gen ident.Generator) Option {
	return func(c *Client) {
		c.ids = gen
	}
}

// WithTokenSource sets where authenticated calls read their token from.
func WithTokenSource(src TokenSource) Option {
	return func(c *Client) {
		c.token = src
	}
}

// WithUnauthorizedHandler sets the 401 hook.
func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *Client) {
		c.onUnauthorized = h
	}
}

// Client talks to the backend REST surface rooted at BaseURL (".../api").
type Client struct {
	baseURL        *url.URL
	http           *http.Client
	ids            ident.Generator
	token          TokenSource
	onUnauthorized UnauthorizedHandler
}

// New creates a Client for baseURL, e.g. "http://localhost:8080/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q: host is required", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: DefaultTimeout},
		ids:     ident.UUIDv7Generator{},
		token:   func() string { return "" },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetUnauthorizedHandler replaces the 401 hook after construction. Used when
// the handler's owner is built after the client.
func (c *Client) SetUnauthorizedHandler(h UnauthorizedHandler) {
	c.onUnauthorized = h
}

// SetTokenSource replaces the token source after construction.
func (c *Client) SetTokenSource(src TokenSource) {
	c.token = src
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// request describes one call.
type request struct {
	op       string // operation name for errors and logs
	method   string
	path     string // relative to baseURL, already escaped
	query    url.Values
	body     any
	auth     bool   // send bearer token, route 401 to the hook
	fallback string // message used when the error body carries none
}

// do sends r and returns the raw response body of a 2xx response.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	var token string
	if r.auth {
		token = c.token()
		if token == "" {
			return nil, fmt.Errorf("%s: %w", r.op, ErrNoSession)
		}
	}

	var body io.Reader
	if r.body != nil {
		buf, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", r.op, err)
		}
		body = bytes.NewReader(buf)
	}

	u := *c.baseURL
	u.Path = c.baseURL.Path + r.path
	if rawPath := c.baseURL.EscapedPath() + r.path; rawPath != u.Path {
		u.RawPath = rawPath
	}
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", r.op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	requestID := c.ids.Generate()
	req.Header.Set("X-Request-ID", requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", r.op, ctxErr)
		}
		slog.Warn("request failed",
			"op", r.op,
			"request_id", requestID,
			"error", err,
		)
		return nil, &NetworkError{Op: r.op, Err: err}
	}
	defer resp.Body.Close()

	slog.Debug("response received",
		"op", r.op,
		"request_id", requestID,
		"status", resp.StatusCode,
		"elapsed", time.Since(started),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		herr := &HTTPError{
			Op:      r.op,
			Status:  resp.StatusCode,
			Message: errorMessage(resp, r.fallback),
		}
		if r.auth && resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized(ctx, token)
		}
		return nil, herr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: r.op, Err: err}
	}
	return data, nil
}

// doJSON sends r and decodes a 2xx body into out.
func (c *Client) doJSON(ctx context.Context, r request, out any) error {
	data, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", r.op, err)
	}
	return nil
}

// errorMessage extracts "message" or "error" from a JSON error body.
func errorMessage(resp *http.Response, fallback string) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}

	if fallback != "" {
		return fallback
	}
	return fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
}
