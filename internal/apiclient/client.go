// Package apiclient is the storefront's client for the upstream store REST
// API. Public endpoints go through Do; account endpoints go through DoAuthed,
// which attaches the customer's bearer token and refreshes it once on 401.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/metrics"
	"github.com/nfrund/zina/internal/resilience"
	"golang.org/x/sync/singleflight"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultRetries    = 2
	defaultRetryDelay = 200 * time.Millisecond
	maxErrorBody      = 64 << 10
)

// APIError is a non-2xx response from the upstream API.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("upstream %d", e.Status)
}

// Is maps the response onto the domain sentinels so callers can use errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case domain.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case domain.ErrInvalidCredentials:
		return e.Code == "invalid_credentials"
	case domain.ErrInvalidResetToken:
		return e.Code == "invalid_reset_token"
	case domain.ErrNotFound:
		return e.Status == http.StatusNotFound
	case domain.ErrUserAlreadyExists:
		return e.Status == http.StatusConflict
	case domain.ErrValidation:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	case domain.ErrUpstreamUnavailable:
		return e.Status >= 500
	}
	return false
}

// Client talks to the upstream API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	http       *http.Client
	retries    int
	retryDelay time.Duration
	now        func() time.Time

	refreshes singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRetries sets how many times idempotent requests are attempted.
func WithRetries(attempts int) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.retries = attempts
		}
	}
}

// WithRetryDelay sets the base delay between retries.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

// New creates a client for the API rooted at baseURL, e.g. "https://api.example.com/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: defaultTimeout},
		retries:    defaultRetries,
		retryDelay: defaultRetryDelay,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs an unauthenticated request. body, when non-nil, is sent as
// JSON; out, when non-nil, receives the decoded JSON response.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	payload, err := encode(body)
	if err != nil {
		return err
	}
	return c.send(ctx, method, path, payload, "", out)
}

func encode(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: encode request: %w", err)
	}
	return b, nil
}

// send performs one logical request. GETs are retried on transport errors
// and 5xx responses; other methods are attempted once.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string, out any) error {
	attempts := 1
	if method == http.MethodGet {
		attempts = c.retries
	}
	return resilience.Retry(ctx, attempts, c.retryDelay, func() error {
		err := c.roundTrip(ctx, method, path, payload, token, out)
		if err == nil || retryable(ctx, err) {
			return err
		}
		return resilience.Permanent(err)
	})
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	return errors.Is(err, domain.ErrUpstreamUnavailable)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte, token string, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("apiclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		metrics.Upstream(method, 0, elapsed)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.WarnContext(ctx, "Upstream request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %s %s: %v", domain.ErrUpstreamUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	metrics.Upstream(method, resp.StatusCode, elapsed)
	slog.DebugContext(ctx, "Upstream request", "method", method, "path", path, "status", resp.StatusCode, "duration", elapsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, apiErr)
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", domain.ErrUpstreamUnavailable, method, path, err)
	}
	return nil
}
