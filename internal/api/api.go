// Package api is the small HTTP client shared by the market and news data
// sources.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"deepsent/internal/logger"
)

// Client is an HTTP client with default headers, an optional base URL and
// retry support.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
	useLogging bool
}

// ClientOption configures the API client
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithBaseURL sets the base URL prefixed to relative request URLs
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHeaders sets default headers for all requests
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogging enables debug logging of requests and responses
func WithLogging(enabled bool) ClientOption {
	return func(c *Client) {
		c.useLogging = enabled
	}
}

func NewClient(opts ...ClientOption) *Client {
	client := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		headers:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// StatusError is returned for responses with a status code >= 400.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 300 {
		body = body[:300] + "..."
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, body)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// Get fetches rawURL with query appended. Relative URLs are resolved against
// the base URL.
func (c *Client) Get(ctx context.Context, rawURL string, query url.Values) (*Response, error) {
	target := rawURL
	if c.baseURL != "" && !isAbsolute(rawURL) {
		target = c.baseURL + rawURL
	}
	if len(query) > 0 {
		u, err := url.Parse(target)
		if err != nil {
			return nil, fmt.Errorf("invalid url %q: %w", target, err)
		}
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
		target = u.String()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if c.useLogging {
		logger.Debug(ctx, "HTTP Response",
			"url", redact(target),
			"status", resp.StatusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", len(body),
		)
	}

	if resp.StatusCode >= 400 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return &Response{StatusCode: resp.StatusCode, Body: body, Headers: resp.Header}, nil
}

// GetJSON fetches rawURL and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, query url.Values, v any) error {
	resp, err := c.GetWithRetry(ctx, rawURL, query, nil)
	if err != nil {
		return err
	}
	return resp.ParseJSON(v)
}

// RetryConfig configures retry behavior
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
}

// DefaultRetryConfig returns default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Second,
		MaxWait:     5 * time.Second,
	}
}

// GetWithRetry is Get retried on network errors, 429 and 5xx with doubling
// waits. Other client errors are returned at once.
func (c *Client) GetWithRetry(ctx context.Context, rawURL string, query url.Values, config *RetryConfig) (*Response, error) {
	if config == nil {
		config = DefaultRetryConfig()
	}

	var lastErr error
	wait := config.InitialWait
	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		resp, err := c.Get(ctx, rawURL, query)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var se *StatusError
		if errors.As(err, &se) && !se.Retryable() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, err
		}
		if attempt == config.MaxAttempts {
			break
		}

		if c.useLogging {
			logger.Warn(ctx, "Request failed, retrying", "attempt", attempt, "error", err.Error(), "wait", wait.String())
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
		if wait > config.MaxWait {
			wait = config.MaxWait
		}
	}

	return nil, fmt.Errorf("all %d retry attempts failed: %w", config.MaxAttempts, lastErr)
}

// ParseJSON parses the response body as JSON into v
func (r *Response) ParseJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}
	return nil
}

// BrowserHeaders mimic a desktop browser for HTML pages
func BrowserHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Accept":          "text/html,application/json;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
	}
}

// YahooFinanceHeaders returns headers for the Yahoo Finance chart API
func YahooFinanceHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Accept":          "application/json",
		"Accept-Language": "en-US,en;q=0.9",
		"Referer":         "https://finance.yahoo.com/",
	}
}

func isAbsolute(rawURL string) bool {
	u, err := url.Parse(rawURL)
	return err == nil && u.IsAbs()
}

// redact hides API keys in logged URLs.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	for _, k := range []string{"apikey", "api_key", "token"} {
		if q.Has(k) {
			q.Set(k, "REDACTED")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
