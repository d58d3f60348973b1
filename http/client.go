// Package http provides HTTP client infrastructure for caption fetching
// with built-in retry logic, rate limiting, and error handling.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"tubenote/internal/retry"
)

// Client wraps an HTTP client with retry logic and rate limit handling.
type Client struct {
	base        *http.Client
	config      *Config
	rateLimiter *RateLimiter
}

// Config holds HTTP client configuration.
type Config struct {
	// Timeout for individual HTTP requests
	Timeout time.Duration

	// Retry configuration
	Retry retry.Config

	// UserAgent for HTTP requests
	UserAgent string

	// RateLimiter configuration
	RateLimiter RateLimiterConfig
}

// DefaultConfig returns sensible defaults for HTTP client configuration.
func DefaultConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		Retry:       retry.DefaultConfig(),
		UserAgent:   "tubenote/1.0",
		RateLimiter: DefaultRateLimiterConfig(),
	}
}

// New creates a new HTTP client with the given configuration.
func New(cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	base := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}

	return &Client{
		base:        base,
		config:      cfg,
		rateLimiter: NewRateLimiter(cfg.RateLimiter),
	}
}

// Response represents an HTTP response with status code and body.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Get performs a GET request with retry logic.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, url, nil, nil)
}

// Do performs an HTTP request with retry logic and rate limit handling.
// It automatically retries transient failures and honors Retry-After.
func (c *Client) Do(ctx context.Context, method, urlStr string, body io.Reader, headers map[string]string) (*Response, error) {
	if err := c.rateLimiter.Wait(ctx, urlStr); err != nil {
		return nil, err
	}

	var lastResp *http.Response

	err := retry.Do(ctx, c.config.Retry, c.isRetryableHTTPError, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, method, urlStr, body)
		if err != nil {
			return err
		}

		if req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", c.config.UserAgent)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.base.Do(req)
		if err != nil {
			return fmt.Errorf("http request failed: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode == http.StatusServiceUnavailable {
			defer resp.Body.Close()
			return &RateLimitError{
				StatusCode: resp.StatusCode,
				RetryAfter: parseRetryAfter(resp.Header),
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			defer resp.Body.Close()
			bodyBytes, _ := io.ReadAll(resp.Body)
			return &HTTPError{
				StatusCode: resp.StatusCode,
				Body:       bodyBytes,
			}
		}

		lastResp = resp
		return nil
	})

	if err != nil {
		if lastResp != nil {
			lastResp.Body.Close()
		}
		return nil, err
	}

	if lastResp == nil {
		return nil, ErrNoResponse
	}

	defer lastResp.Body.Close()
	respBody, err := io.ReadAll(lastResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &Response{
		StatusCode: lastResp.StatusCode,
		Header:     lastResp.Header,
		Body:       respBody,
	}, nil
}

// isRetryableHTTPError determines if an HTTP error is retryable.
func (c *Client) isRetryableHTTPError(err error) bool {
	if !retry.IsRetryable(err) {
		return false
	}

	if _, ok := err.(*RateLimitError); ok {
		return true
	}

	// 4xx responses are permanent; 5xx are worth another try.
	if httpErr, ok := err.(*HTTPError); ok {
		return httpErr.StatusCode >= 500
	}

	return true
}

// parseRetryAfter extracts the Retry-After header value.
// Returns zero if the header is absent or unparseable.
func parseRetryAfter(header http.Header) time.Duration {
	retryAfter := header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(retryAfter); err == nil {
		return time.Until(t)
	}
	return 0
}

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	if c.base != nil {
		c.base.CloseIdleConnections()
	}
	return nil
}
