package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"tubenote/internal/retry"
)

func fastRetry() retry.Config {
	return retry.Config{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func newTestClient() *Client {
	cfg := DefaultConfig()
	cfg.Retry = fastRetry()
	cfg.RateLimiter = RateLimiterConfig{DefaultRPS: 0} // unlimited in tests
	return New(cfg)
}

func TestGet_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newTestClient()
	defer c.Close()

	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if string(resp.Body) != `{"ok":true}` {
		t.Errorf("body = %q", resp.Body)
	}
}

func TestGet_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := newTestClient()
	defer c.Close()

	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("server saw %d calls, want 3", n)
	}
}

func TestGet_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient()
	defer c.Close()

	_, err := c.Get(context.Background(), srv.URL)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error = %v, want *HTTPError", err)
	}
	if httpErr.StatusCode != 404 {
		t.Errorf("status = %d, want 404", httpErr.StatusCode)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("server saw %d calls, want 1", n)
	}
}

func TestGet_RateLimitedSurfacesRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient()
	defer c.Close()

	_, err := c.Get(context.Background(), srv.URL)
	var rlErr *RateLimitError
	if !errors.As(err, &rlErr) {
		t.Fatalf("error = %v, want *RateLimitError", err)
	}
	if rlErr.RetryAfter != 7*time.Second {
		t.Errorf("RetryAfter = %v, want 7s", rlErr.RetryAfter)
	}
}

func TestRateLimiter_WaitHonorsContext(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{DefaultRPS: 0.001, Burst: 1})

	// First request consumes the only token.
	if err := rl.Wait(context.Background(), "https://www.example.com/a"); err != nil {
		t.Fatalf("first Wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := rl.Wait(ctx, "https://www.example.com/b")
	if err == nil {
		t.Fatal("second Wait should fail when context expires before a token is available")
	}
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.youtube.com/api/timedtext?v=x", "www.youtube.com"},
		{"http://example.com", "example.com"},
		{"not a url", "not a url"},
	}
	for _, tt := range tests {
		if got := extractDomain(tt.in); got != tt.want {
			t.Errorf("extractDomain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
