package http

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter manages per-domain request rate limiting using a token bucket.
// YouTube's caption endpoints tolerate only a couple of requests per second
// before responding with 429s, so every outgoing request waits here first.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	config   RateLimiterConfig
}

// RateLimiterConfig defines rate limiting behavior.
type RateLimiterConfig struct {
	// DefaultRPS is the requests-per-second applied to any domain without a
	// custom rate. 0 means unlimited.
	DefaultRPS float64
	// Burst is the token bucket burst size (default 1).
	Burst int
	// CustomRates maps domains to RPS values.
	CustomRates map[string]float64
}

// DefaultRateLimiterConfig returns defaults aligned with YouTube's limits.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		DefaultRPS: 2.5,
		Burst:      2,
		CustomRates: map[string]float64{
			"www.youtube.com": 2.0,
		},
	}
}

// NewRateLimiter creates a new rate limiter with the given configuration.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.CustomRates == nil {
		cfg.CustomRates = make(map[string]float64)
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		config:   cfg,
	}
}

// Wait blocks until the rate limit allows a request for the given URL.
// Returns an error if the context is canceled or its deadline is exceeded.
func (rl *RateLimiter) Wait(ctx context.Context, urlStr string) error {
	if rl == nil {
		return nil
	}

	limiter := rl.getLimiter(extractDomain(urlStr))
	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}

// getLimiter returns the limiter for a domain, creating it on first use.
func (rl *RateLimiter) getLimiter(domain string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if l, ok := rl.limiters[domain]; ok {
		return l
	}

	rps := rl.config.DefaultRPS
	if custom, ok := rl.config.CustomRates[domain]; ok {
		rps = custom
	}
	if rps <= 0 {
		return nil
	}

	l := rate.NewLimiter(rate.Limit(rps), rl.config.Burst)
	rl.limiters[domain] = l
	return l
}

// extractDomain returns the host portion of a URL, or the input itself when
// it does not parse as a URL.
func extractDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return urlStr
	}
	return u.Host
}
