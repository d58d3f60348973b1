package transcript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Selector tries an ordered list of providers and returns the result of the
// first one that serves the video. A provider signaling ErrSourceUnavailable
// advances the chain; any other error stops the run.
type Selector struct {
	// Providers is the ordered fallback chain. Must be non-empty.
	Providers []Provider
	// Logger records fallback decisions. Defaults to slog.Default().
	Logger *slog.Logger
}

// Result carries the transcript lines together with the source that produced
// them, recorded exactly once per run.
type Result struct {
	Source Source
	Lines  []Line
}

// Select runs the provider chain. The error from the last provider is final
// even if it wraps ErrSourceUnavailable, since there is nothing left to
// fall back to.
func (s *Selector) Select(ctx context.Context, videoID string) (*Result, error) {
	if len(s.Providers) == 0 {
		return nil, fmt.Errorf("transcript: no providers configured")
	}

	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	for i, p := range s.Providers {
		lines, err := p.Fetch(ctx, videoID)
		if err == nil {
			return &Result{Source: p.Source(), Lines: lines}, nil
		}

		last := i == len(s.Providers)-1
		if !last && errors.Is(err, ErrSourceUnavailable) {
			logger.Info("transcript source unavailable, falling back",
				"video", videoID,
				"source", string(p.Source()),
				"next", string(s.Providers[i+1].Source()),
				"reason", err.Error(),
			)
			continue
		}
		return nil, fmt.Errorf("transcript source %s: %w", p.Source(), err)
	}

	// Unreachable: the last provider either returned or errored above.
	return nil, fmt.Errorf("transcript: no provider served %s", videoID)
}
