package transcript

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tubenote/youtube"
)

// CaptionFetcher is the part of the caption client this provider needs.
type CaptionFetcher interface {
	FetchCaptions(ctx context.Context, videoID string, langCode string) ([]youtube.CaptionEntry, error)
}

// AvailabilityChecker optionally answers whether a video has caption tracks.
// When configured it saves a doomed timedtext round trip.
type AvailabilityChecker interface {
	HasCaptions(ctx context.Context, videoID string) (bool, error)
}

// CaptionProvider serves transcripts from YouTube's caption tracks.
type CaptionProvider struct {
	// Client fetches the caption track. Required.
	Client CaptionFetcher
	// Checker is an optional Data API availability pre-check. A checker
	// error never fails the provider; the fetch is attempted anyway.
	Checker AvailabilityChecker
	// Language is the caption language code. Defaults to "en".
	Language string
}

// Source returns SourceCaptions.
func (p *CaptionProvider) Source() Source { return SourceCaptions }

// Fetch returns caption lines for the video, or ErrSourceUnavailable (wrapped)
// when the video has no usable caption track.
func (p *CaptionProvider) Fetch(ctx context.Context, videoID string) ([]Line, error) {
	if p.Checker != nil {
		has, err := p.Checker.HasCaptions(ctx, videoID)
		if err == nil && !has {
			return nil, fmt.Errorf("%w: no caption track listed for %s", ErrSourceUnavailable, videoID)
		}
		// Checker errors are advisory only.
	}

	entries, err := p.Client.FetchCaptions(ctx, videoID, p.Language)
	if err != nil {
		if errors.Is(err, youtube.ErrCaptionsUnavailable) {
			return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
		return nil, fmt.Errorf("fetch captions: %w", err)
	}

	lines := make([]Line, 0, len(entries))
	for _, e := range entries {
		text := strings.TrimSpace(e.Text)
		if text == "" {
			continue
		}
		ts := e.Start
		if ts < 0 {
			ts = 0
		}
		lines = append(lines, Line{Timestamp: ts, Text: text})
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: caption track empty for %s", ErrSourceUnavailable, videoID)
	}
	return lines, nil
}
