package youtube

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"
)

// CaptionChecker answers whether a video has any caption track at all, using
// the YouTube Data API v3. It is an optional pre-check: when an API key is
// configured, the pipeline can skip a caption fetch that would certainly fail
// and go straight to the speech recognition fallback.
type CaptionChecker struct {
	service *youtubeapi.Service
}

// NewCaptionChecker creates a Data API backed caption checker.
func NewCaptionChecker(ctx context.Context, apiKey string) (*CaptionChecker, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}

	service, err := youtubeapi.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &CaptionChecker{service: service}, nil
}

// HasCaptions reports whether the video has at least one caption track.
// ASR-only tracks (trackKind "asr") still count: the timedtext endpoint can
// serve auto-generated captions.
func (c *CaptionChecker) HasCaptions(ctx context.Context, videoID string) (bool, error) {
	resp, err := c.service.Captions.List([]string{"snippet"}, videoID).Context(ctx).Do()
	if err != nil {
		// Quota and permission failures should not decide the pipeline's
		// transcript source; callers treat an error as "unknown" and attempt
		// the fetch anyway.
		if strings.Contains(err.Error(), "quota") {
			return false, &MetadataError{Source: "api", VideoID: videoID, Err: ErrRateLimited}
		}
		return false, &MetadataError{Source: "api", VideoID: videoID, Err: err}
	}

	return len(resp.Items) > 0, nil
}
