package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	httpclient "tubenote/http"
	"tubenote/internal/retry"
)

// CaptionEntry is a single timed caption line as returned by YouTube.
type CaptionEntry struct {
	// Start is the offset in seconds from the beginning of the video.
	Start float64
	// Duration is how long the caption is displayed, in seconds.
	Duration float64
	// Text is the caption text.
	Text string
}

// CaptionClient provides direct access to YouTube's timedtext API.
// Caption fetches are fast and carry exact timestamps, but many videos have
// captions disabled or absent; those cases surface as ErrCaptionsUnavailable.
type CaptionClient struct {
	httpClient *httpclient.Client
	baseURL    string
}

// NewCaptionClient creates a new timedtext API client.
func NewCaptionClient() *CaptionClient {
	return NewCaptionClientWithRetry(retry.DefaultConfig())
}

// NewCaptionClientWithRetry creates a timedtext client with custom retry
// settings for the underlying HTTP client.
func NewCaptionClientWithRetry(retryCfg retry.Config) *CaptionClient {
	return &CaptionClient{
		httpClient: httpclient.New(&httpclient.Config{
			Timeout:     30 * time.Second,
			Retry:       retryCfg,
			UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
			RateLimiter: httpclient.DefaultRateLimiterConfig(),
		}),
		baseURL: "https://www.youtube.com/api/timedtext",
	}
}

// timedtextResponse represents the raw timedtext API response (json3 format).
type timedtextResponse struct {
	Events []timedtextEvent `json:"events"`
}

type timedtextEvent struct {
	TStartMs    int64              `json:"tStartMs"`
	DDurationMs int64              `json:"dDurationMs"`
	Segs        []timedtextSegment `json:"segs,omitempty"`
}

type timedtextSegment struct {
	UTF8 string `json:"utf8"`
}

// FetchCaptions fetches captions for a video from the timedtext API.
// It returns ErrCaptionsUnavailable (wrapped) when the video has no caption
// track in the requested language.
func (cc *CaptionClient) FetchCaptions(ctx context.Context, videoID string, langCode string) ([]CaptionEntry, error) {
	if videoID == "" {
		return nil, fmt.Errorf("video ID is required")
	}
	if langCode == "" {
		langCode = "en"
	}

	params := url.Values{}
	params.Set("v", videoID)
	params.Set("lang", langCode)
	params.Set("fmt", "json3")

	apiURL := fmt.Sprintf("%s?%s", cc.baseURL, params.Encode())

	response, err := cc.httpClient.Get(ctx, apiURL)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			switch httpErr.StatusCode {
			case 404, 403:
				// Captions disabled or the track does not exist.
				return nil, &MetadataError{Source: "timedtext", VideoID: videoID, Err: ErrCaptionsUnavailable}
			}
		}
		return nil, &MetadataError{Source: "timedtext", VideoID: videoID,
			Err: fmt.Errorf("timedtext request failed: %w", err)}
	}

	entries, err := parseTimedtext(response.Body)
	if err != nil {
		return nil, &MetadataError{Source: "timedtext", VideoID: videoID,
			Err: fmt.Errorf("parse timedtext response: %w", err)}
	}

	// An empty body or event list means no usable caption track. The endpoint
	// answers 200 with an empty document for videos without captions.
	if len(entries) == 0 {
		return nil, &MetadataError{Source: "timedtext", VideoID: videoID, Err: ErrCaptionsUnavailable}
	}

	return entries, nil
}

// parseTimedtext parses the timedtext json3 response into caption entries.
// Events without text segments (styling windows) are skipped, as are entries
// whose combined text is empty.
func parseTimedtext(data []byte) ([]CaptionEntry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var resp timedtextResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal timedtext JSON: %w", err)
	}

	var entries []CaptionEntry
	for _, event := range resp.Events {
		if len(event.Segs) == 0 {
			continue
		}

		var text strings.Builder
		for _, seg := range event.Segs {
			text.WriteString(seg.UTF8)
		}

		cleaned := strings.TrimSpace(text.String())
		if cleaned == "" {
			continue
		}

		entries = append(entries, CaptionEntry{
			Start:    float64(event.TStartMs) / 1000.0,
			Duration: float64(event.DDurationMs) / 1000.0,
			Text:     cleaned,
		})
	}

	return entries, nil
}

// Close closes the caption client and releases resources.
func (cc *CaptionClient) Close() error {
	if cc.httpClient != nil {
		return cc.httpClient.Close()
	}
	return nil
}
