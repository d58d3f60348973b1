// Package youtube provides video metadata, caption, and audio extraction.
package youtube

import "errors"

// Sentinel errors for video operations.
var (
	ErrInvalidURL          = errors.New("youtube: invalid URL")
	ErrVideoNotFound       = errors.New("youtube: video not found")
	ErrRateLimited         = errors.New("youtube: rate limited")
	ErrYtdlpNotInstalled   = errors.New("youtube: yt-dlp not installed (install: https://github.com/yt-dlp/yt-dlp)")
	ErrCaptionsUnavailable = errors.New("youtube: captions unavailable")
)

// MetadataError wraps errors during metadata or caption fetching with context
// about what failed. Use errors.As() to extract operation details:
//
//	var metaErr *youtube.MetadataError
//	if errors.As(err, &metaErr) {
//		fmt.Printf("Fetching %s failed: %v\n", metaErr.VideoID, metaErr.Err)
//	}
type MetadataError struct {
	// Source indicates which fetcher produced the error ("ytdlp", "timedtext", "api").
	Source string
	// VideoID is the video that was being fetched.
	VideoID string
	// Err is the underlying error that occurred.
	Err error
}

// Error returns a string representation of the fetch error.
func (e *MetadataError) Error() string {
	return "youtube: " + e.Source + " fetch " + e.VideoID + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *MetadataError) Unwrap() error { return e.Err }
