package tubenote

import (
	"tubenote/internal/retry"
	"tubenote/note"
	"tubenote/transcript"
	"tubenote/youtube"
)

// Error handling types exported for library users.
//
// All error types support the standard error handling patterns:
//
// Using errors.Is() for sentinel errors:
//
//	if errors.Is(err, tubenote.ErrCaptionsUnavailable) {
//		fmt.Println("No captions for this video")
//	}
//
// Using errors.As() for wrapped errors:
//
//	var wErr *tubenote.WriteError
//	if errors.As(err, &wErr) {
//		fmt.Printf("Writing %s failed: %v\n", wErr.Path, wErr.Err)
//	}

// Type aliases for convenient error handling.
type (
	// MetadataError wraps errors during metadata or caption retrieval.
	MetadataError = youtube.MetadataError
	// AudioFetchError wraps a failed audio download. Fatal: there is no
	// fallback behind the speech recognition path.
	AudioFetchError = youtube.AudioFetchError
	// WriteError wraps a failed note write.
	WriteError = note.WriteError
	// RetryableError wraps errors that occurred after retries were exhausted.
	RetryableError = retry.RetryableError
)

// Sentinel errors exported from sub-packages.
var (
	// ErrInvalidURL indicates the provided URL is not a recognizable video URL.
	ErrInvalidURL = youtube.ErrInvalidURL
	// ErrVideoNotFound indicates the video does not exist or is unavailable.
	ErrVideoNotFound = youtube.ErrVideoNotFound
	// ErrRateLimited indicates the operation was rate limited.
	ErrRateLimited = youtube.ErrRateLimited
	// ErrYtdlpNotInstalled indicates the yt-dlp binary was not found.
	ErrYtdlpNotInstalled = youtube.ErrYtdlpNotInstalled
	// ErrCaptionsUnavailable indicates the video has no usable caption track.
	// The pipeline recovers from this by falling back to speech recognition.
	ErrCaptionsUnavailable = youtube.ErrCaptionsUnavailable
	// ErrWhisperNotInstalled indicates the whisper binary was not found.
	ErrWhisperNotInstalled = transcript.ErrWhisperNotInstalled
	// ErrSourceUnavailable indicates a transcript provider could not serve
	// the video and the selector should try the next one.
	ErrSourceUnavailable = transcript.ErrSourceUnavailable
)

// IsRetryable determines if an error should be retried.
// It returns false for permanent errors like ErrInvalidURL.
func IsRetryable(err error) bool {
	return retry.IsRetryable(err)
}
