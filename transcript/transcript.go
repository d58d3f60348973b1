// Package transcript acquires timed transcript lines for a video from one of
// several providers, falling back from captions to speech recognition.
package transcript

import (
	"context"
	"errors"
)

// Source identifies which provider produced a transcript. It is recorded once
// per run and ends up in the note's provenance metadata.
type Source string

const (
	// SourceCaptions is the caption-based provider: fast, exact timestamps,
	// may be unavailable.
	SourceCaptions Source = "captions"
	// SourceASRFallback is the speech recognition fallback: slower, always
	// available, approximate timestamps.
	SourceASRFallback Source = "asr-fallback"
)

// Line is a single timed transcript line.
type Line struct {
	// Timestamp is the offset in seconds from the start of the video.
	Timestamp float64
	// Text is the transcribed text. Never empty in provider output.
	Text string
	// Speaker is an optional diarization label. Empty when the provider does
	// not distinguish speakers.
	Speaker string
}

// Provider produces transcript lines for a video.
// Exactly one provider serves a given run.
type Provider interface {
	// Fetch returns the transcript lines for the video.
	// A provider that cannot serve this particular video but expects a later
	// provider to succeed returns an error wrapping ErrSourceUnavailable.
	Fetch(ctx context.Context, videoID string) ([]Line, error)

	// Source identifies this provider in provenance metadata.
	Source() Source
}

// ErrSourceUnavailable signals that a provider cannot serve this video and
// the next provider in the chain should be tried. Any other provider error
// is treated as fatal.
var ErrSourceUnavailable = errors.New("transcript: source unavailable")

// ErrWhisperNotInstalled indicates the whisper binary was not found.
var ErrWhisperNotInstalled = errors.New("transcript: whisper not installed (install: pip install openai-whisper)")
