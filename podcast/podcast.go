// Package podcast resolves episodes from RSS/Atom feeds, downloads their
// audio, and renders show-notes markdown.
package podcast

import (
	"errors"
	"fmt"
)

var (
	// ErrNoEpisodes indicates the feed parsed but contains no items.
	ErrNoEpisodes = errors.New("podcast: feed contains no episodes")

	// ErrEpisodeNotFound indicates no feed item matched the requested
	// episode URL.
	ErrEpisodeNotFound = errors.New("podcast: episode not found in feed")

	// ErrNoEnclosure indicates the resolved episode carries no audio
	// enclosure.
	ErrNoEnclosure = errors.New("podcast: episode has no audio enclosure")

	// ErrYtdlpNotInstalled indicates the yt-dlp binary is missing.
	// Install it with: pip install yt-dlp (or see https://github.com/yt-dlp/yt-dlp)
	ErrYtdlpNotInstalled = errors.New("podcast: yt-dlp not found in PATH (install with: pip install yt-dlp)")
)

// Mode restricts what a podcast run produces.
type Mode string

const (
	// ModeBoth downloads the audio and writes show notes.
	ModeBoth Mode = "both"
	// ModeAudio downloads the audio only.
	ModeAudio Mode = "audio"
	// ModeMarkdown writes show notes only.
	ModeMarkdown Mode = "md"
)

// ParseMode validates a --mode flag value.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeBoth, ModeAudio, ModeMarkdown:
		return Mode(s), nil
	}
	return "", fmt.Errorf("podcast: invalid mode %q (want both, audio, or md)", s)
}
