package youtube

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AudioFetchError indicates the audio download for the speech recognition
// fallback failed. There is no further fallback behind it, so callers treat
// this as fatal.
type AudioFetchError struct {
	// VideoID is the video whose audio could not be fetched.
	VideoID string
	// Err is the underlying error.
	Err error
}

func (e *AudioFetchError) Error() string {
	return "youtube: audio fetch " + e.VideoID + ": " + e.Err.Error()
}

func (e *AudioFetchError) Unwrap() error { return e.Err }

// AudioDownloader downloads a video's audio track to a scoped temporary
// directory using yt-dlp.
type AudioDownloader struct {
	// YtdlpPath is the path to the yt-dlp executable. Defaults to "yt-dlp".
	YtdlpPath string
	// Timeout is the maximum duration for the download. Defaults to 15 minutes.
	Timeout time.Duration
	// AudioQuality is the MP3 bitrate in kbps. Defaults to 192.
	AudioQuality int
}

// NewAudioDownloader creates a downloader with default settings.
func NewAudioDownloader() *AudioDownloader {
	return &AudioDownloader{
		YtdlpPath:    "yt-dlp",
		Timeout:      15 * time.Minute,
		AudioQuality: 192,
	}
}

// DownloadScoped downloads the audio track into a fresh temporary directory
// and returns the audio path together with a cleanup function. The cleanup
// removes the whole directory and must be called on every exit path,
// including failures after this call returns.
func (d *AudioDownloader) DownloadScoped(ctx context.Context, videoID string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "tubenote-audio-"+uuid.NewString()[:8]+"-*")
	if err != nil {
		return "", nil, &AudioFetchError{VideoID: videoID, Err: fmt.Errorf("create temp dir: %w", err)}
	}
	cleanup := func() { os.RemoveAll(dir) }

	path, err := d.download(ctx, videoID, dir)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

func (d *AudioDownloader) download(ctx context.Context, videoID string, destDir string) (string, error) {
	if err := d.checkInstalled(ctx); err != nil {
		return "", err
	}

	quality := d.AudioQuality
	if quality <= 0 {
		quality = 192
	}

	args := []string{
		"-o", filepath.Join(destDir, "%(id)s.%(ext)s"),
		"--no-warnings",
		"--no-playlist",
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", "mp3",
		"--audio-quality", fmt.Sprintf("%d", quality),
		"--print", "after_move:filepath",
		videoID,
	}

	timeout := d.Timeout
	if timeout == 0 {
		timeout = 15 * time.Minute
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, d.path(), args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg != "" {
			return "", &AudioFetchError{VideoID: videoID, Err: fmt.Errorf("yt-dlp: %w: %s", err, errMsg)}
		}
		return "", &AudioFetchError{VideoID: videoID, Err: fmt.Errorf("yt-dlp: %w", err)}
	}

	// yt-dlp prints the final path after post-processing; the last non-empty
	// line is the one we want.
	path := lastNonEmptyLine(stdout.String())
	if path == "" {
		path = filepath.Join(destDir, videoID+".mp3")
	}
	if _, err := os.Stat(path); err != nil {
		return "", &AudioFetchError{VideoID: videoID, Err: fmt.Errorf("audio file missing after download: %w", err)}
	}
	return path, nil
}

// checkInstalled verifies that yt-dlp is available.
func (d *AudioDownloader) checkInstalled(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, d.path(), "--version")
	if err := cmd.Run(); err != nil {
		return ErrYtdlpNotInstalled
	}
	return nil
}

func (d *AudioDownloader) path() string {
	if d.YtdlpPath != "" {
		return d.YtdlpPath
	}
	return "yt-dlp"
}

func lastNonEmptyLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
