package podcast

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Downloader fetches episode audio with yt-dlp, which follows the redirect
// chains and container shuffling podcast CDNs are fond of.
type Downloader struct {
	// YtdlpPath is the path to the yt-dlp executable. Defaults to "yt-dlp".
	YtdlpPath string
	// Timeout is the maximum duration for the download. Defaults to 30 minutes.
	Timeout time.Duration
}

// NewDownloader creates a downloader with default settings.
func NewDownloader() *Downloader {
	return &Downloader{
		YtdlpPath: "yt-dlp",
		Timeout:   30 * time.Minute,
	}
}

// Download fetches the episode's enclosure into destDir and returns the
// final audio path. destDir is created if absent.
func (d *Downloader) Download(ctx context.Context, ep *Episode, destDir string) (string, error) {
	if ep.EnclosureURL == "" {
		return "", ErrNoEnclosure
	}
	if err := d.checkInstalled(ctx); err != nil {
		return "", err
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("podcast: create output dir %s: %w", destDir, err)
	}

	args := []string{
		"-o", filepath.Join(destDir, audioStem(ep)+".%(ext)s"),
		"--no-warnings",
		"--no-playlist",
		"--print", "after_move:filepath",
		ep.EnclosureURL,
	}

	timeout := d.Timeout
	if timeout == 0 {
		timeout = 30 * time.Minute
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
			return "", fmt.Errorf("podcast: download %s: %w: %s", ep.EnclosureURL, err, errMsg)
		}
		return "", fmt.Errorf("podcast: download %s: %w", ep.EnclosureURL, err)
	}

	path := lastNonEmptyLine(stdout.String())
	if path == "" {
		return "", fmt.Errorf("podcast: yt-dlp reported no output file for %s", ep.EnclosureURL)
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("podcast: audio file missing after download: %w", err)
	}
	return path, nil
}

// checkInstalled verifies that yt-dlp is available.
func (d *Downloader) checkInstalled(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, d.path(), "--version")
	if err := cmd.Run(); err != nil {
		return ErrYtdlpNotInstalled
	}
	return nil
}

func (d *Downloader) path() string {
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
