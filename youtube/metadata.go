package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"

	"tubenote/internal/retry"
)

// Chapter is a labeled time range within a video, declared by the author in
// the video metadata. Start is in seconds from the beginning of the video.
type Chapter struct {
	Start float64 `json:"start"`
	Title string  `json:"title"`
}

// VideoMetadata contains essential metadata about a YouTube video.
// This is fetched using yt-dlp and is immutable once returned.
type VideoMetadata struct {
	// ID is the YouTube video ID (e.g., "dQw4w9WgXcQ").
	ID string `json:"id"`
	// Title is the video title.
	Title string `json:"title"`
	// Description is the full video description.
	Description string `json:"description"`
	// Duration is the video length in seconds.
	Duration int `json:"duration"`
	// Chapters are the author-declared chapters, sorted by start time.
	// May be empty; many videos declare none.
	Chapters []Chapter `json:"chapters"`
	// Uploader is the channel name/display name.
	Uploader string `json:"uploader"`
	// UploadDate is when the video was uploaded in YYYYMMDD format.
	UploadDate string `json:"upload_date"`
	// FetchedAt is the timestamp when this metadata was retrieved.
	FetchedAt time.Time `json:"fetched_at"`
}

// ytdlpVideo represents the subset of yt-dlp's -J output we consume.
type ytdlpVideo struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Duration    float64        `json:"duration"`
	Uploader    string         `json:"uploader"`
	UploadDate  string         `json:"upload_date"`
	Chapters    []ytdlpChapter `json:"chapters"`
}

type ytdlpChapter struct {
	StartTime float64 `json:"start_time"`
	Title     string  `json:"title"`
}

// MetadataFetcher retrieves video metadata using yt-dlp as a subprocess.
type MetadataFetcher struct {
	// YtdlpPath is the path to the yt-dlp executable. Defaults to "yt-dlp".
	YtdlpPath string
	// Timeout is the maximum time to wait for yt-dlp. Defaults to 5 minutes.
	Timeout time.Duration
	// Retry controls retries for transient failures (rate limits, flaky
	// network). Missing videos and missing binaries are never retried.
	Retry retry.Config
}

// NewMetadataFetcher creates a fetcher with default settings.
func NewMetadataFetcher() *MetadataFetcher {
	return &MetadataFetcher{
		YtdlpPath: "yt-dlp",
		Timeout:   5 * time.Minute,
		Retry:     retry.DefaultConfig(),
	}
}

// Fetch retrieves metadata for a video, including its chapter list.
// It executes yt-dlp with JSON output and parses the result, retrying
// transient failures with backoff.
func (f *MetadataFetcher) Fetch(ctx context.Context, videoID string) (*VideoMetadata, error) {
	if err := f.checkInstalled(ctx); err != nil {
		return nil, err
	}

	var meta *VideoMetadata
	err := retry.Do(ctx, f.Retry, metadataRetryable, func(ctx context.Context) error {
		var fetchErr error
		meta, fetchErr = f.fetchOnce(ctx, videoID)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// metadataRetryable classifies fetch errors. Missing videos and missing
// binaries are permanent.
func metadataRetryable(err error) bool {
	if errors.Is(err, ErrVideoNotFound) || errors.Is(err, ErrYtdlpNotInstalled) {
		return false
	}
	return retry.IsRetryable(err)
}

func (f *MetadataFetcher) fetchOnce(ctx context.Context, videoID string) (*VideoMetadata, error) {

	timeout := f.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, f.path(), "-J", "--no-playlist", "--no-warnings", videoID)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errMsg := stderr.String()
		if strings.Contains(errMsg, "not available") || strings.Contains(errMsg, "does not exist") {
			return nil, &MetadataError{Source: "ytdlp", VideoID: videoID, Err: ErrVideoNotFound}
		}
		if strings.Contains(errMsg, "429") || strings.Contains(errMsg, "rate") {
			return nil, &MetadataError{Source: "ytdlp", VideoID: videoID, Err: ErrRateLimited}
		}
		return nil, &MetadataError{Source: "ytdlp", VideoID: videoID,
			Err: fmt.Errorf("yt-dlp failed: %w: %s", err, errMsg)}
	}

	meta, err := parseMetadata(stdout.Bytes())
	if err != nil {
		return nil, &MetadataError{Source: "ytdlp", VideoID: videoID, Err: err}
	}
	return meta, nil
}

// checkInstalled verifies that yt-dlp is available.
func (f *MetadataFetcher) checkInstalled(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, f.path(), "--version")
	if err := cmd.Run(); err != nil {
		return ErrYtdlpNotInstalled
	}
	return nil
}

func (f *MetadataFetcher) path() string {
	if f.YtdlpPath != "" {
		return f.YtdlpPath
	}
	return "yt-dlp"
}

// parseMetadata decodes yt-dlp JSON output into a VideoMetadata.
// Chapters are sorted by start time; declaration order is preserved for
// chapters sharing the same start so that the later-declared one wins
// downstream assignment.
func parseMetadata(data []byte) (*VideoMetadata, error) {
	var raw ytdlpVideo
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse metadata JSON: %w", err)
	}
	if raw.ID == "" || raw.Title == "" {
		return nil, fmt.Errorf("invalid metadata: missing id or title")
	}

	meta := &VideoMetadata{
		ID:          raw.ID,
		Title:       raw.Title,
		Description: raw.Description,
		Duration:    int(raw.Duration),
		Uploader:    raw.Uploader,
		UploadDate:  raw.UploadDate,
		FetchedAt:   time.Now().UTC(),
	}

	if len(raw.Chapters) > 0 {
		chapters := make([]Chapter, 0, len(raw.Chapters))
		for _, c := range raw.Chapters {
			title := c.Title
			if title == "" {
				title = "Chapter"
			}
			if c.StartTime < 0 {
				c.StartTime = 0
			}
			chapters = append(chapters, Chapter{Start: c.StartTime, Title: title})
		}
		sort.SliceStable(chapters, func(i, j int) bool {
			return chapters[i].Start < chapters[j].Start
		})
		meta.Chapters = chapters
	}

	return meta, nil
}
