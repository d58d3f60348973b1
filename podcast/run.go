package podcast

import (
	"context"
	"log/slog"
	"os"
)

// Options configures a podcast run.
type Options struct {
	// FeedURL is the feed to resolve episodes from.
	FeedURL string
	// EpisodeURL selects a specific episode. Empty means newest.
	EpisodeURL string
	// Mode restricts output to audio, markdown, or both.
	Mode Mode
	// OutputDir is where audio and notes land. Created if absent.
	OutputDir string
}

// Result reports what a run produced. Paths are empty when the mode
// excluded them.
type Result struct {
	Episode   *Episode
	AudioPath string
	NotePath  string
}

// Runner wires episode resolution, audio download, and show-notes writing
// into one mode-driven run.
type Runner struct {
	Resolver   *Resolver
	Downloader *Downloader
	Logger     *slog.Logger
}

// NewRunner creates a runner with default collaborators.
func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{
		Resolver:   NewResolver(),
		Downloader: NewDownloader(),
		Logger:     logger,
	}
}

// Run resolves the episode and produces the outputs the mode asks for.
// Failures are fatal: a podcast run has no fallback chain.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ep, err := r.Resolver.Resolve(ctx, opts.FeedURL, opts.EpisodeURL)
	if err != nil {
		return nil, err
	}
	logger.Info("resolved episode", "title", ep.Title, "published", publishedStamp(ep))

	res := &Result{Episode: ep}

	if opts.Mode == ModeBoth || opts.Mode == ModeAudio {
		path, err := r.Downloader.Download(ctx, ep, opts.OutputDir)
		if err != nil {
			return nil, err
		}
		logger.Info("downloaded audio", "path", path)
		res.AudioPath = path
	}

	if opts.Mode == ModeBoth || opts.Mode == ModeMarkdown {
		if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
			return nil, err
		}
		path, err := WriteShowNotes(ep, opts.OutputDir)
		if err != nil {
			return nil, err
		}
		logger.Info("wrote show notes", "path", path)
		res.NotePath = path
	}

	return res, nil
}
