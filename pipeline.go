package tubenote

import (
	"context"
	"log/slog"

	"tubenote/config"
	"tubenote/internal/retry"
	"tubenote/note"
	"tubenote/transcript"
	"tubenote/youtube"
)

// MetadataFetcher retrieves video metadata and chapters.
type MetadataFetcher interface {
	Fetch(ctx context.Context, videoID string) (*youtube.VideoMetadata, error)
}

// TranscriptSelector produces exactly one transcript per run, recording
// which source served it.
type TranscriptSelector interface {
	Select(ctx context.Context, videoID string) (*transcript.Result, error)
}

// NoteWriter persists the final note and returns its path.
type NoteWriter interface {
	Write(n *note.Note, body string, prov note.Provenance) (string, error)
}

// Pipeline turns one video URL into one Obsidian note. Control flow is
// strictly linear: metadata, transcript, segmentation, rendering, an
// optional restructuring pass, then the write.
type Pipeline struct {
	// Metadata fetches title, description, and chapters.
	Metadata MetadataFetcher
	// Transcripts runs the captions-then-ASR fallback chain.
	Transcripts TranscriptSelector
	// Restyler optionally reformats the draft. Nil disables restructuring.
	Restyler note.Restyler
	// Writer persists the note.
	Writer NoteWriter
	// Logger records stage decisions. Defaults to slog.Default().
	Logger *slog.Logger
}

// Options configures a single run.
type Options struct {
	// URL is the video URL or bare video ID.
	URL string
	// PromptPath is the restructuring prompt file. A missing file disables
	// the restructuring pass for the run.
	PromptPath string
}

// Result reports what a run produced.
type Result struct {
	// NotePath is the written markdown file.
	NotePath string
	// Title is the video title.
	Title string
	// Source is the transcript source that served the run.
	Source transcript.Source
	// RestyleModel names the restructuring model used, or "none".
	RestyleModel string
}

// Run executes the pipeline for one video.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	videoID, err := youtube.ExtractVideoID(opts.URL)
	if err != nil {
		return nil, err
	}

	meta, err := p.Metadata.Fetch(ctx, videoID)
	if err != nil {
		return nil, err
	}
	logger.Info("fetched metadata", "video", videoID, "title", meta.Title, "chapters", len(meta.Chapters))

	tr, err := p.Transcripts.Select(ctx, videoID)
	if err != nil {
		return nil, err
	}
	logger.Info("transcript acquired", "video", videoID, "source", tr.Source, "lines", len(tr.Lines))

	sections := note.Segment(meta, tr.Lines)
	draft := note.Render(meta.Title, sections)

	body, model := note.Restructure(ctx, logger, p.Restyler, draft, opts.PromptPath)

	path, err := p.Writer.Write(draft, body, note.Provenance{
		TranscriptionMethod: tr.Source,
		RestructureModel:    model,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("note written", "path", path, "source", tr.Source, "restyle_model", model)

	return &Result{
		NotePath:     path,
		Title:        meta.Title,
		Source:       tr.Source,
		RestyleModel: model,
	}, nil
}

// NewPipeline wires the real collaborators from configuration. With forceASR
// set the caption provider is left out of the chain entirely, so the run is
// served by speech recognition even when captions exist.
func NewPipeline(ctx context.Context, cfg *config.Config, vault string, outDir string, forceASR bool, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	retryCfg := retry.DefaultConfig()
	if cfg.MaxRetries > 0 {
		retryCfg.MaxRetries = cfg.MaxRetries
	}
	if cfg.InitialBackoff > 0 {
		retryCfg.InitialBackoff = cfg.InitialBackoff
	}
	if cfg.MaxBackoff > 0 {
		retryCfg.MaxBackoff = cfg.MaxBackoff
	}

	fetcher := youtube.NewMetadataFetcher()
	fetcher.YtdlpPath = cfg.YtdlpPath
	fetcher.Retry = retryCfg
	if cfg.YtdlpTimeout > 0 {
		fetcher.Timeout = cfg.YtdlpTimeout
	}

	audio := youtube.NewAudioDownloader()
	audio.YtdlpPath = cfg.YtdlpPath

	var providers []transcript.Provider
	if !forceASR {
		captions := &transcript.CaptionProvider{Client: youtube.NewCaptionClientWithRetry(retryCfg)}
		if cfg.YouTubeAPIKey != "" {
			checker, err := youtube.NewCaptionChecker(ctx, cfg.YouTubeAPIKey)
			if err != nil {
				logger.Warn("caption availability pre-check disabled", "error", err)
			} else {
				captions.Checker = checker
			}
		}
		providers = append(providers, captions)
	}
	providers = append(providers, &transcript.WhisperProvider{
		Audio:       audio,
		WhisperPath: cfg.WhisperPath,
		Model:       cfg.WhisperModel,
		Timeout:     cfg.WhisperTimeout,
	})

	return &Pipeline{
		Metadata:    fetcher,
		Transcripts: &transcript.Selector{Providers: providers, Logger: logger},
		Restyler:    note.NewRestylerFromEnv(cfg.RestyleCommand, cfg.CohereModel, cfg.RestyleTimeout),
		Writer:      &note.Writer{Vault: vault, OutDir: outDir},
		Logger:      logger,
	}
}
