package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tubenote"
	"tubenote/config"
	"tubenote/podcast"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "video":
		cmdVideo(args)
	case "podcast":
		cmdPodcast(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `tubenote - YouTube transcripts and podcast episodes as Obsidian notes

Usage:
  tubenote video [flags] <video-url>     Write a chaptered transcript note for a video
  tubenote podcast [flags] <feed-url>    Download an episode and write show notes
  tubenote help                          Show this help message

Examples:
  tubenote video https://youtu.be/dQw4w9WgXcQ                 # Captions when available
  tubenote video --force-asr <url>                            # Always transcribe locally
  tubenote video --vault ~/Notes --out-dir Inbox <url>        # Custom vault layout
  tubenote podcast https://example.com/feed.xml               # Newest episode, audio + notes
  tubenote podcast --mode md <feed-url>                       # Show notes only
  tubenote podcast --episode <page-url> -o ~/Podcasts <feed>  # Specific episode

For help on specific command: tubenote <command> -h
`)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func cmdVideo(args []string) {
	fs := flag.NewFlagSet("video", flag.ExitOnError)
	vault := fs.String("vault", ".", "Obsidian vault root directory")
	outDir := fs.String("out-dir", filepath.Join("Inbox", "YouTube Transcripts"), "Vault-relative output directory")
	prompt := fs.String("prompt", filepath.Join("Inbox", "Youtube Transcript prompt.md"), "Vault-relative restructuring prompt file")
	forceASR := fs.Bool("force-asr", false, "Skip captions and transcribe the audio locally")
	verbose := fs.Bool("verbose", false, "Enable debug logging")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tubenote video [flags] <video-url>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	argv := fs.Args()
	if len(argv) != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one video URL\n")
		fs.Usage()
		os.Exit(1)
	}

	logger := newLogger(*verbose)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	p := tubenote.NewPipeline(ctx, cfg, *vault, *outDir, *forceASR, logger)

	res, err := p.Run(ctx, tubenote.Options{
		URL:        argv[0],
		PromptPath: filepath.Join(*vault, *prompt),
	})
	if err != nil {
		reportFatal(err)
	}

	fmt.Printf("Wrote %s (source: %s, restyle: %s)\n", res.NotePath, res.Source, res.RestyleModel)
}

func cmdPodcast(args []string) {
	fs := flag.NewFlagSet("podcast", flag.ExitOnError)
	mode := fs.String("mode", "both", "Output mode: both, audio, or md")
	output := fs.String("output", "Podcasts", "Output directory (created if absent)")
	fs.StringVar(output, "o", "Podcasts", "Output directory (shorthand)")
	episode := fs.String("episode", "", "Episode page or enclosure URL (default: newest episode)")
	verbose := fs.Bool("verbose", false, "Enable debug logging")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tubenote podcast [flags] <feed-url>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	argv := fs.Args()
	if len(argv) != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one feed URL\n")
		fs.Usage()
		os.Exit(1)
	}

	parsedMode, err := podcast.ParseMode(*mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(*verbose)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	runner := podcast.NewRunner(logger)
	runner.Downloader.YtdlpPath = cfg.YtdlpPath

	res, err := runner.Run(context.Background(), podcast.Options{
		FeedURL:    argv[0],
		EpisodeURL: *episode,
		Mode:       parsedMode,
		OutputDir:  *output,
	})
	if err != nil {
		reportFatal(err)
	}

	fmt.Printf("Episode: %s\n", res.Episode.Title)
	if res.AudioPath != "" {
		fmt.Printf("Audio: %s\n", res.AudioPath)
	}
	if res.NotePath != "" {
		fmt.Printf("Notes: %s\n", res.NotePath)
	}
}

// reportFatal prints a human-readable message naming the failing stage and
// exits non-zero.
func reportFatal(err error) {
	switch {
	case errors.Is(err, tubenote.ErrInvalidURL):
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	case errors.Is(err, tubenote.ErrYtdlpNotInstalled),
		errors.Is(err, podcast.ErrYtdlpNotInstalled),
		errors.Is(err, tubenote.ErrWhisperNotInstalled):
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	default:
		var audioErr *tubenote.AudioFetchError
		var writeErr *tubenote.WriteError
		switch {
		case errors.As(err, &audioErr):
			fmt.Fprintf(os.Stderr, "Error: audio download failed: %v\n", audioErr.Err)
		case errors.As(err, &writeErr):
			fmt.Fprintf(os.Stderr, "Error: could not write note %s: %v\n", writeErr.Path, writeErr.Err)
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	os.Exit(1)
}
