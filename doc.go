// Package tubenote turns YouTube videos into chaptered Obsidian notes.
//
// It fetches video metadata, acquires a transcript from captions with a
// local speech recognition fallback, aligns the transcript to chapters,
// renders markdown, optionally restructures it with a text-generation
// model, and writes the result into a vault.
//
// # Overview
//
// The Pipeline type runs the whole flow for one video:
//
//	ctx := context.Background()
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	p := tubenote.NewPipeline(ctx, cfg, "/vault", "Inbox/YouTube Transcripts", false, nil)
//	res, err := p.Run(ctx, tubenote.Options{URL: "https://youtu.be/dQw4w9WgXcQ"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(res.NotePath, res.Source)
//
// Exactly one transcript source serves each run: caption tracks when the
// video has them, otherwise audio is downloaded and transcribed locally.
// The source used is recorded in the note's provenance block.
//
// # Configuration
//
// tubenote loads settings from multiple sources:
//
//  1. Environment variables (highest priority)
//  2. Config file (tubenote.json or ~/.config/tubenote/tubenote.json)
//  3. A .env file in the working directory
//  4. Default values (lowest priority)
//
// Environment variables:
//
//   - TUBENOTE_YTDLP_PATH: Path to yt-dlp executable
//   - TUBENOTE_YTDLP_TIMEOUT: Timeout for yt-dlp operations
//   - TUBENOTE_WHISPER_PATH: Path to whisper executable
//   - TUBENOTE_WHISPER_MODEL: Speech recognition model name
//   - TUBENOTE_WHISPER_TIMEOUT: Timeout for a transcription run
//   - TUBENOTE_RESTYLE_COMMAND: External restructuring command
//   - TUBENOTE_RESTYLE_TIMEOUT: Timeout for a restructuring attempt
//   - TUBENOTE_COHERE_MODEL: Cohere chat model for restructuring
//   - TUBENOTE_MAX_RETRIES: Maximum retry attempts
//   - TUBENOTE_INITIAL_BACKOFF: Initial retry backoff duration
//   - TUBENOTE_MAX_BACKOFF: Maximum retry backoff duration
//   - YOUTUBE_API_KEY: Enables the caption availability pre-check
//   - COHERE_API_KEY: Enables API-backed restructuring
//
// # Error Handling
//
// All operations return errors that implement standard Go error handling:
//
//	if errors.Is(err, tubenote.ErrCaptionsUnavailable) {
//		fmt.Println("No captions; the pipeline falls back to speech recognition")
//	}
//
//	var wErr *tubenote.WriteError
//	if errors.As(err, &wErr) {
//		fmt.Printf("Writing %s failed: %v\n", wErr.Path, wErr.Err)
//	}
//
// # Sub-packages
//
// For more control, use the sub-packages directly:
//
//   - youtube: metadata, caption tracks, and audio download via yt-dlp
//   - transcript: the captions-then-ASR provider chain
//   - note: chapter segmentation, rendering, restructuring, and writing
//   - podcast: feed resolution, episode download, and show notes
//   - config: configuration management
//
// # Dependencies
//
// tubenote requires yt-dlp to be installed and available in PATH or
// specified via TUBENOTE_YTDLP_PATH. The speech recognition fallback
// additionally requires the whisper CLI.
//
// Install yt-dlp: https://github.com/yt-dlp/yt-dlp
package tubenote
