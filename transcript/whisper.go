package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// AudioFetcher downloads a video's audio into a scoped temporary location.
// The returned cleanup removes every artifact of the download.
type AudioFetcher interface {
	DownloadScoped(ctx context.Context, videoID string) (path string, cleanup func(), err error)
}

// WhisperProvider transcribes audio locally with the whisper CLI. It is the
// fallback behind captions: always available once audio is fetched, but slow
// and with approximate timestamps.
type WhisperProvider struct {
	// Audio downloads the source audio. Required.
	Audio AudioFetcher
	// WhisperPath is the whisper executable. Defaults to "whisper".
	WhisperPath string
	// Model is the whisper model name. Defaults to "base".
	Model string
	// Timeout bounds a single transcription run. Defaults to 30 minutes.
	Timeout time.Duration
}

// Source returns SourceASRFallback.
func (p *WhisperProvider) Source() Source { return SourceASRFallback }

// Fetch downloads the audio, converts it to 16 kHz mono WAV, and transcribes
// it. The temporary audio directory is removed on all exit paths. An audio
// download failure propagates as-is (fatal, no further fallback).
func (p *WhisperProvider) Fetch(ctx context.Context, videoID string) ([]Line, error) {
	audioPath, cleanup, err := p.Audio.DownloadScoped(ctx, videoID)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	wavPath := prepareAudio(audioPath)

	data, err := p.transcribe(ctx, wavPath)
	if err != nil {
		return nil, err
	}

	lines, err := parseWhisperOutput(data)
	if err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}
	return lines, nil
}

// prepareAudio converts the downloaded audio to 16 kHz mono WAV, which is
// what whisper resamples to anyway. Conversion failure is non-fatal: whisper
// accepts the original container, just more slowly.
func prepareAudio(audioPath string) string {
	wavPath := strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".wav"

	err := ffmpeg.Input(audioPath).
		Output(wavPath, ffmpeg.KwArgs{
			"ar": 16000,
			"ac": 1,
			"f":  "wav",
		}).
		OverWriteOutput().
		Silent(true).
		Run()
	if err != nil {
		return audioPath
	}
	return wavPath
}

// transcribe runs the whisper CLI and returns the raw JSON result.
func (p *WhisperProvider) transcribe(ctx context.Context, audioPath string) ([]byte, error) {
	if err := p.checkInstalled(ctx); err != nil {
		return nil, err
	}

	model := p.Model
	if model == "" {
		model = "base"
	}
	outDir := filepath.Dir(audioPath)

	args := []string{
		audioPath,
		"--model", model,
		"--output_format", "json",
		"--output_dir", outDir,
		"--verbose", "False",
	}

	timeout := p.Timeout
	if timeout == 0 {
		timeout = 30 * time.Minute
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, p.path(), args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg != "" {
			return nil, fmt.Errorf("whisper failed: %w: %s", err, errMsg)
		}
		return nil, fmt.Errorf("whisper failed: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	resultPath := filepath.Join(outDir, base+".json")
	data, err := os.ReadFile(resultPath)
	if err != nil {
		return nil, fmt.Errorf("read whisper result: %w", err)
	}
	return data, nil
}

// checkInstalled verifies that the whisper binary is available.
func (p *WhisperProvider) checkInstalled(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, p.path(), "--help")
	if err := cmd.Run(); err != nil {
		return ErrWhisperNotInstalled
	}
	return nil
}

func (p *WhisperProvider) path() string {
	if p.WhisperPath != "" {
		return p.WhisperPath
	}
	return "whisper"
}

// whisperResult is the subset of whisper's JSON output we consume.
type whisperResult struct {
	Segments []whisperSegment `json:"segments"`
}

type whisperSegment struct {
	Start float64 `json:"start"`
	Text  string  `json:"text"`
}

// parseWhisperOutput converts whisper segments into transcript lines.
// Empty segments are dropped; negative timestamps are clamped to zero.
func parseWhisperOutput(data []byte) ([]Line, error) {
	var result whisperResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	var lines []Line
	for _, seg := range result.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		ts := seg.Start
		if ts < 0 {
			ts = 0
		}
		lines = append(lines, Line{Timestamp: ts, Text: text})
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("whisper produced no segments")
	}
	return lines, nil
}
