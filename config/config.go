// Package config manages application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration for transcript and podcast runs.
type Config struct {
	// YtdlpPath is the path to the yt-dlp executable (default: "yt-dlp")
	YtdlpPath string `json:"ytdlp_path"`
	// YtdlpTimeout is the maximum time to wait for yt-dlp operations
	YtdlpTimeout time.Duration `json:"ytdlp_timeout"`

	// WhisperPath is the path to the whisper executable used for ASR fallback
	WhisperPath string `json:"whisper_path"`
	// WhisperModel is the speech recognition model name (default: "base")
	WhisperModel string `json:"whisper_model"`
	// WhisperTimeout is the maximum time to wait for a transcription run
	WhisperTimeout time.Duration `json:"whisper_timeout"`

	// RestyleCommand is the external command used for note restructuring.
	// Empty means restructuring is only attempted via the Cohere API (if keyed).
	RestyleCommand string `json:"restyle_command"`
	// RestyleTimeout bounds a single restructuring attempt
	RestyleTimeout time.Duration `json:"restyle_timeout"`
	// CohereModel is the Cohere chat model used when COHERE_API_KEY is set
	CohereModel string `json:"cohere_model"`

	// YouTubeAPIKey enables the Data API caption availability pre-check.
	// Optional; without it the caption fetch is attempted directly.
	YouTubeAPIKey string `json:"youtube_api_key"`

	// MaxRetries is the maximum number of retries for failed fetches
	MaxRetries int `json:"max_retries"`
	// InitialBackoff is the initial backoff duration for retries
	InitialBackoff time.Duration `json:"initial_backoff"`
	// MaxBackoff is the maximum backoff duration for retries
	MaxBackoff time.Duration `json:"max_backoff"`
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		YtdlpPath:      "yt-dlp",
		YtdlpTimeout:   5 * time.Minute,
		WhisperPath:    "whisper",
		WhisperModel:   "base",
		WhisperTimeout: 30 * time.Minute,
		RestyleTimeout: 5 * time.Minute,
		CohereModel:    "command-r",
		MaxRetries:     3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     15 * time.Second,
	}
}

// Load loads configuration from a .env file, environment variables, config
// file, and applies defaults. Priority: env vars > config file > defaults.
func Load() (*Config, error) {
	// .env is optional and only fills in unset environment variables
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if err := cfg.loadFromFile(); err != nil {
		// Config file is optional
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile attempts to load config from tubenote.json in the current
// directory or the user config directory.
func (c *Config) loadFromFile() error {
	paths := []string{
		"tubenote.json",
		filepath.Join(os.Getenv("HOME"), ".config", "tubenote", "tubenote.json"),
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	}

	return os.ErrNotExist
}

// loadFromEnv overrides config with environment variables.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("TUBENOTE_YTDLP_PATH"); v != "" {
		c.YtdlpPath = v
	}
	if v := os.Getenv("TUBENOTE_YTDLP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.YtdlpTimeout = d
		}
	}
	if v := os.Getenv("TUBENOTE_WHISPER_PATH"); v != "" {
		c.WhisperPath = v
	}
	if v := os.Getenv("TUBENOTE_WHISPER_MODEL"); v != "" {
		c.WhisperModel = v
	}
	if v := os.Getenv("TUBENOTE_WHISPER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.WhisperTimeout = d
		}
	}
	if v := os.Getenv("TUBENOTE_RESTYLE_COMMAND"); v != "" {
		c.RestyleCommand = v
	}
	if v := os.Getenv("TUBENOTE_RESTYLE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RestyleTimeout = d
		}
	}
	if v := os.Getenv("TUBENOTE_COHERE_MODEL"); v != "" {
		c.CohereModel = v
	}
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		c.YouTubeAPIKey = v
	}
	if v := os.Getenv("TUBENOTE_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv("TUBENOTE_INITIAL_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.InitialBackoff = d
		}
	}
	if v := os.Getenv("TUBENOTE_MAX_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.MaxBackoff = d
		}
	}
}

// Validate checks that configuration values are valid and consistent.
func (c *Config) Validate() error {
	if c.YtdlpTimeout <= 0 {
		return fmt.Errorf("ytdlp_timeout must be positive")
	}
	if c.WhisperTimeout <= 0 {
		return fmt.Errorf("whisper_timeout must be positive")
	}
	if c.RestyleTimeout <= 0 {
		return fmt.Errorf("restyle_timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative")
	}
	if c.InitialBackoff <= 0 {
		return fmt.Errorf("initial_backoff must be positive")
	}
	if c.MaxBackoff < c.InitialBackoff {
		return fmt.Errorf("max_backoff must be >= initial_backoff")
	}
	return nil
}
