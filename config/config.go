package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// OptionsPath is where the Home Assistant add-on supervisor mounts the
// user-facing options. When the file exists we are running as an add-on
// and it wins over the environment.
var OptionsPath = "/data/options.json"

type Config struct {
	// DownloadDir is the library root; artist folders are created below it.
	DownloadDir string

	// OpenAIAPIKey enables the AI metadata resolver. Empty means the
	// rule-based parser handles everything.
	OpenAIAPIKey string
	OpenAIModel  string

	// FFmpegLocation overrides the ffmpeg binary passed to yt-dlp.
	// Empty relies on PATH.
	FFmpegLocation string

	// MaxConcurrent bounds simultaneously running download jobs.
	MaxConcurrent int

	// SearchLimit is how many candidates a search query returns.
	SearchLimit int

	// JobTimeout bounds a single download job end to end.
	JobTimeout time.Duration
}

type haOptions struct {
	DownloadDir  string `json:"download_dir"`
	OpenAIAPIKey string `json:"openai_api_key"`
	OpenAIModel  string `json:"openai_model"`
	FFmpegBin    string `json:"ffmpeg_bin"`
}

// Load builds the configuration once at startup: defaults, then environment,
// then the add-on options file when present.
func Load() (*Config, error) {
	cfg := &Config{
		DownloadDir:    envOr("DOWNLOAD_DIR", "./downloads"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    envOr("OPENAI_MODEL", "gpt-4o-mini"),
		FFmpegLocation: os.Getenv("FFMPEG_LOCATION"),
		MaxConcurrent:  envIntOr("MAX_CONCURRENT_DOWNLOADS", 2),
		SearchLimit:    envIntOr("SEARCH_LIMIT", 5),
		JobTimeout:     15 * time.Minute,
	}

	if raw, err := os.ReadFile(OptionsPath); err == nil {
		var opts haOptions
		if err := json.Unmarshal(raw, &opts); err != nil {
			return nil, fmt.Errorf("parse %s: %w", OptionsPath, err)
		}
		if opts.DownloadDir != "" {
			cfg.DownloadDir = opts.DownloadDir
		}
		if opts.OpenAIAPIKey != "" {
			cfg.OpenAIAPIKey = opts.OpenAIAPIKey
		}
		if opts.OpenAIModel != "" {
			cfg.OpenAIModel = opts.OpenAIModel
		}
		if opts.FFmpegBin != "" {
			cfg.FFmpegLocation = opts.FFmpegBin
		}
	}

	if err := os.MkdirAll(cfg.DownloadDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("create download dir %s: %w", cfg.DownloadDir, err)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
