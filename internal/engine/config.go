package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all engine configuration. Built once in main and passed by pointer
// into every component that needs it.
type Config struct {
	OutputDirectory  string
	TempDirectory    string
	TrackingFile     string
	DeepgramAPIKey   string
	DeepgramAPIBase  string
	DeepgramModel    string
	YtdlpPath        string
	FeedPollInterval time.Duration
	RedisURL         string
	CacheTTL         time.Duration
	CacheMaxEntries  int
	MCPPort          string
	MCPTransport     string // "http" or "stdio"
	HTTPClient       *http.Client
}

// fileConfig mirrors the keys accepted in config.json / config.yaml.
// YAML decoding also accepts plain JSON documents.
type fileConfig struct {
	OutputDirectory string `yaml:"outputDirectory"`
	DeepgramAPIKey  string `yaml:"deepgramApiKey"`
	TempDirectory   string `yaml:"tempDirectory"`
	TrackingFile    string `yaml:"trackingFile"`
	YtdlpPath       string `yaml:"ytdlpPath"`
}

// LoadConfig assembles the configuration. For every key the first non-empty source wins:
// environment variable, then the config file, then the built-in default.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("config: .env not loaded", slog.Any("error", err))
	}

	fc, err := readConfigFile(env.Str("CONFIG_FILE", "config.json"))
	if err != nil {
		slog.Warn("config: config file ignored", slog.Any("error", err))
	}

	c := &Config{
		OutputDirectory:  env.Str("OUTPUT_DIRECTORY", firstNonEmpty(fc.OutputDirectory, "./podcasts")),
		TempDirectory:    env.Str("TEMP_DIRECTORY", firstNonEmpty(fc.TempDirectory, "./temp")),
		TrackingFile:     env.Str("TRACKING_FILE", firstNonEmpty(fc.TrackingFile, "tracking.json")),
		DeepgramAPIKey:   env.Str("DEEPGRAM_API_KEY", fc.DeepgramAPIKey),
		DeepgramAPIBase:  env.Str("DEEPGRAM_API_BASE", "https://api.deepgram.com/v1"),
		DeepgramModel:    env.Str("DEEPGRAM_MODEL", "nova-2"),
		YtdlpPath:        env.Str("YTDLP_PATH", firstNonEmpty(fc.YtdlpPath, "yt-dlp")),
		FeedPollInterval: env.Duration("FEED_POLL_INTERVAL", 0),
		RedisURL:         env.Str("REDIS_URL", ""),
		CacheTTL:         env.Duration("CACHE_TTL", 15*time.Minute),
		CacheMaxEntries:  env.Int("CACHE_MAX_ENTRIES", 500),
		MCPPort:          env.Str("MCP_PORT", "8893"),
		MCPTransport:     env.Str("MCP_TRANSPORT", "http"),
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     60 * time.Second,
				TLSHandshakeTimeout: 15 * time.Second,
			},
		},
	}

	if c.OutputDirectory, err = absDir(c.OutputDirectory); err != nil {
		return nil, err
	}
	if c.TempDirectory, err = absDir(c.TempDirectory); err != nil {
		return nil, err
	}
	return c, nil
}

func readConfigFile(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fc, nil
	}
	if err != nil {
		return fc, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return fc, nil
}

func absDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("config: resolve %s: %w", dir, err)
	}
	return abs, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
