package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_podcast/internal/engine"
)

// YouTube search and audio extraction through the yt-dlp binary.

const ytWatchURL = "https://www.youtube.com/watch?v="

var youTubeURLRe = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.be)/`)

// IsYouTubeURL reports whether u points at youtube.com or youtu.be. Anything else,
// including malformed URLs, is "not YouTube".
func IsYouTubeURL(u string) bool {
	return youTubeURLRe.MatchString(u)
}

// CommandRunner runs an external program and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes name with args. On failure the error carries the trimmed stderr.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return out, fmt.Errorf("%s: %w: %s", filepath.Base(name), err, engine.TruncateRunes(msg, 500, "..."))
		}
		return out, fmt.Errorf("%s: %w", filepath.Base(name), err)
	}
	return out, nil
}

// YouTube wraps yt-dlp for search, metadata and audio download.
type YouTube struct {
	runner  CommandRunner
	bin     string
	tempDir string
}

// NewYouTube returns an adapter running bin (usually "yt-dlp") through runner and
// writing audio into tempDir.
func NewYouTube(runner CommandRunner, bin, tempDir string) *YouTube {
	if runner == nil {
		runner = ExecRunner{}
	}
	if bin == "" {
		bin = "yt-dlp"
	}
	return &YouTube{runner: runner, bin: bin, tempDir: tempDir}
}

// ytEntry is the subset of yt-dlp's JSON we read. Duration is a float in yt-dlp output
// and null for some flat-playlist entries.
type ytEntry struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Uploader    string   `json:"uploader"`
	Channel     string   `json:"channel"`
	UploadDate  string   `json:"upload_date"`
	Duration    *float64 `json:"duration"`
	URL         string   `json:"url"`
	WebpageURL  string   `json:"webpage_url"`
}

type ytPlaylist struct {
	Entries []ytEntry `json:"entries"`
}

// Search returns up to limit candidates for a free-text query.
func (y *YouTube) Search(ctx context.Context, query string, limit int) ([]engine.VideoInfo, error) {
	engine.IncrYouTubeSearch()
	if limit <= 0 {
		limit = 5
	}
	out, err := y.runner.Run(ctx, y.bin,
		fmt.Sprintf("ytsearch%d:%s", limit, query),
		"--dump-single-json",
		"--flat-playlist",
		"--no-warnings",
		"--no-check-certificates",
	)
	if err != nil {
		engine.IncrYouTubeError()
		return nil, fmt.Errorf("youtube search: %w", err)
	}

	var pl ytPlaylist
	if err := json.Unmarshal(out, &pl); err != nil {
		engine.IncrYouTubeError()
		return nil, fmt.Errorf("decode youtube search: %w", err)
	}

	videos := make([]engine.VideoInfo, 0, len(pl.Entries))
	for _, e := range pl.Entries {
		if e.ID == "" {
			continue
		}
		videos = append(videos, entryToVideo(e))
		if len(videos) >= limit {
			break
		}
	}
	return videos, nil
}

// Info fetches full metadata for a single video URL.
func (y *YouTube) Info(ctx context.Context, videoURL string) (engine.VideoInfo, error) {
	out, err := y.runner.Run(ctx, y.bin,
		videoURL,
		"--dump-single-json",
		"--no-check-certificates",
		"--no-warnings",
		"--prefer-free-formats",
	)
	if err != nil {
		engine.IncrYouTubeError()
		return engine.VideoInfo{}, &engine.DownloadError{URL: videoURL, Err: err}
	}
	var e ytEntry
	if err := json.Unmarshal(out, &e); err != nil {
		engine.IncrYouTubeError()
		return engine.VideoInfo{}, &engine.DownloadError{URL: videoURL, Err: fmt.Errorf("decode metadata: %w", err)}
	}
	if e.ID == "" {
		engine.IncrYouTubeError()
		return engine.VideoInfo{}, &engine.DownloadError{URL: videoURL, Err: errors.New("metadata has no video id")}
	}
	return entryToVideo(e), nil
}

// DownloadAudio re-fetches metadata, then extracts the audio track as mp3 named by the
// video id. Failures are *engine.DownloadError; no retry.
func (y *YouTube) DownloadAudio(ctx context.Context, videoURL string) (string, engine.VideoInfo, error) {
	info, err := y.Info(ctx, videoURL)
	if err != nil {
		return "", engine.VideoInfo{}, err
	}

	if err := os.MkdirAll(y.tempDir, 0o750); err != nil {
		return "", info, &engine.DownloadError{URL: videoURL, Err: err}
	}

	_, err = y.runner.Run(ctx, y.bin,
		videoURL,
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", "0",
		"-o", filepath.Join(y.tempDir, info.ID+".%(ext)s"),
		"--no-check-certificates",
		"--no-warnings",
	)
	if err != nil {
		engine.IncrYouTubeError()
		return "", info, &engine.DownloadError{URL: videoURL, Err: err}
	}

	audioPath := filepath.Join(y.tempDir, info.ID+".mp3")
	if _, err := os.Stat(audioPath); err != nil {
		engine.IncrYouTubeError()
		return "", info, &engine.DownloadError{URL: videoURL, Err: fmt.Errorf("expected output missing: %w", err)}
	}
	engine.IncrYouTubeDownload()
	return audioPath, info, nil
}

func entryToVideo(e ytEntry) engine.VideoInfo {
	v := engine.VideoInfo{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Uploader:    e.Uploader,
		UploadDate:  formatUploadDate(e.UploadDate),
		URL:         e.WebpageURL,
	}
	if v.Title == "" {
		v.Title = "Unknown Title"
	}
	if v.Uploader == "" {
		v.Uploader = e.Channel
	}
	if v.Uploader == "" {
		v.Uploader = "Unknown"
	}
	if e.Duration != nil {
		v.Duration = int(*e.Duration)
	}
	if v.URL == "" && strings.HasPrefix(e.URL, "http") {
		v.URL = e.URL
	}
	if v.URL == "" {
		v.URL = ytWatchURL + e.ID
	}
	return v
}

// formatUploadDate turns yt-dlp's YYYYMMDD into YYYY-MM-DD; other shapes pass through.
func formatUploadDate(s string) string {
	if len(s) != 8 {
		return s
	}
	return s[:4] + "-" + s[4:6] + "-" + s[6:]
}
