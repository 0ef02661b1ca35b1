// Package scraper locates an episode's audio, transcribes it and stores the transcript.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/anatolykoptev/go_podcast/internal/engine"
)

const (
	// searchCandidates is how many YouTube results the fallback inspects.
	searchCandidates = 5
	// minEpisodeSeconds separates full episodes from clips.
	minEpisodeSeconds = 300
)

// AudioSource downloads a direct audio URL into the temp directory.
type AudioSource interface {
	Download(ctx context.Context, audioURL, filename string) (string, error)
}

// VideoSource searches YouTube and extracts audio from a video.
type VideoSource interface {
	Search(ctx context.Context, query string, limit int) ([]engine.VideoInfo, error)
	Info(ctx context.Context, videoURL string) (engine.VideoInfo, error)
	DownloadAudio(ctx context.Context, videoURL string) (string, engine.VideoInfo, error)
}

// FeedSource fetches and parses a podcast feed.
type FeedSource interface {
	Parse(ctx context.Context, feedURL string) (*engine.Feed, error)
}

// Transcriber turns a local audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// EpisodeInfo identifies an episode and where its audio might be.
type EpisodeInfo struct {
	PodcastName string
	Title       string
	Date        string // YYYY-MM-DD
	AudioURL    string // direct enclosure, optional
	VideoURL    string // known YouTube video; skips the RSS/search policy when set
}

// Acquired is a downloaded audio file and the path that produced it.
type Acquired struct {
	Path   string
	Source engine.Source
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// AcquireAudio gets audio for ep: the direct URL first, then a YouTube search.
// A failed direct download is logged and never returned; the search path decides
// the outcome.
func (s *Scraper) AcquireAudio(ctx context.Context, ep EpisodeInfo) (Acquired, error) {
	if ep.AudioURL != "" {
		filename := fmt.Sprintf("%s-%d.mp3", nonAlnum.ReplaceAllString(ep.PodcastName, "-"), time.Now().UnixNano())
		path, err := s.audio.Download(ctx, ep.AudioURL, filename)
		if err == nil {
			slog.Info("scrape: audio from rss", slog.String("title", ep.Title))
			return Acquired{Path: path, Source: engine.SourceRSS}, nil
		}
		engine.IncrFallback()
		slog.Warn("scrape: rss download failed, trying youtube",
			slog.String("title", ep.Title), slog.Any("error", err))
	} else {
		slog.Info("scrape: no audio url, trying youtube", slog.String("title", ep.Title))
	}

	query := ep.PodcastName + " " + ep.Title
	candidates, err := s.video.Search(ctx, query, searchCandidates)
	if err != nil {
		return Acquired{}, fmt.Errorf("youtube search %q: %w", query, err)
	}

	pick, ok := SelectCandidate(ep.PodcastName, candidates)
	if !ok {
		return Acquired{}, &engine.AudioNotFoundError{Title: ep.Title}
	}
	slog.Info("scrape: youtube candidate",
		slog.String("title", pick.Title),
		slog.String("uploader", pick.Uploader),
		slog.Int("duration", pick.Duration))

	path, _, err := s.video.DownloadAudio(ctx, pick.URL)
	if err != nil {
		return Acquired{}, err
	}
	return Acquired{Path: path, Source: engine.SourceYouTube}, nil
}

// SelectCandidate picks the first full-length candidate whose title or uploader
// contains podcastName (case-insensitive). Without a name match it takes the first
// full-length candidate. Full length means longer than five minutes.
func SelectCandidate(podcastName string, candidates []engine.VideoInfo) (engine.VideoInfo, bool) {
	name := strings.ToLower(podcastName)
	for _, c := range candidates {
		if c.Duration <= minEpisodeSeconds {
			continue
		}
		if strings.Contains(strings.ToLower(c.Title), name) || strings.Contains(strings.ToLower(c.Uploader), name) {
			return c, true
		}
	}
	for _, c := range candidates {
		if c.Duration > minEpisodeSeconds {
			return c, true
		}
	}
	return engine.VideoInfo{}, false
}
