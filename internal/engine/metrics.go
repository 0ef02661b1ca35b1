package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	FeedFetches         atomic.Int64
	FeedErrors          atomic.Int64
	RSSDownloads        atomic.Int64
	RSSDownloadErrors   atomic.Int64
	YouTubeSearches     atomic.Int64
	YouTubeDownloads    atomic.Int64
	YouTubeErrors       atomic.Int64
	Fallbacks           atomic.Int64
	Transcriptions      atomic.Int64
	TranscriptionErrors atomic.Int64
	Scrapes             atomic.Int64
	ScrapesSkipped      atomic.Int64
}

var metricKeys = []string{
	"feed_fetches", "feed_errors",
	"rss_downloads", "rss_download_errors",
	"youtube_searches", "youtube_downloads", "youtube_errors",
	"fallbacks",
	"transcriptions", "transcription_errors",
	"scrapes", "scrapes_skipped",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"feed_fetches":         metrics.FeedFetches.Load(),
		"feed_errors":          metrics.FeedErrors.Load(),
		"rss_downloads":        metrics.RSSDownloads.Load(),
		"rss_download_errors":  metrics.RSSDownloadErrors.Load(),
		"youtube_searches":     metrics.YouTubeSearches.Load(),
		"youtube_downloads":    metrics.YouTubeDownloads.Load(),
		"youtube_errors":       metrics.YouTubeErrors.Load(),
		"fallbacks":            metrics.Fallbacks.Load(),
		"transcriptions":       metrics.Transcriptions.Load(),
		"transcription_errors": metrics.TranscriptionErrors.Load(),
		"scrapes":              metrics.Scrapes.Load(),
		"scrapes_skipped":      metrics.ScrapesSkipped.Load(),
		"cache_hits":           hits,
		"cache_misses":         misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sources/ and scraper/ sub-packages.
func IncrFeedFetch()          { metrics.FeedFetches.Add(1) }
func IncrFeedError()          { metrics.FeedErrors.Add(1) }
func IncrRSSDownload()        { metrics.RSSDownloads.Add(1) }
func IncrRSSDownloadError()   { metrics.RSSDownloadErrors.Add(1) }
func IncrYouTubeSearch()      { metrics.YouTubeSearches.Add(1) }
func IncrYouTubeDownload()    { metrics.YouTubeDownloads.Add(1) }
func IncrYouTubeError()       { metrics.YouTubeErrors.Add(1) }
func IncrFallback()           { metrics.Fallbacks.Add(1) }
func IncrTranscription()      { metrics.Transcriptions.Add(1) }
func IncrTranscriptionError() { metrics.TranscriptionErrors.Add(1) }
func IncrScrape()             { metrics.Scrapes.Add(1) }
func IncrScrapeSkipped()      { metrics.ScrapesSkipped.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
