package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/anatolykoptev/go_podcast/internal/engine"
	"github.com/mmcdole/gofeed"
)

// RSS/Atom feed reading and direct enclosure download.

// FeedReader fetches and normalizes podcast feeds.
type FeedReader struct {
	parser *gofeed.Parser
}

// NewFeedReader returns a reader that fetches through client. A nil client uses
// gofeed's default.
func NewFeedReader(client *http.Client) *FeedReader {
	p := gofeed.NewParser()
	p.Client = client
	p.UserAgent = engine.RandomUserAgent()
	return &FeedReader{parser: p}
}

// Parse fetches feedURL once and normalizes it. Any failure, network or parse, is
// returned as *engine.FetchError. No retry.
func (r *FeedReader) Parse(ctx context.Context, feedURL string) (*engine.Feed, error) {
	engine.IncrFeedFetch()
	gf, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		engine.IncrFeedError()
		return nil, &engine.FetchError{URL: feedURL, Err: err}
	}
	return convertFeed(gf, feedURL), nil
}

// ParseString parses feed content that is already in memory.
func (r *FeedReader) ParseString(content string) (*engine.Feed, error) {
	if strings.TrimSpace(content) == "" {
		return nil, &engine.FetchError{URL: "(inline)", Err: errors.New("feed content is empty")}
	}
	gf, err := r.parser.ParseString(content)
	if err != nil {
		return nil, &engine.FetchError{URL: "(inline)", Err: err}
	}
	return convertFeed(gf, ""), nil
}

// LatestEpisode returns the first episode in feed order, or nil for an empty feed.
func LatestEpisode(feed *engine.Feed) *engine.Episode {
	if feed == nil || len(feed.Episodes) == 0 {
		return nil
	}
	return &feed.Episodes[0]
}

func convertFeed(gf *gofeed.Feed, feedURL string) *engine.Feed {
	feed := &engine.Feed{
		Title:       gf.Title,
		Description: htmlToText(gf.Description),
		Link:        gf.Link,
		Episodes:    make([]engine.Episode, 0, len(gf.Items)),
	}
	if feed.Title == "" {
		feed.Title = "Unknown Podcast"
	}
	if feed.Link == "" {
		feed.Link = feedURL
	}
	for _, item := range gf.Items {
		if item == nil {
			continue
		}
		feed.Episodes = append(feed.Episodes, convertItem(item))
	}
	return feed
}

func convertItem(item *gofeed.Item) engine.Episode {
	ep := engine.Episode{
		Title:    strings.TrimSpace(item.Title),
		PubDate:  item.Published,
		AudioURL: enclosureURL(item),
		GUID:     item.GUID,
	}
	if ep.Title == "" {
		ep.Title = "Untitled"
	}

	desc := item.Description
	if desc == "" {
		desc = item.Content
	}
	ep.Description = htmlToText(desc)

	switch {
	case item.PublishedParsed != nil:
		ep.Published = item.PublishedParsed
	case item.UpdatedParsed != nil:
		ep.Published = item.UpdatedParsed
	}
	if ep.PubDate == "" {
		ep.PubDate = item.Updated
	}

	if item.ITunesExt != nil && item.ITunesExt.Duration != "" {
		ep.Duration = item.ITunesExt.Duration
	}

	if ep.GUID == "" {
		ep.GUID = item.Link
	}
	if ep.GUID == "" {
		ep.GUID = item.Title
	}
	return ep
}

// enclosureURL prefers an audio/* enclosure and falls back to the first one with a URL.
func enclosureURL(item *gofeed.Item) string {
	var first string
	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		if strings.HasPrefix(enc.Type, "audio/") {
			return enc.URL
		}
		if first == "" {
			first = enc.URL
		}
	}
	return first
}

// htmlToText converts feed HTML to markdown, keeping the raw value when conversion fails.
func htmlToText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !strings.Contains(s, "<") {
		return s
	}
	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(md)
}

// AudioDownloader fetches direct audio URLs into the temp directory.
type AudioDownloader struct {
	client  *http.Client
	tempDir string
}

// NewAudioDownloader returns a downloader writing into tempDir.
func NewAudioDownloader(client *http.Client, tempDir string) *AudioDownloader {
	if client == nil {
		client = http.DefaultClient
	}
	return &AudioDownloader{client: client, tempDir: tempDir}
}

// Download streams audioURL to <tempDir>/<filename>. Redirects are followed by the
// HTTP client. Any non-200 final status is a *engine.FetchError.
func (d *AudioDownloader) Download(ctx context.Context, audioURL, filename string) (string, error) {
	path, err := d.download(ctx, audioURL, filename)
	if err != nil {
		engine.IncrRSSDownloadError()
		return "", &engine.FetchError{URL: audioURL, Err: err}
	}
	engine.IncrRSSDownload()
	return path, nil
}

func (d *AudioDownloader) download(ctx context.Context, audioURL, filename string) (string, error) {
	if err := os.MkdirAll(d.tempDir, 0o750); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", d.tempDir, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", engine.RandomUserAgent())
	req.Header.Set("Accept", "audio/*,*/*;q=0.8")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	outPath := filepath.Join(d.tempDir, filename)
	f, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		removePartial(outPath)
		return "", fmt.Errorf("write %s: %w", outPath, err)
	}
	if err := f.Close(); err != nil {
		removePartial(outPath)
		return "", err
	}
	return outPath, nil
}

func removePartial(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("download: partial file cleanup failed", slog.String("path", path), slog.Any("error", err))
	}
}
