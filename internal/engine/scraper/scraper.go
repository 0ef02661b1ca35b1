package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go_podcast/internal/engine"
	"github.com/anatolykoptev/go_podcast/internal/engine/sources"
	"github.com/anatolykoptev/go_podcast/internal/engine/store"
)

const previewRunes = 500

// Scraper wires the acquisition policy to transcription and the file store.
type Scraper struct {
	feeds       FeedSource
	audio       AudioSource
	video       VideoSource
	transcriber Transcriber
	store       *store.Store
	now         func() time.Time
}

// New builds a scraper from its collaborators.
func New(feeds FeedSource, audio AudioSource, video VideoSource, tr Transcriber, st *store.Store) *Scraper {
	return &Scraper{
		feeds:       feeds,
		audio:       audio,
		video:       video,
		transcriber: tr,
		store:       st,
		now:         time.Now,
	}
}

// Status says what Scrape did.
type Status string

const (
	StatusScraped          Status = "scraped"
	StatusSkipped          Status = "skipped"           // transcript and summary exist
	StatusTranscriptExists Status = "transcript_exists" // transcript only
)

// Result describes one scrape.
type Result struct {
	Status         Status
	PodcastName    string
	Title          string
	Date           string
	Dir            string
	TranscriptPath string
	Preview        string
	WordCount      int
	Source         engine.Source
}

// ScrapeRequest is the scrape tool input.
type ScrapeRequest struct {
	Query        string
	PodcastName  string
	EpisodeTitle string
	Force        bool
}

// Scrape resolves the query to an episode, skips work already on disk unless
// Force is set, and otherwise runs ScrapeEpisode.
func (s *Scraper) Scrape(ctx context.Context, req ScrapeRequest) (*Result, error) {
	ep, err := s.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	res := &Result{
		PodcastName: ep.PodcastName,
		Title:       ep.Title,
		Date:        ep.Date,
		Dir:         s.store.EpisodeDir(ep.PodcastName, ep.Title, ep.Date),
	}

	if !req.Force {
		hasTranscript := s.store.HasTranscript(ep.PodcastName, ep.Title, ep.Date)
		switch {
		case hasTranscript && s.store.HasSummary(ep.PodcastName, ep.Title, ep.Date):
			engine.IncrScrapeSkipped()
			res.Status = StatusSkipped
			return res, nil
		case hasTranscript:
			engine.IncrScrapeSkipped()
			res.Status = StatusTranscriptExists
			return res, nil
		}
	}

	done, err := s.ScrapeEpisode(ctx, ep)
	if err != nil {
		return nil, err
	}
	done.Dir = res.Dir
	return done, nil
}

// ScrapeEpisode acquires audio, transcribes it and saves transcript.md. The temp
// audio file is removed afterwards whether or not transcription succeeded.
func (s *Scraper) ScrapeEpisode(ctx context.Context, ep EpisodeInfo) (*Result, error) {
	engine.IncrScrape()
	slog.Info("scrape: start",
		slog.String("podcast", ep.PodcastName),
		slog.String("title", ep.Title),
		slog.String("date", ep.Date))

	acq, err := s.acquire(ctx, ep)
	if err != nil {
		return nil, err
	}
	defer store.CleanupTempFile(acq.Path)

	var text string
	err = engine.TrackOperation(ctx, "transcribe", 5*time.Minute, func(ctx context.Context) error {
		var terr error
		text, terr = s.transcriber.Transcribe(ctx, acq.Path)
		return terr
	})
	if err != nil {
		return nil, err
	}

	path, err := s.store.SaveTranscript(ep.PodcastName, ep.Title, ep.Date, text)
	if err != nil {
		return nil, err
	}
	slog.Info("scrape: transcript saved",
		slog.String("path", path),
		slog.String("source", string(acq.Source)),
		slog.Int("chars", len(text)))

	return &Result{
		Status:         StatusScraped,
		PodcastName:    ep.PodcastName,
		Title:          ep.Title,
		Date:           ep.Date,
		TranscriptPath: path,
		Preview:        engine.TruncateRunes(text, previewRunes, "..."),
		WordCount:      engine.WordCount(text),
		Source:         acq.Source,
	}, nil
}

func (s *Scraper) acquire(ctx context.Context, ep EpisodeInfo) (Acquired, error) {
	if ep.VideoURL == "" {
		return s.AcquireAudio(ctx, ep)
	}
	path, _, err := s.video.DownloadAudio(ctx, ep.VideoURL)
	if err != nil {
		return Acquired{}, err
	}
	return Acquired{Path: path, Source: engine.SourceYouTube}, nil
}

// QueryKind is how a scrape query was classified.
type QueryKind int

const (
	QuerySearch QueryKind = iota
	QueryYouTube
	QueryFeed
	QueryAudio
)

// ClassifyQuery decides how Resolve treats a query string.
func ClassifyQuery(q string) QueryKind {
	switch {
	case sources.IsYouTubeURL(q):
		return QueryYouTube
	case !strings.HasPrefix(q, "http"):
		return QuerySearch
	case containsAny(q, "rss", "feed", ".xml", "megaphone", "libsyn", "anchor"):
		return QueryFeed
	case containsAny(q, ".mp3", "traffic.", "audio"):
		return QueryAudio
	}
	return QuerySearch
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Resolve turns a scrape query into episode metadata without downloading audio.
// Explicit podcast name and title in req override what is detected.
func (s *Scraper) Resolve(ctx context.Context, req ScrapeRequest) (EpisodeInfo, error) {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return EpisodeInfo{}, errors.New("query is required")
	}
	today := s.now().UTC().Format(engine.DateLayout)

	switch ClassifyQuery(q) {
	case QueryYouTube:
		info, err := s.video.Info(ctx, q)
		if err != nil {
			return EpisodeInfo{}, err
		}
		return s.fromVideo(req, info, q, today), nil

	case QueryFeed:
		feed, err := s.feeds.Parse(ctx, q)
		if err != nil {
			return EpisodeInfo{}, err
		}
		latest := sources.LatestEpisode(feed)
		if latest == nil || latest.AudioURL == "" {
			return EpisodeInfo{}, errors.New("no episodes with audio found in the RSS feed")
		}
		return EpisodeInfo{
			PodcastName: orDefault(req.PodcastName, feed.Title),
			Title:       orDefault(req.EpisodeTitle, latest.Title),
			Date:        latest.DateKey(s.now()),
			AudioURL:    latest.AudioURL,
		}, nil

	case QueryAudio:
		if req.PodcastName == "" || req.EpisodeTitle == "" {
			return EpisodeInfo{}, errors.New("when using a direct audio URL, podcastName and episodeTitle are required")
		}
		return EpisodeInfo{
			PodcastName: req.PodcastName,
			Title:       req.EpisodeTitle,
			Date:        today,
			AudioURL:    q,
		}, nil
	}

	results, err := s.video.Search(ctx, q, 1)
	if err != nil {
		return EpisodeInfo{}, err
	}
	if len(results) == 0 {
		return EpisodeInfo{}, fmt.Errorf("no results found for: %s", q)
	}
	info, err := s.video.Info(ctx, results[0].URL)
	if err != nil {
		return EpisodeInfo{}, err
	}
	return s.fromVideo(req, info, results[0].URL, today), nil
}

func (s *Scraper) fromVideo(req ScrapeRequest, info engine.VideoInfo, videoURL, today string) EpisodeInfo {
	return EpisodeInfo{
		PodcastName: orDefault(req.PodcastName, info.Uploader),
		Title:       orDefault(req.EpisodeTitle, info.Title),
		Date:        uploadDateOr(info.UploadDate, today),
		VideoURL:    videoURL,
	}
}

func uploadDateOr(date, today string) string {
	if engine.ValidDate(date) {
		return date
	}
	return today
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
