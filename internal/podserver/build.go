package podserver

import (
	"fmt"

	"github.com/anatolykoptev/go_podcast/internal/engine"
	"github.com/anatolykoptev/go_podcast/internal/engine/scraper"
	"github.com/anatolykoptev/go_podcast/internal/engine/sources"
	"github.com/anatolykoptev/go_podcast/internal/engine/store"
	"github.com/anatolykoptev/go_podcast/internal/engine/tracking"
)

// Components is every production collaborator built from one Config.
type Components struct {
	Deps
	Transcriber scraper.Transcriber
	Audio       scraper.AudioSource
}

// Build wires the real adapters: gofeed, yt-dlp, Deepgram, the file store, the
// search cache and the tracking backend chosen by cfg.TrackingFile. Call Close when done.
func Build(cfg *engine.Config) (*Components, error) {
	tr, err := tracking.Open(cfg.TrackingFile)
	if err != nil {
		return nil, fmt.Errorf("open tracking store: %w", err)
	}

	st := store.New(cfg.OutputDirectory)
	feeds := sources.NewFeedReader(cfg.HTTPClient)
	audio := sources.NewAudioDownloader(cfg.HTTPClient, cfg.TempDirectory)
	video := sources.NewYouTube(sources.ExecRunner{}, cfg.YtdlpPath, cfg.TempDirectory)
	dg := sources.NewDeepgram(cfg)

	return &Components{
		Deps: Deps{
			Store:    st,
			Tracking: tr,
			Feeds:    feeds,
			Video:    video,
			Scraper:  scraper.New(feeds, audio, video, dg, st),
			Cache:    engine.NewCache(cfg.RedisURL, cfg.CacheTTL, cfg.CacheMaxEntries),
		},
		Transcriber: dg,
		Audio:       audio,
	}, nil
}

// Close releases the tracking store and the cache.
func (c *Components) Close() error {
	err := c.Tracking.Close()
	if cerr := c.Cache.Close(); err == nil {
		err = cerr
	}
	return err
}
