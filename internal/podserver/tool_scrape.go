package podserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_podcast/internal/engine/scraper"
)

// ScrapeInput is the input for scrape_podcast.
type ScrapeInput struct {
	Query        string `json:"query" jsonschema:"YouTube URL, RSS feed URL, direct audio URL, or search query for the episode"`
	PodcastName  string `json:"podcastName,omitempty" jsonschema:"Name of the podcast (for organization)"`
	EpisodeTitle string `json:"episodeTitle,omitempty" jsonschema:"Title of the episode (optional, auto-detected)"`
	Force        bool   `json:"force,omitempty" jsonschema:"Re-scrape even if the episode was already scraped"`
}

func (s *Server) scrapePodcast(ctx context.Context, in ScrapeInput) (string, error) {
	if strings.TrimSpace(in.Query) == "" {
		return "", fmt.Errorf("query is required")
	}
	res, err := s.scraper.Scrape(ctx, scraper.ScrapeRequest{
		Query:        in.Query,
		PodcastName:  in.PodcastName,
		EpisodeTitle: in.EpisodeTitle,
		Force:        in.Force,
	})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	switch res.Status {
	case scraper.StatusSkipped:
		sb.WriteString("⏭️ Episode already fully processed! Skipping...\n\n")
		writeEpisodeHeader(&sb, res.PodcastName, res.Title, res.Date)
		fmt.Fprintf(&sb, "**Location:** %s\n\n", res.Dir)
		sb.WriteString("Both transcript and summary exist. To re-scrape, set `force: true`")
		return sb.String(), nil

	case scraper.StatusTranscriptExists:
		sb.WriteString("📝 Transcript already exists (no summary yet)\n\n")
		writeEpisodeHeader(&sb, res.PodcastName, res.Title, res.Date)
		fmt.Fprintf(&sb, "**Location:** %s\n\n", res.Dir)
		sb.WriteString("Use `get_transcript` to read it, then `save_summary` after summarizing.\n")
		sb.WriteString("To re-scrape, set `force: true`")
		return sb.String(), nil
	}

	sb.WriteString("✅ Successfully transcribed!\n\n")
	writeEpisodeHeader(&sb, res.PodcastName, res.Title, res.Date)
	fmt.Fprintf(&sb, "**Source:** %s\n", res.Source)
	fmt.Fprintf(&sb, "**Words:** ~%d\n", res.WordCount)
	fmt.Fprintf(&sb, "**Transcript:** %s\n\n---\n\n", res.TranscriptPath)
	fmt.Fprintf(&sb, "**Preview:**\n%s\n\n---\n\n", res.Preview)
	sb.WriteString("**Next steps:**\n")
	sb.WriteString("1. Use `get_transcript` to read the full transcript\n")
	sb.WriteString("2. Summarize the content\n")
	sb.WriteString("3. Use `save_summary` to save your summary\n\n")
	fmt.Fprintf(&sb, "```\nget_transcript({\n  podcastName: %q,\n  episodeTitle: %q,\n  episodeDate: %q\n})\n```",
		res.PodcastName, res.Title, res.Date)
	return sb.String(), nil
}

func writeEpisodeHeader(sb *strings.Builder, podcast, title, date string) {
	fmt.Fprintf(sb, "**Podcast:** %s\n", podcast)
	fmt.Fprintf(sb, "**Episode:** %s\n", title)
	fmt.Fprintf(sb, "**Date:** %s\n", date)
}
