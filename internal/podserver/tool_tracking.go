package podserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_podcast/internal/engine/sources"
	"github.com/anatolykoptev/go_podcast/internal/toolutil"
)

// AddTrackingInput is the input for add_tracking.
type AddTrackingInput struct {
	PodcastName string `json:"podcastName" jsonschema:"Name of the podcast"`
	FeedURL     string `json:"feedUrl" jsonschema:"RSS feed URL of the podcast"`
}

// RemoveTrackingInput is the input for remove_tracking.
type RemoveTrackingInput struct {
	PodcastName string `json:"podcastName" jsonschema:"Name of the podcast to remove"`
}

type newEpisode struct {
	podcast, title, date, audioURL string
}

func (s *Server) checkNewEpisodes(ctx context.Context, _ struct{}) (string, error) {
	podcasts, err := s.tracking.List(ctx)
	if err != nil {
		return "", err
	}
	if len(podcasts) == 0 {
		return "No podcasts are being tracked. Use `add_tracking` to add podcasts first.", nil
	}

	var found []newEpisode
	var errs []string
	for _, p := range podcasts {
		if !p.Enabled {
			continue
		}
		if sources.IsYouTubeURL(p.FeedURL) {
			errs = append(errs, p.Name+": YouTube channel tracking not supported. Use RSS feeds instead.")
			continue
		}
		if err := s.poll.Wait(ctx); err != nil {
			return "", err
		}
		feed, err := s.feeds.Parse(ctx, p.FeedURL)
		if err != nil {
			slog.Warn("check_new_episodes: feed failed", slog.String("podcast", p.Name), slog.Any("error", err))
			errs = append(errs, fmt.Sprintf("%s: %v", p.Name, err))
			continue
		}

		var newestGUID string
		if len(feed.Episodes) > 0 {
			newestGUID = feed.Episodes[0].GUID
		}
		if err := s.tracking.MarkChecked(ctx, p.ID, newestGUID); err != nil {
			slog.Warn("check_new_episodes: mark checked failed", slog.String("podcast", p.Name), slog.Any("error", err))
		}

		for _, ep := range firstN(feed.Episodes, recentEpisodes) {
			if ep.AudioURL == "" {
				continue
			}
			date := ep.DateKey(s.now())
			if s.store.HasTranscript(p.Name, ep.Title, date) {
				continue
			}
			found = append(found, newEpisode{podcast: p.Name, title: ep.Title, date: date, audioURL: ep.AudioURL})
		}
	}

	if len(found) == 0 && len(errs) == 0 {
		return fmt.Sprintf("✅ All caught up! No new episodes found across %d tracked podcast(s).", len(podcasts)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## New Episodes Found: %d\n\n", len(found))
	if len(found) > 0 {
		for i, ep := range found {
			fmt.Fprintf(&sb, "### %d. %s\n", i+1, ep.podcast)
			fmt.Fprintf(&sb, "- **Episode:** %s\n", ep.title)
			fmt.Fprintf(&sb, "- **Date:** %s\n", ep.date)
			fmt.Fprintf(&sb, "- **Audio URL:** %s\n\n", ep.audioURL)
		}
		sb.WriteString("---\n\nTo scrape all these episodes, call `scrape_podcast` for each audio URL.\n")
	}
	if len(errs) > 0 {
		sb.WriteString("\n## Errors\n")
		for _, e := range errs {
			fmt.Fprintf(&sb, "- %s\n", e)
		}
	}
	return sb.String(), nil
}

func (s *Server) addTracking(ctx context.Context, in AddTrackingInput) (string, error) {
	name := strings.TrimSpace(in.PodcastName)
	feedURL := strings.TrimSpace(in.FeedURL)
	if name == "" || feedURL == "" {
		return "", errors.New("podcastName and feedUrl are required")
	}
	if sources.IsYouTubeURL(feedURL) {
		return "", toolutil.Failf("❌ YouTube URLs are not supported for tracking. Please provide an RSS feed URL.\n\n" +
			"To find a podcast's RSS feed:\n- Check the podcast's website\n- Use https://getrssfeed.com/\n- Look for \"RSS\" link on Apple Podcasts")
	}

	feed, err := s.feeds.Parse(ctx, feedURL)
	if err != nil {
		return "", toolutil.Failf("❌ Failed to validate RSS feed: %v\n\nMake sure the URL is a valid RSS feed.", err)
	}

	p, created, err := s.tracking.Add(ctx, name, feedURL)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if created {
		sb.WriteString("✅ Added podcast to tracking list!\n\n")
	} else {
		sb.WriteString("ℹ️ Podcast is already tracked.\n\n")
	}
	fmt.Fprintf(&sb, "**Podcast:** %s\n", p.Name)
	fmt.Fprintf(&sb, "**Feed URL:** %s\n", p.FeedURL)
	fmt.Fprintf(&sb, "**Episodes in feed:** %d\n\n", len(feed.Episodes))
	sb.WriteString("Use `check_new_episodes` to find new episodes to scrape.")
	return sb.String(), nil
}

func (s *Server) listTracking(ctx context.Context, _ struct{}) (string, error) {
	podcasts, err := s.tracking.List(ctx)
	if err != nil {
		return "", err
	}
	if len(podcasts) == 0 {
		return "No podcasts are currently being tracked.\n\nUse `add_tracking` to add a podcast.", nil
	}

	items := make([]string, 0, len(podcasts))
	for i, p := range podcasts {
		checked := p.LastChecked
		if checked == "" {
			checked = "Never"
		}
		item := fmt.Sprintf("%d. **%s**\n   - Feed: %s\n   - Last Checked: %s", i+1, p.Name, p.FeedURL, checked)
		if !p.Enabled {
			item += "\n   - Disabled"
		}
		items = append(items, item)
	}
	return fmt.Sprintf("## Tracked Podcasts (%d)\n\n%s", len(podcasts), strings.Join(items, "\n\n")), nil
}

func (s *Server) removeTracking(ctx context.Context, in RemoveTrackingInput) (string, error) {
	if strings.TrimSpace(in.PodcastName) == "" {
		return "", errors.New("podcastName is required")
	}
	removed, err := s.tracking.Remove(ctx, in.PodcastName)
	if err != nil {
		return "", err
	}
	if !removed {
		return fmt.Sprintf("❌ Podcast %q not found in tracking list.", in.PodcastName), nil
	}
	return fmt.Sprintf("✅ Removed %q from tracking list.", in.PodcastName), nil
}
