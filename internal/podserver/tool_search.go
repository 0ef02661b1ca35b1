package podserver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_podcast/internal/engine"
)

// SearchInput is the input for search_podcast.
type SearchInput struct {
	Query  string `json:"query" jsonschema:"Search query for YouTube, or RSS feed URL to parse"`
	Source string `json:"source,omitempty" jsonschema:"Source to search: youtube, rss, or all (default all)"`
}

func (s *Server) searchPodcast(ctx context.Context, in SearchInput) (string, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return "", fmt.Errorf("query is required")
	}
	source := strings.ToLower(strings.TrimSpace(in.Source))
	switch source {
	case "":
		source = "all"
	case "youtube", "rss", "all":
	default:
		return "", fmt.Errorf("invalid source %q (valid: youtube, rss, all)", in.Source)
	}

	var lines []string

	if source == "youtube" || source == "all" {
		videos, err := s.searchYouTube(ctx, query)
		switch {
		case err != nil:
			lines = append(lines, fmt.Sprintf("YouTube search error: %v\n", err))
		case len(videos) > 0:
			lines = append(lines, "## YouTube Results\n")
			for i, v := range videos {
				date := v.UploadDate
				if date == "" {
					date = "Unknown"
				}
				lines = append(lines,
					fmt.Sprintf("%d. **%s**", i+1, v.Title),
					"   - Channel: "+v.Uploader,
					"   - Date: "+date,
					"   - Duration: "+engine.FormatDuration(v.Duration),
					"   - URL: "+v.URL,
					"")
			}
		}
	}

	if source == "rss" || source == "all" {
		switch {
		case strings.HasPrefix(query, "http"):
			feed, err := s.feeds.Parse(ctx, query)
			if err != nil {
				lines = append(lines, fmt.Sprintf("RSS parse error: %v\n", err))
				break
			}
			lines = append(lines, "## RSS Feed Results\n", fmt.Sprintf("**Podcast:** %s\n", feed.Title), "**Recent Episodes:**\n")
			for i, ep := range firstN(feed.Episodes, recentEpisodes) {
				audio := ep.AudioURL
				if audio == "" {
					audio = "Not available"
				}
				lines = append(lines,
					fmt.Sprintf("%d. **%s**", i+1, ep.Title),
					"   - Date: "+ep.PubDate,
					"   - Audio URL: "+audio,
					"")
			}
		case source == "rss":
			lines = append(lines,
				"💡 **Tip:** Provide a direct RSS feed URL to parse it.",
				"Find podcast RSS feeds at: https://getrssfeed.com/\n")
		}
	}

	if len(lines) == 0 {
		return fmt.Sprintf("No results found for: %q", query), nil
	}
	return strings.Join(lines, "\n"), nil
}

// searchYouTube returns cached candidates when available.
func (s *Server) searchYouTube(ctx context.Context, query string) ([]engine.VideoInfo, error) {
	key := engine.CacheKey("search_podcast", "youtube", strings.ToLower(query))
	if videos, ok := engine.CacheLoadJSON[[]engine.VideoInfo](ctx, s.cache, key); ok {
		return videos, nil
	}
	videos, err := s.video.Search(ctx, query, recentEpisodes)
	if err != nil {
		return nil, err
	}
	if len(videos) > 0 {
		engine.CacheStoreJSON(ctx, s.cache, key, videos)
	}
	slog.Debug("search_podcast: youtube", slog.String("query", query), slog.Int("results", len(videos)))
	return videos, nil
}

func firstN[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
