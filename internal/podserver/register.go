// Package podserver exposes podcast scraping, transcripts and tracking as MCP tools.
package podserver

import (
	"time"

	"github.com/anatolykoptev/go_podcast/internal/engine"
	"github.com/anatolykoptev/go_podcast/internal/engine/scraper"
	"github.com/anatolykoptev/go_podcast/internal/engine/store"
	"github.com/anatolykoptev/go_podcast/internal/engine/tracking"
	"github.com/anatolykoptev/go_podcast/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/time/rate"
)

// recentEpisodes is how many feed items check_new_episodes and search_podcast look at.
const recentEpisodes = 5

// Deps are the components the tools dispatch to.
type Deps struct {
	Store    *store.Store
	Tracking tracking.Store
	Feeds    scraper.FeedSource
	Video    scraper.VideoSource
	Scraper  *scraper.Scraper
	Cache    *engine.Cache // optional
}

// Server holds the tool handlers.
type Server struct {
	cfg      *engine.Config
	store    *store.Store
	tracking tracking.Store
	feeds    scraper.FeedSource
	video    scraper.VideoSource
	scraper  *scraper.Scraper
	cache    *engine.Cache
	poll     *rate.Limiter
	now      func() time.Time
}

// New builds a Server. Feed polling in check_new_episodes is spaced by
// cfg.FeedPollInterval; zero means no spacing.
func New(cfg *engine.Config, d Deps) *Server {
	limit := rate.Inf
	if cfg.FeedPollInterval > 0 {
		limit = rate.Every(cfg.FeedPollInterval)
	}
	return &Server{
		cfg:      cfg,
		store:    d.Store,
		tracking: d.Tracking,
		feeds:    d.Feeds,
		video:    d.Video,
		scraper:  d.Scraper,
		cache:    d.Cache,
		poll:     rate.NewLimiter(limit, 1),
		now:      time.Now,
	}
}

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 10

// RegisterTools registers every podcast tool on server.
func (s *Server) RegisterTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "scrape_podcast",
		Description: "Scrape a podcast episode and transcribe it. Accepts a YouTube URL, RSS feed URL (latest episode), direct audio URL, or search query. Returns the transcript file path and a preview. Use get_transcript to read it, then save_summary after summarizing.",
	}, toolutil.TextHandler("scrape_podcast", s.scrapePodcast))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_transcript",
		Description: "Read the transcript of a previously scraped episode. Use this to get the content for summarization.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, toolutil.TextHandler("get_transcript", s.getTranscript))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "save_summary",
		Description: "Save your generated summary to a markdown file next to the episode transcript.",
	}, toolutil.TextHandler("save_summary", s.saveSummary))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_new_episodes",
		Description: "Check all tracked podcasts for recent episodes that have not been transcribed yet.",
	}, toolutil.TextHandler("check_new_episodes", s.checkNewEpisodes))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_incomplete",
		Description: "List all episodes that have transcripts but are missing summaries. Use this to find episodes that need summarization.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, toolutil.TextHandler("list_incomplete", s.listIncomplete))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_episodes",
		Description: "List stored episodes for one podcast, newest first, with transcript and summary status.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, toolutil.TextHandler("list_episodes", s.listEpisodes))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_podcast",
		Description: "Search for podcasts or episodes on YouTube, or parse an RSS feed URL to see available episodes. Source: youtube, rss, or all (default).",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, toolutil.TextHandler("search_podcast", s.searchPodcast))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_tracking",
		Description: "Add a podcast RSS feed to the tracking list. The feed is fetched once to validate it. Use check_new_episodes to find new episodes.",
	}, toolutil.TextHandler("add_tracking", s.addTracking))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_tracking",
		Description: "List all podcasts currently being tracked.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, toolutil.TextHandler("list_tracking", s.listTracking))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_tracking",
		Description: "Remove a podcast from the tracking list by name (case-insensitive).",
	}, toolutil.TextHandler("remove_tracking", s.removeTracking))
}
