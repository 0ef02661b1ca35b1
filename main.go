// go_podcast: podcast ingestion MCP server.
//
// Scrapes episodes from YouTube, RSS feeds or direct audio URLs, transcribes them with
// Deepgram and keeps transcripts and summaries as markdown on disk. Also tracks RSS
// feeds for new episodes.
// Runs as HTTP MCP server or stdio transport (MCP_TRANSPORT=stdio).
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_podcast/internal/engine"
	"github.com/anatolykoptev/go_podcast/internal/engine/store"
	"github.com/anatolykoptev/go_podcast/internal/podserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var version = "dev"

func main() {
	// stdout carries the MCP stream in stdio mode.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := engine.LoadConfig()
	if err != nil {
		slog.Error("config failed", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.DeepgramAPIKey == "" {
		slog.Warn("DEEPGRAM_API_KEY not set, scrape_podcast will fail until configured")
	}

	store.ResetTempDir(cfg.TempDirectory)

	comps, err := podserver.Build(cfg)
	if err != nil {
		slog.Error("init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer comps.Close()

	slog.Info("starting go_podcast",
		slog.String("transport", cfg.MCPTransport),
		slog.String("port", cfg.MCPPort),
		slog.String("output", cfg.OutputDirectory),
		slog.String("tracking", cfg.TrackingFile),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_podcast",
		Version: version,
	}, nil)

	podserver.New(cfg, comps.Deps).RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", podserver.ToolCount))

	if cfg.MCPTransport == "stdio" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			slog.Error("stdio server failed", slog.Any("error", err))
		}
		return
	}

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_podcast",
		Version:      version,
		Port:         cfg.MCPPort,
		WriteTimeout: 30 * time.Minute,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}
