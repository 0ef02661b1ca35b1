// podcastctl runs the go_podcast pipeline from the command line, without an MCP client.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go_podcast/internal/engine"
	"github.com/anatolykoptev/go_podcast/internal/engine/scraper"
	"github.com/anatolykoptev/go_podcast/internal/engine/sources"
	"github.com/anatolykoptev/go_podcast/internal/podserver"
	"github.com/urfave/cli/v2"
)

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitDataError    = 3
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitGeneralError)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "podcastctl",
		Usage:   "Scrape, transcribe and inspect podcast episodes",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:      "latest",
				Usage:     "Show the latest episode of an RSS feed",
				ArgsUsage: "<feed-url>",
				Action:    latestEpisode,
			},
			{
				Name:      "transcribe",
				Usage:     "Transcribe a local audio file and save the transcript",
				ArgsUsage: "<audio-file> <podcast> <title> <YYYY-MM-DD>",
				Action:    transcribeFile,
			},
			{
				Name:      "scrape",
				Usage:     "Scrape an episode from a YouTube URL, feed URL, audio URL or search query",
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "podcast", Aliases: []string{"p"}, Usage: "Podcast name override"},
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Episode title override"},
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Re-scrape even if already processed"},
				},
				Action: scrapeQuery,
			},
			{
				Name:   "incomplete",
				Usage:  "List episodes with a transcript but no summary",
				Action: listIncomplete,
			},
		},
	}
}

func build() (*podserver.Components, error) {
	cfg, err := engine.LoadConfig()
	if err != nil {
		return nil, cli.Exit(err.Error(), ExitDataError)
	}
	comps, err := podserver.Build(cfg)
	if err != nil {
		return nil, cli.Exit(err.Error(), ExitDataError)
	}
	return comps, nil
}

func latestEpisode(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: podcastctl latest <feed-url>", ExitUsageError)
	}
	comps, err := build()
	if err != nil {
		return err
	}
	defer comps.Close()

	feed, err := comps.Feeds.Parse(c.Context, c.Args().Get(0))
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	ep := sources.LatestEpisode(feed)
	if ep == nil {
		return cli.Exit("feed has no episodes", ExitDataError)
	}

	fmt.Printf("Podcast:  %s\n", feed.Title)
	fmt.Printf("Title:    %s\n", ep.Title)
	fmt.Printf("Date:     %s\n", ep.DateKey(time.Now()))
	fmt.Printf("Duration: %s\n", orUnknown(ep.Duration))
	fmt.Printf("Audio:    %s\n", orUnknown(ep.AudioURL))
	fmt.Printf("GUID:     %s\n", ep.GUID)
	return nil
}

func transcribeFile(c *cli.Context) error {
	if c.NArg() < 4 {
		return cli.Exit("Usage: podcastctl transcribe <audio-file> <podcast> <title> <YYYY-MM-DD>", ExitUsageError)
	}
	comps, err := build()
	if err != nil {
		return err
	}
	defer comps.Close()

	args := c.Args()
	text, err := comps.Transcriber.Transcribe(c.Context, args.Get(0))
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	path, err := comps.Store.SaveTranscript(args.Get(1), args.Get(2), args.Get(3), text)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	fmt.Printf("Saved %d words to %s\n", engine.WordCount(text), path)
	return nil
}

func scrapeQuery(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Usage: podcastctl scrape <query>", ExitUsageError)
	}
	comps, err := build()
	if err != nil {
		return err
	}
	defer comps.Close()

	res, err := comps.Scraper.Scrape(c.Context, scraper.ScrapeRequest{
		Query:        c.Args().Get(0),
		PodcastName:  c.String("podcast"),
		EpisodeTitle: c.String("title"),
		Force:        c.Bool("force"),
	})
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}

	switch res.Status {
	case scraper.StatusSkipped:
		fmt.Printf("Already processed: %s\n", res.Dir)
	case scraper.StatusTranscriptExists:
		fmt.Printf("Transcript exists (no summary yet): %s\n", res.Dir)
	default:
		fmt.Printf("Transcribed %q (%s, ~%d words)\n%s\n", res.Title, res.Source, res.WordCount, res.TranscriptPath)
	}
	return nil
}

func listIncomplete(c *cli.Context) error {
	comps, err := build()
	if err != nil {
		return err
	}
	defer comps.Close()

	eps, err := comps.Store.FindIncompleteEpisodes()
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}
	if len(eps) == 0 {
		fmt.Println("All episodes have summaries.")
		return nil
	}
	for _, ep := range eps {
		fmt.Printf("%s\t%s\t%s\n", ep.Podcast, ep.Date, ep.Title)
	}
	return nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
