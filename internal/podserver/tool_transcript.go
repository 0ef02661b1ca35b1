package podserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_podcast/internal/engine"
	"github.com/anatolykoptev/go_podcast/internal/engine/store"
	"github.com/anatolykoptev/go_podcast/internal/toolutil"
)

// EpisodeRef names a stored episode.
type EpisodeRef struct {
	PodcastName  string `json:"podcastName" jsonschema:"Name of the podcast"`
	EpisodeTitle string `json:"episodeTitle" jsonschema:"Title of the episode"`
	EpisodeDate  string `json:"episodeDate" jsonschema:"Date of the episode (YYYY-MM-DD)"`
}

func (r EpisodeRef) validate() error {
	if r.PodcastName == "" || r.EpisodeTitle == "" || r.EpisodeDate == "" {
		return errors.New("podcastName, episodeTitle and episodeDate are required")
	}
	if !engine.ValidDate(r.EpisodeDate) {
		return toolutil.Failf("❌ Invalid episodeDate %q, expected YYYY-MM-DD.", r.EpisodeDate)
	}
	return nil
}

// SaveSummaryInput is the input for save_summary.
type SaveSummaryInput struct {
	PodcastName  string `json:"podcastName" jsonschema:"Name of the podcast"`
	EpisodeTitle string `json:"episodeTitle" jsonschema:"Title of the episode"`
	EpisodeDate  string `json:"episodeDate" jsonschema:"Date of the episode (YYYY-MM-DD)"`
	SummaryText  string `json:"summaryText" jsonschema:"The summary content in markdown format"`
}

// ListEpisodesInput is the input for list_episodes.
type ListEpisodesInput struct {
	PodcastName string `json:"podcastName" jsonschema:"Name of the podcast"`
}

func (s *Server) getTranscript(_ context.Context, in EpisodeRef) (string, error) {
	if err := in.validate(); err != nil {
		return "", err
	}
	transcript, err := s.store.ReadTranscript(in.PodcastName, in.EpisodeTitle, in.EpisodeDate)
	if errors.Is(err, store.ErrNotFound) {
		return "", toolutil.Failf("❌ Transcript not found for:\n- Podcast: %s\n- Episode: %s\n- Date: %s\n\nUse `scrape_podcast` to transcribe this episode first.",
			in.PodcastName, in.EpisodeTitle, in.EpisodeDate)
	}
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(transcript)
	sb.WriteString("\n---\n\n**After summarizing, save with:**\n")
	fmt.Fprintf(&sb, "```\nsave_summary({\n  podcastName: %q,\n  episodeTitle: %q,\n  episodeDate: %q,\n  summaryText: \"YOUR_SUMMARY_HERE\"\n})\n```",
		in.PodcastName, in.EpisodeTitle, in.EpisodeDate)
	return sb.String(), nil
}

func (s *Server) saveSummary(_ context.Context, in SaveSummaryInput) (string, error) {
	ref := EpisodeRef{PodcastName: in.PodcastName, EpisodeTitle: in.EpisodeTitle, EpisodeDate: in.EpisodeDate}
	if err := ref.validate(); err != nil {
		return "", err
	}
	if strings.TrimSpace(in.SummaryText) == "" {
		return "", errors.New("summaryText is required")
	}
	path, err := s.store.SaveSummary(in.PodcastName, in.EpisodeTitle, in.EpisodeDate, in.SummaryText)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("✅ Summary saved!\n\n")
	writeEpisodeHeader(&sb, in.PodcastName, in.EpisodeTitle, in.EpisodeDate)
	fmt.Fprintf(&sb, "**File:** %s", path)
	return sb.String(), nil
}

func (s *Server) listIncomplete(_ context.Context, _ struct{}) (string, error) {
	incomplete, err := s.store.FindIncompleteEpisodes()
	if err != nil {
		return "", err
	}
	if len(incomplete) == 0 {
		return "✅ All episodes are complete! No missing summaries found.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Episodes Missing Summaries: %d\n\n", len(incomplete))
	for i, ep := range incomplete {
		fmt.Fprintf(&sb, "### %d. %s\n", i+1, ep.Podcast)
		fmt.Fprintf(&sb, "- **Episode:** %s\n", ep.Title)
		fmt.Fprintf(&sb, "- **Date:** %s\n", ep.Date)
		fmt.Fprintf(&sb, "- **Transcript:** %s\n\n", ep.TranscriptPath())
	}
	sb.WriteString("---\n\nUse `get_transcript` to read each transcript, summarize it, then `save_summary` to save.\n")
	return sb.String(), nil
}

func (s *Server) listEpisodes(_ context.Context, in ListEpisodesInput) (string, error) {
	if in.PodcastName == "" {
		podcasts, err := s.store.ListPodcasts()
		if err != nil {
			return "", err
		}
		if len(podcasts) == 0 {
			return "No podcasts stored yet. Use `scrape_podcast` to add one.", nil
		}
		return "## Stored Podcasts\n\n- " + strings.Join(podcasts, "\n- ") + "\n", nil
	}

	eps, err := s.store.ListPodcastEpisodes(in.PodcastName)
	if err != nil {
		return "", err
	}
	if len(eps) == 0 {
		return fmt.Sprintf("No stored episodes for %q.", in.PodcastName), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s (%d episodes)\n\n", in.PodcastName, len(eps))
	for i, ep := range eps {
		fmt.Fprintf(&sb, "%d. **%s** (%s)\n", i+1, ep.Title, ep.Date)
		fmt.Fprintf(&sb, "   - Transcript: %s\n", yesNo(ep.HasTranscript))
		fmt.Fprintf(&sb, "   - Summary: %s\n", yesNo(ep.HasSummary))
	}
	return sb.String(), nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
