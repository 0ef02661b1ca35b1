// Package store keeps transcripts and summaries on disk, one folder per episode.
//
// The directory tree is the only state: there is no index, and every listing rescans
// the output root. Layout:
//
//	<root>/<podcast>/<YYYY-MM-DD> - <title>/transcript.md
//	<root>/<podcast>/<YYYY-MM-DD> - <title>/summary.md
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/anatolykoptev/go_podcast/internal/engine"
)

const (
	TranscriptFile = "transcript.md"
	SummaryFile    = "summary.md"
)

var (
	// ErrNotFound is returned when an episode has no transcript on disk.
	ErrNotFound = errors.New("transcript not found")
	// ErrInvalidDate is returned when writing under a date that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("episode date must be YYYY-MM-DD")
)

var episodeFolderRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}) - (.+)$`)

// Store reads and writes episode artifacts under a single output root.
type Store struct {
	root string
}

// New returns a store rooted at dir. The directory is created lazily on first write.
func New(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the output directory.
func (s *Store) Root() string { return s.root }

// EpisodeDir returns the folder for (podcast, title, date). Same inputs, same path.
// Every component is sanitized, so the result always stays two levels below the root.
func (s *Store) EpisodeDir(podcast, title, date string) string {
	folder := engine.SanitizeFilename(date) + " - " + engine.SanitizeFilename(title)
	return filepath.Join(s.root, engine.SanitizeFilename(podcast), folder)
}

// SaveTranscript writes transcript.md, overwriting any previous one, and returns its path.
func (s *Store) SaveTranscript(podcast, title, date, transcript string) (string, error) {
	content := fmt.Sprintf("# %s\n\n**Podcast:** %s  \n**Date:** %s\n\n---\n\n## Transcript\n\n%s\n",
		title, podcast, date, transcript)
	return s.write(podcast, title, date, TranscriptFile, content)
}

// SaveSummary writes summary.md, overwriting any previous one, and returns its path.
func (s *Store) SaveSummary(podcast, title, date, summary string) (string, error) {
	content := fmt.Sprintf("# %s - Summary\n\n**Podcast:** %s  \n**Date:** %s\n\n---\n\n%s\n",
		title, podcast, date, summary)
	return s.write(podcast, title, date, SummaryFile, content)
}

func (s *Store) write(podcast, title, date, name, content string) (string, error) {
	if !engine.ValidDate(date) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	dir := s.EpisodeDir(podcast, title, date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create episode dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}

// HasTranscript reports whether transcript.md exists for the episode.
func (s *Store) HasTranscript(podcast, title, date string) bool {
	return fileExists(filepath.Join(s.EpisodeDir(podcast, title, date), TranscriptFile))
}

// HasSummary reports whether summary.md exists for the episode.
func (s *Store) HasSummary(podcast, title, date string) bool {
	return fileExists(filepath.Join(s.EpisodeDir(podcast, title, date), SummaryFile))
}

// IsEpisodeScraped is true only when both transcript and summary exist.
func (s *Store) IsEpisodeScraped(podcast, title, date string) bool {
	return s.HasTranscript(podcast, title, date) && s.HasSummary(podcast, title, date)
}

// ReadTranscript returns the stored transcript markdown, or ErrNotFound.
func (s *Store) ReadTranscript(podcast, title, date string) (string, error) {
	path := filepath.Join(s.EpisodeDir(podcast, title, date), TranscriptFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	return string(data), nil
}

// EpisodeEntry is one episode folder found by a directory scan.
type EpisodeEntry struct {
	Podcast       string `json:"podcast"`
	Title         string `json:"title"` // sanitized, as stored in the folder name
	Date          string `json:"date"`
	HasTranscript bool   `json:"has_transcript"`
	HasSummary    bool   `json:"has_summary"`
	Path          string `json:"path"`
}

// TranscriptPath returns the transcript location inside the episode folder.
func (e EpisodeEntry) TranscriptPath() string {
	return filepath.Join(e.Path, TranscriptFile)
}

// ListPodcasts returns the podcast folder names under the root. A missing root is empty.
func (s *Store) ListPodcasts() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list podcasts: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// ListPodcastEpisodes scans one podcast folder, newest first. Folders that do not look
// like "YYYY-MM-DD - title" are skipped.
func (s *Store) ListPodcastEpisodes(podcast string) ([]EpisodeEntry, error) {
	name := engine.SanitizeFilename(podcast)
	dir := filepath.Join(s.root, name)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}

	var out []EpisodeEntry
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m := episodeFolderRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		path := filepath.Join(dir, e.Name())
		out = append(out, EpisodeEntry{
			Podcast:       name,
			Date:          m[1],
			Title:         m[2],
			HasTranscript: fileExists(filepath.Join(path, TranscriptFile)),
			HasSummary:    fileExists(filepath.Join(path, SummaryFile)),
			Path:          path,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

// FindIncompleteEpisodes returns every episode with a transcript but no summary.
func (s *Store) FindIncompleteEpisodes() ([]EpisodeEntry, error) {
	podcasts, err := s.ListPodcasts()
	if err != nil {
		return nil, err
	}
	var out []EpisodeEntry
	for _, p := range podcasts {
		eps, err := s.ListPodcastEpisodes(p)
		if err != nil {
			return nil, err
		}
		for _, ep := range eps {
			if ep.HasTranscript && !ep.HasSummary {
				out = append(out, ep)
			}
		}
	}
	return out, nil
}

// CleanupTempFile removes a downloaded audio file. Failures are logged only.
func CleanupTempFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("cleanup: temp file not removed", slog.String("path", path), slog.Any("error", err))
	}
}

// ResetTempDir empties dir and recreates it. Failures are logged only.
func ResetTempDir(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("cleanup: temp dir not removed", slog.String("dir", dir), slog.Any("error", err))
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		slog.Warn("cleanup: temp dir not created", slog.String("dir", dir), slog.Any("error", err))
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
