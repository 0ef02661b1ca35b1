package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpisodeDir_HostileNames(t *testing.T) {
	s := New("/out")
	tests := []struct {
		podcast, title string
	}{
		{`AC/DC: Live?`, `Ep 1: "Who" <cares> | *really* \ now`},
		{"Tabs\tand\n\nnewlines", "   padded   title   "},
		{strings.Repeat("p", 300), strings.Repeat("é:", 150)},
	}
	for _, tt := range tests {
		dir := s.EpisodeDir(tt.podcast, tt.title, "2024-01-02")
		rel, err := filepath.Rel("/out", dir)
		require.NoError(t, err)

		parts := strings.Split(rel, string(filepath.Separator))
		require.Len(t, parts, 2, "podcast/episode, got %q", rel)

		title := strings.TrimPrefix(parts[1], "2024-01-02 - ")
		for _, name := range []string{parts[0], title} {
			assert.False(t, strings.ContainsAny(name, `<>:"/\|?*`), "hostile char in %q", name)
			assert.LessOrEqual(t, utf8.RuneCountInString(name), 100)
		}
	}
}

func TestEpisodeDir_HostileDates(t *testing.T) {
	s := New("/out")
	for _, date := range []string{"../../escaped", "2024/01/02", `..\..\x`, "a:b?"} {
		dir := s.EpisodeDir("Pod", "Ep", date)
		rel, err := filepath.Rel("/out", dir)
		require.NoError(t, err)
		parts := strings.Split(rel, string(filepath.Separator))
		require.Len(t, parts, 2, "date %q escaped the podcast folder: %q", date, rel)
		assert.Equal(t, "Pod", parts[0])
		assert.False(t, strings.ContainsAny(parts[1], `<>:"/\|?*`), "hostile char in %q", parts[1])
	}
}

func TestSave_RejectsInvalidDate(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")
	s := New(root)

	for _, date := range []string{"../../escaped", "2024/01/02", "2024-02-30", ""} {
		_, err := s.SaveSummary("Pod", "Ep", date, "s")
		assert.ErrorIs(t, err, ErrInvalidDate, "date %q", date)
		_, err = s.SaveTranscript("Pod", "Ep", date, "t")
		assert.ErrorIs(t, err, ErrInvalidDate, "date %q", date)
	}
	assert.NoDirExists(t, root)
	assert.NoDirExists(t, filepath.Join(filepath.Dir(root), "escaped - Ep"))
}

func TestEpisodeDir_Deterministic(t *testing.T) {
	s := New("/out")
	a := s.EpisodeDir("Pod", "Title", "2024-05-06")
	b := s.EpisodeDir("Pod", "Title", "2024-05-06")
	assert.Equal(t, a, b)
	assert.Equal(t, filepath.Join("/out", "Pod", "2024-05-06 - Title"), a)
}

func TestHasTranscript_BeforeAndAfterSave(t *testing.T) {
	for _, text := range []string{"", "hello world", "multi\n\nline"} {
		s := New(t.TempDir())
		assert.False(t, s.HasTranscript("Pod", "Ep", "2024-01-01"))

		path, err := s.SaveTranscript("Pod", "Ep", "2024-01-01", text)
		require.NoError(t, err)
		assert.True(t, s.HasTranscript("Pod", "Ep", "2024-01-01"))
		assert.FileExists(t, path)
		assert.False(t, s.HasSummary("Pod", "Ep", "2024-01-01"))
		assert.False(t, s.IsEpisodeScraped("Pod", "Ep", "2024-01-01"))
	}
}

func TestSaveTranscript_Format(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.SaveTranscript("My Pod", "Great Ep", "2024-03-04", "Words here.")
	require.NoError(t, err)

	got, err := s.ReadTranscript("My Pod", "Great Ep", "2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, "# Great Ep\n\n**Podcast:** My Pod  \n**Date:** 2024-03-04\n\n---\n\n## Transcript\n\nWords here.\n", got)
}

func TestSaveSummary_Overwrites(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.SaveSummary("Pod", "Ep", "2024-01-01", "first")
	require.NoError(t, err)
	path, err := s.SaveSummary("Pod", "Ep", "2024-01-01", "second")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Ep - Summary\n\n**Podcast:** Pod  \n**Date:** 2024-01-01\n\n---\n\nsecond\n", string(data))
}

func TestReadTranscript_NotFound(t *testing.T) {
	_, err := New(t.TempDir()).ReadTranscript("Nope", "Missing", "2020-01-01")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListPodcastEpisodes(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	_, err := s.SaveTranscript("Pod", "Older", "2023-12-31", "x")
	require.NoError(t, err)
	_, err = s.SaveTranscript("Pod", "Newer", "2024-06-01", "x")
	require.NoError(t, err)
	_, err = s.SaveSummary("Pod", "Newer", "2024-06-01", "y")
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "Pod", "notes"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Pod", "2024-6-1 - bad date"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Pod", "2024-01-01 - a file"), nil, 0o644))

	eps, err := s.ListPodcastEpisodes("Pod")
	require.NoError(t, err)
	require.Len(t, eps, 2)

	assert.Equal(t, "Newer", eps[0].Title)
	assert.Equal(t, "2024-06-01", eps[0].Date)
	assert.True(t, eps[0].HasSummary)
	assert.Equal(t, "Older", eps[1].Title)
	assert.True(t, eps[1].HasTranscript)
	assert.False(t, eps[1].HasSummary)

	none, err := s.ListPodcastEpisodes("Unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFindIncompleteEpisodes(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.SaveTranscript("A", "Needs summary", "2024-01-01", "t")
	require.NoError(t, err)
	_, err = s.SaveTranscript("B", "Done", "2024-01-02", "t")
	require.NoError(t, err)
	_, err = s.SaveSummary("B", "Done", "2024-01-02", "s")
	require.NoError(t, err)

	inc, err := s.FindIncompleteEpisodes()
	require.NoError(t, err)
	require.Len(t, inc, 1)
	assert.Equal(t, "A", inc[0].Podcast)
	assert.Equal(t, "Needs summary", inc[0].Title)
	assert.FileExists(t, inc[0].TranscriptPath())
}

func TestFindIncompleteEpisodes_ReflectsWritesImmediately(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.SaveTranscript("Pod", "Ep", "2024-02-02", "t")
	require.NoError(t, err)

	inc, err := s.FindIncompleteEpisodes()
	require.NoError(t, err)
	require.Len(t, inc, 1)

	_, err = s.SaveSummary("Pod", "Ep", "2024-02-02", "s")
	require.NoError(t, err)

	inc, err = s.FindIncompleteEpisodes()
	require.NoError(t, err)
	assert.Empty(t, inc)

	eps, err := s.ListPodcastEpisodes("Pod")
	require.NoError(t, err)
	require.Len(t, eps, 1)
	assert.True(t, eps[0].HasSummary)
}

func TestListPodcasts_MissingRoot(t *testing.T) {
	names, err := New(filepath.Join(t.TempDir(), "absent")).ListPodcasts()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestCleanup(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "temp")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	f := filepath.Join(dir, "a.mp3")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))

	CleanupTempFile(f)
	assert.NoFileExists(t, f)
	CleanupTempFile(f) // already gone: no panic, no error
	CleanupTempFile("")

	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))
	ResetTempDir(dir)
	assert.DirExists(t, dir)
	assert.NoFileExists(t, f)
}
