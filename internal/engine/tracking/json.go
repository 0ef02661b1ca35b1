package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// JSONStore keeps tracking data in a single indented JSON file. Every mutation reads
// the whole file, changes it in memory and rewrites it.
type JSONStore struct {
	path string
}

// NewJSONStore returns a store backed by path. The file is created on first write.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Load reads the file. A missing or unparsable file is an empty list, not an error.
func (s *JSONStore) Load(_ context.Context) (Data, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Data{}, nil
	}
	if err != nil {
		return Data{}, fmt.Errorf("tracking: read %s: %w", s.path, err)
	}
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		slog.Warn("tracking: corrupt file, starting empty", slog.String("path", s.path), slog.Any("error", err))
		return Data{}, nil
	}
	return d, nil
}

func (s *JSONStore) save(d Data) error {
	if d.Podcasts == nil {
		d.Podcasts = []Podcast{}
	}
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("tracking: mkdir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("tracking: write %s: %w", s.path, err)
	}
	return nil
}

func (s *JSONStore) List(ctx context.Context) ([]Podcast, error) {
	d, err := s.Load(ctx)
	return d.Podcasts, err
}

func (s *JSONStore) Add(ctx context.Context, name, feedURL string) (Podcast, bool, error) {
	d, err := s.Load(ctx)
	if err != nil {
		return Podcast{}, false, err
	}
	if existing, ok := findDuplicate(d.Podcasts, name, feedURL); ok {
		return existing, false, nil
	}
	p := newPodcast(name, feedURL)
	d.Podcasts = append(d.Podcasts, p)
	if err := s.save(d); err != nil {
		return Podcast{}, false, err
	}
	return p, true, nil
}

func (s *JSONStore) Remove(ctx context.Context, name string) (bool, error) {
	d, err := s.Load(ctx)
	if err != nil {
		return false, err
	}
	kept := d.Podcasts[:0]
	for _, p := range d.Podcasts {
		if !strings.EqualFold(p.Name, name) {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(d.Podcasts) {
		return false, nil
	}
	d.Podcasts = kept
	return true, s.save(d)
}

func (s *JSONStore) MarkChecked(ctx context.Context, id, guid string) error {
	d, err := s.Load(ctx)
	if err != nil {
		return err
	}
	for i := range d.Podcasts {
		if d.Podcasts[i].ID != id {
			continue
		}
		d.Podcasts[i].LastChecked = nowStamp()
		if guid != "" {
			d.Podcasts[i].LastEpisodeGUID = guid
		}
		return s.save(d)
	}
	return nil
}

// Close is a no-op; the file is not held open.
func (s *JSONStore) Close() error { return nil }
