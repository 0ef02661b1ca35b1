// Package tracking persists the list of podcasts checked for new episodes.
package tracking

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Podcast is one tracked feed.
type Podcast struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	FeedURL         string `json:"feedUrl"`
	Enabled         bool   `json:"enabled"`
	LastChecked     string `json:"lastChecked,omitempty"` // RFC3339
	LastEpisodeGUID string `json:"lastEpisodeGuid,omitempty"`
}

// Data is the whole persisted document.
type Data struct {
	Podcasts []Podcast `json:"podcasts"`
}

// Store is the tracking backend. Implementations do not lock across processes;
// concurrent writers are last-writer-wins.
type Store interface {
	Load(ctx context.Context) (Data, error)
	List(ctx context.Context) ([]Podcast, error)
	// Add appends a podcast unless one with the same name (case-insensitive) or the
	// same feed URL exists, in which case that record is returned with created=false.
	Add(ctx context.Context, name, feedURL string) (p Podcast, created bool, err error)
	// Remove deletes every podcast whose name matches case-insensitively.
	Remove(ctx context.Context, name string) (bool, error)
	// MarkChecked stamps lastChecked and, when guid is non-empty, lastEpisodeGuid.
	MarkChecked(ctx context.Context, id, guid string) error
	Close() error
}

// Open picks the backend from the path: .db/.sqlite/.sqlite3 use SQLite, anything
// else is a JSON file.
func Open(path string) (Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLite(path)
	}
	return NewJSONStore(path), nil
}

func newPodcast(name, feedURL string) Podcast {
	return Podcast{
		ID:      uuid.NewString(),
		Name:    name,
		FeedURL: feedURL,
		Enabled: true,
	}
}

func findDuplicate(podcasts []Podcast, name, feedURL string) (Podcast, bool) {
	for _, p := range podcasts {
		if strings.EqualFold(p.Name, name) || p.FeedURL == feedURL {
			return p, true
		}
	}
	return Podcast{}, false
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
