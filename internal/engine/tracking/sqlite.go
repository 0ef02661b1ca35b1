package tracking

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps tracked podcasts in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("tracking: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("tracking: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("tracking: init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS podcasts (
		seq               INTEGER PRIMARY KEY AUTOINCREMENT,
		id                TEXT NOT NULL UNIQUE,
		name              TEXT NOT NULL,
		feed_url          TEXT NOT NULL,
		enabled           INTEGER NOT NULL DEFAULT 1,
		last_checked      TEXT NOT NULL DEFAULT '',
		last_episode_guid TEXT NOT NULL DEFAULT ''
	)`)
	return err
}

func (s *SQLiteStore) Load(ctx context.Context) (Data, error) {
	ps, err := s.List(ctx)
	return Data{Podcasts: ps}, err
}

// List returns podcasts in insertion order.
func (s *SQLiteStore) List(ctx context.Context) ([]Podcast, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, feed_url, enabled, last_checked, last_episode_guid
		 FROM podcasts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("tracking: query: %w", err)
	}
	defer rows.Close()

	var out []Podcast
	for rows.Next() {
		var p Podcast
		if err := rows.Scan(&p.ID, &p.Name, &p.FeedURL, &p.Enabled, &p.LastChecked, &p.LastEpisodeGUID); err != nil {
			return nil, fmt.Errorf("tracking: scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Add(ctx context.Context, name, feedURL string) (Podcast, bool, error) {
	existing, err := s.List(ctx)
	if err != nil {
		return Podcast{}, false, err
	}
	if p, ok := findDuplicate(existing, name, feedURL); ok {
		return p, false, nil
	}
	p := newPodcast(name, feedURL)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO podcasts (id, name, feed_url, enabled) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.FeedURL, p.Enabled)
	if err != nil {
		return Podcast{}, false, fmt.Errorf("tracking: insert: %w", err)
	}
	return p, true, nil
}

func (s *SQLiteStore) Remove(ctx context.Context, name string) (bool, error) {
	// lower() in SQLite folds ASCII only, so match in Go for parity with the JSON store.
	ps, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	removed := false
	for _, p := range ps {
		if !strings.EqualFold(p.Name, name) {
			continue
		}
		if _, err := s.db.ExecContext(ctx, `DELETE FROM podcasts WHERE id = ?`, p.ID); err != nil {
			return removed, fmt.Errorf("tracking: delete: %w", err)
		}
		removed = true
	}
	return removed, nil
}

func (s *SQLiteStore) MarkChecked(ctx context.Context, id, guid string) error {
	var err error
	if guid != "" {
		_, err = s.db.ExecContext(ctx,
			`UPDATE podcasts SET last_checked = ?, last_episode_guid = ? WHERE id = ?`,
			nowStamp(), guid, id)
	} else {
		_, err = s.db.ExecContext(ctx,
			`UPDATE podcasts SET last_checked = ? WHERE id = ?`, nowStamp(), id)
	}
	if err != nil {
		return fmt.Errorf("tracking: update: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
