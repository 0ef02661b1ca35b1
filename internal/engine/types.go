package engine

import "time"

// --- Feed types ---

// Episode is a single podcast episode as read from a feed.
type Episode struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	PubDate     string     `json:"pub_date"`           // raw feed value, loosely formatted
	Published   *time.Time `json:"published,omitempty"` // parsed PubDate when the feed library managed it
	AudioURL    string     `json:"audio_url,omitempty"`
	Duration    string     `json:"duration,omitempty"`
	GUID        string     `json:"guid"`
}

// DateKey returns the episode date as YYYY-MM-DD, falling back to now when the
// publish date is missing or unparsable.
func (e Episode) DateKey(now time.Time) string {
	if e.Published != nil && !e.Published.IsZero() {
		return e.Published.UTC().Format(DateLayout)
	}
	return now.UTC().Format(DateLayout)
}

// Feed is a parsed podcast feed. Episodes keep feed order.
type Feed struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	Episodes    []Episode `json:"episodes"`
}

// DateLayout is the date format used in folder names and tool arguments.
const DateLayout = "2006-01-02"

// ValidDate reports whether s is a calendar date in DateLayout.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// Today returns the current date as YYYY-MM-DD.
func Today() string {
	return time.Now().UTC().Format(DateLayout)
}

// --- Video platform types ---

// VideoInfo describes a video search candidate or a fully resolved video.
type VideoInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Uploader    string `json:"uploader"`
	UploadDate  string `json:"upload_date,omitempty"` // YYYY-MM-DD
	Duration    int    `json:"duration"`              // seconds
	URL         string `json:"url"`
}

// --- Acquisition ---

// Source tags which path produced an episode's audio.
type Source string

const (
	SourceRSS     Source = "rss"
	SourceYouTube Source = "youtube"
)
