package engine

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Huberman Lab", "Huberman Lab"},
		{"hostile chars", `a<b>c:d"e/f\g|h?i*j`, "a-b-c-d-e-f-g-h-i-j"},
		{"whitespace collapse", "  Episode \t 12\n\nPart  2 ", "Episode 12 Part 2"},
		{"colon title", "Ep. 42: The Answer?", "Ep. 42- The Answer-"},
		{"empty", "", "Untitled"},
		{"only spaces", "   ", "Untitled"},
		{"dot dot", "..", "-"},
		{"unicode kept", "Подкаст № 5", "Подкаст № 5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilename_NoHostileCharsAndBounded(t *testing.T) {
	inputs := []string{
		strings.Repeat(`<>:"/\|?*`, 50),
		strings.Repeat("very long episode title ", 20),
		"What/Why: A <Deep> Dive | Part *1*?",
		strings.Repeat("é", 250),
	}
	for _, in := range inputs {
		got := SanitizeFilename(in)
		if strings.ContainsAny(got, `<>:"/\|?*`) {
			t.Errorf("hostile char left in %q", got)
		}
		if n := utf8.RuneCountInString(got); n > MaxNameRunes {
			t.Errorf("len(%q) = %d runes, want <= %d", got, n, MaxNameRunes)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	got := TruncateRunes("héllo wörld", 5, "...")
	if !utf8.ValidString(got) {
		t.Fatalf("invalid UTF-8: %q", got)
	}
	if !strings.HasPrefix(got, "hé") || !strings.HasSuffix(got, "...") {
		t.Errorf("got %q, want a cut prefix ending in ...", got)
	}
	if n := utf8.RuneCountInString(got); n > 8 {
		t.Errorf("got %d runes, want <= 8", n)
	}
	if got := TruncateRunes("short", 10, "..."); got != "short" {
		t.Errorf("short input changed: %q", got)
	}
}

func TestWordCount(t *testing.T) {
	if n := WordCount(""); n != 0 {
		t.Errorf("WordCount(\"\") = %d, want 0", n)
	}
	if n := WordCount(" one two\nthree\tfour "); n != 4 {
		t.Errorf("WordCount = %d, want 4", n)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{3665, "61m 5s"},
		{0, "0m 0s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.secs); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestValidDate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2024-03-01", true},
		{"2024-02-30", false},
		{"2024/03/01", false},
		{"../../x", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidDate(tt.in); got != tt.want {
			t.Errorf("ValidDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEpisodeDateKey(t *testing.T) {
	now := time.Date(2024, 12, 14, 10, 0, 0, 0, time.UTC)

	pub := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	if got := (Episode{Published: &pub}).DateKey(now); got != "2024-03-01" {
		t.Errorf("published DateKey = %q, want 2024-03-01", got)
	}
	if got := (Episode{PubDate: "garbage"}).DateKey(now); got != "2024-12-14" {
		t.Errorf("fallback DateKey = %q, want 2024-12-14", got)
	}
}
