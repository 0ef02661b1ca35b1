package engine

import (
	"fmt"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
)

// MaxNameRunes caps a sanitized podcast name or episode title.
const MaxNameRunes = 100

var filenameReplacer = strings.NewReplacer(
	"<", "-", ">", "-", ":", "-", `"`, "-",
	"/", "-", `\`, "-", "|", "-", "?", "-", "*", "-",
)

// SanitizeFilename makes s safe as a single path element: filesystem-hostile characters
// become "-", whitespace runs collapse to one space, and the result is capped at
// MaxNameRunes runes.
func SanitizeFilename(s string) string {
	s = filenameReplacer.Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	s = TruncateRunes(s, MaxNameRunes, "")
	switch s {
	case "":
		return "Untitled"
	case ".", "..":
		return "-"
	}
	return s
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8.
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// FormatDuration renders seconds as "Xm Ys".
func FormatDuration(seconds int) string {
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}
