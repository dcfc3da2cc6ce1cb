package organize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugStrip     = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
	hyphenRuns    = regexp.MustCompile(`-{2,}`)
	componentSafe = regexp.MustCompile(`[/\\:*?"<>|]`)
	// Strips combining marks after NFD decomposition, so "Kroatien" survives
	// "Kroatîen"-style input and umlauts fold to their base letters.
	asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Slugify turns free text into a directory-name-safe slug: whitespace
// becomes hyphens, diacritics are folded to ASCII, and anything else
// unsafe is dropped.
func Slugify(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if folded, _, err := transform.String(asciiFold, s); err == nil {
		s = folded
	}
	s = strings.Join(strings.Fields(s), "-")
	s = slugStrip.ReplaceAllString(s, "")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// TruncateDescription reduces a free-text description to its first few
// words, slug-joined, for use as a directory topic.
func TruncateDescription(desc string) string {
	words := strings.Fields(desc)
	if len(words) > 4 {
		words = words[:4]
	}
	return Slugify(strings.Join(words, " "))
}

// SanitizeComponent makes a string safe as a single path segment across
// common filesystems: path separators and reserved characters become
// underscores.
func SanitizeComponent(name string) string {
	return strings.TrimSpace(componentSafe.ReplaceAllString(name, "_"))
}
