package catalog

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Trailing audio file extensions left over from badly tagged import rows.
	audioExtension = regexp.MustCompile(`\.(wav|mp3|flac|aif|aiff|m4a|ogg|wma|alac)$`)

	// Parenthesized and bracketed qualifiers: remix tags, edit notes, feat credits.
	bracketed = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)

	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
)

// diacriticStripper decomposes to NFD and removes combining marks, so accent
// variants of the same title normalize identically.
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeTitle reduces a track title to its comparison form: lowercase,
// diacritics stripped, trailing audio extension removed, bracketed content
// removed, all non-alphanumerics removed.
//
// The function is idempotent: its output always normalizes to itself.
func NormalizeTitle(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))

	if stripped, _, err := transform.String(diacriticStripper, s); err == nil {
		s = stripped
	}

	s = audioExtension.ReplaceAllString(s, "")
	s = bracketed.ReplaceAllString(s, "")
	s = nonAlphanumeric.ReplaceAllString(s, "")

	return s
}

// ReleaseKey returns the canonical map key for a release: the UPC when
// present, else the normalized title prefixed so it can never collide with a
// numeric UPC.
func ReleaseKey(upc, title string) string {
	if trimmed := strings.TrimSpace(upc); trimmed != "" {
		return trimmed
	}
	return "title:" + NormalizeTitle(title)
}
