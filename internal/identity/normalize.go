package identity

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// diacriticStripper decomposes characters and removes combining marks so
// accented provider names survive the alphanumeric filter below.
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes a channel name for comparison: uppercase, strip
// everything that is not a letter, digit, or whitespace, collapse runs of
// whitespace to a single space, and trim. Empty input yields the empty string.
// Normalize is idempotent.
func Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if folded, _, err := transform.String(diacriticStripper, text); err == nil {
		text = folded
	}
	text = strings.ToUpper(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Flags selects which decoration categories StripDecorations removes.
// The zero value strips nothing; DefaultFlags enables every category.
type Flags struct {
	Quality    bool
	Regional   bool
	Geographic bool
	Misc       bool
}

// DefaultFlags enables all four decoration categories.
func DefaultFlags() Flags {
	return Flags{Quality: true, Regional: true, Geographic: true, Misc: true}
}

var (
	qualityTagPattern = regexp.MustCompile(`(?i)\[(?:4K|UHD|FHD|HD|SD)\]|\(backup\)`)
	regionalPattern   = regexp.MustCompile(`(?i)\b(?:EAST|WEST)\b`)
	geographicPattern = regexp.MustCompile(`(?i)^\s*(?:USA?\s*:|US\b)\s*`)
	miscTagPattern    = regexp.MustCompile(`\([A-Za-z]{1,2}\)`)
)

// StripDecorations removes the enabled decoration categories from a channel
// name: bracketed quality tags ([4K], [HD], [SD], [UHD], [FHD], (Backup)),
// whole-word East/West regional markers, US/USA geographic prefixes, and
// short one- or two-letter parenthetical tags. Matching is whole-token, so
// "West" inside "Westchester" is never touched. Whitespace opened up by a
// removal is collapsed.
func StripDecorations(text string, flags Flags) string {
	if text == "" {
		return ""
	}
	if flags.Geographic {
		text = geographicPattern.ReplaceAllString(text, "")
	}
	if flags.Quality {
		text = qualityTagPattern.ReplaceAllString(text, " ")
	}
	if flags.Regional {
		text = regionalPattern.ReplaceAllString(text, " ")
	}
	if flags.Misc {
		text = miscTagPattern.ReplaceAllString(text, " ")
	}
	return strings.Join(strings.Fields(text), " ")
}
