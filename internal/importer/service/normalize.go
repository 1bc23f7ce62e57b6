package service

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// \s is ASCII whitespace only; any other rune is dropped
var rxNotNameChar = regexp.MustCompile(`[^a-z0-9\s]`)

// NormalizeName is the matching form of a proper name: lowercase, no
// diacritics, only [a-z0-9] and whitespace, trimmed. Runs of internal
// whitespace are kept as they are, so "João  Silva" and "João Silva"
// normalize differently.
func NormalizeName(s string) string {
	if s == "" {
		return ""
	}
	// a Chain keeps buffers, so it is built per call
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		out = strings.ToLower(s)
	}
	out = rxNotNameChar.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}
