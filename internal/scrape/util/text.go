package util

import (
	"strings"
	"unicode/utf8"
)

// CleanText collapses runs of whitespace (including newlines and NBSP) to a
// single space and trims the ends. Empty input yields "".
func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// Slugify lowercases s and replaces whitespace runs with a single hyphen.
func Slugify(s string) string {
	s = strings.ToLower(CleanText(s))
	return strings.Join(strings.Fields(s), "-")
}

// SlugifyMax slugifies and truncates to at most max bytes, never splitting
// a multi-byte rune.
func SlugifyMax(s string, max int) string {
	slug := Slugify(s)
	if max > 0 && len(slug) > max {
		cut := max
		for cut > 0 && !utf8.RuneStart(slug[cut]) {
			cut--
		}
		slug = strings.Trim(slug[:cut], "-")
	}
	return slug
}
