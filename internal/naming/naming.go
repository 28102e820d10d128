// Package naming holds the two string transforms the declarative
// registries share: turning a slug into a display label, and turning an
// arbitrary name into a registry-safe key.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Humanize replaces '-' and '_' with spaces and upper-cases the first
// letter of every word, leaving the rest untouched:
//
//	"primer-hero"   → "Primer Hero"
//	"footer_2"      → "Footer 2"
//	"iPhone-cover"  → "IPhone Cover"
func Humanize(name string) string {
	spaced := strings.Map(func(r rune) rune {
		if r == '-' || r == '_' {
			return ' '
		}
		return r
	}, name)

	var b strings.Builder
	b.Grow(len(spaced))
	start := true
	for _, r := range spaced {
		if start {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(r)
		}
		start = unicode.IsSpace(r)
	}
	return b.String()
}

// SanitizeKey lower-cases name and keeps only a-z, 0-9, '-' and '_'.
func SanitizeKey(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for len(name) > 0 {
		r, size := utf8.DecodeRuneInString(name)
		name = name[size:]
		r = unicode.ToLower(r)
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}
