// internal/routing/slug.go
//
// Slugs and permalinks.
//
// • MakeSlug(text) turns a label into a URL-safe slug: ASCII a-z, 0-9, and
//   single dashes, at most 100 bytes, "item" when nothing survives.
// • BuildPath(segments...) joins segments with one "/" and exactly one
//   leading slash; empty segments are skipped.
// • PostPath and PagePath are the site's permalinks, the inverse of what
//   Classifier recognises: /<yyyy>/<mm>/<slug>/ and /<slug>/.
//
// Notes
// -----
// • No Unicode transliteration; non-ASCII letters collapse into dashes.
// • Permalinks always carry a trailing slash, as the host emits them.

package routing

import (
	"strings"
	"time"
)

const maxSlug = 100

// MakeSlug converts text into lower-kebab ASCII.
func MakeSlug(text string) string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	slug := strings.Join(words, "-")
	if len(slug) > maxSlug {
		slug = strings.TrimRight(slug[:maxSlug], "-")
	}
	if slug == "" {
		return "item"
	}
	return slug
}

// BuildPath joins segments into an absolute path without duplicate or
// trailing separators.  No segments yields "/".
func BuildPath(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s = strings.Trim(s, "/"); s != "" {
			parts = append(parts, s)
		}
	}
	return "/" + strings.Join(parts, "/")
}

// PostPath is the permalink of a post published at date.
func PostPath(date time.Time, slug string) string {
	return BuildPath(date.Format("2006/01"), slug) + "/"
}

// PagePath is the permalink of a page.
func PagePath(slug string) string { return BuildPath(slug) + "/" }
