package host

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const emojiCDN = "https://s.w.org/images/core/emoji/72x72/"

// StaticizeEmojiText replaces emoji characters with <img> tags so feed
// readers and mail clients without emoji fonts still show them.
func StaticizeEmojiText(s string) string {
	if !hasEmoji(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 64)
	for _, r := range s {
		if !isEmoji(r) {
			b.WriteRune(r)
			continue
		}
		fmt.Fprintf(&b, `<img src="%s%x.png" alt="%c" class="wp-smiley" style="height:1em;max-height:1em;">`, emojiCDN, r, r)
	}
	return b.String()
}

func hasEmoji(s string) bool {
	for _, r := range s {
		if isEmoji(r) {
			return true
		}
	}
	return false
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF:
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	}
	return false
}

// oembedHandler answers oEmbed lookups for the site's own URLs.
func oembedHandler(site *Site) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := r.URL.Query().Get("url")
		if target == "" || !strings.HasPrefix(target, site.Home) {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"version":       "1.0",
			"type":          "rich",
			"provider_name": site.Name,
			"provider_url":  site.Home,
			"html":          fmt.Sprintf(`<blockquote class="wp-embedded-content"><a href="%s">%s</a></blockquote>`, target, target),
		})
	}
}
