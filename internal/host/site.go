// internal/host/site.go
//
// Host-side state and default behaviour.
//
// Context
// -------
// The theme runs inside a content-management host that ships its own
// default callbacks: the generator meta tag, feed links, the emoji script,
// shortlinks, REST and oEmbed discovery, and so on.  They are registered
// on the shared hook.Registry exactly like theme and plugin callbacks, so
// feature toggles can remove them by (point, id, priority).
//
// Site carries the host settings that `init` callbacks may rewrite: the
// public query vars, the feed endpoints, and the rewrite rules.  Bootstrap
// dispatches `init` with *Site once; afterwards it is read-only.
package host

import (
	"sort"
	"strings"

	"github.com/yanizio/primer/internal/hook"
)

// Site is the host configuration visible to `init` callbacks.
type Site struct {
	Home    string // absolute home URL without trailing slash
	Name    string
	Version string // generator version

	QueryVars []string          // public query vars accepted from URLs
	Feeds     []string          // feed endpoints the router recognises
	Rules     map[string]string // rewrite pattern → query string
}

// DefaultFeeds are the feed types the host serves out of the box.
var DefaultFeeds = []string{"rdf", "rss", "rss2", "atom"}

// NewSite returns a Site with the host's default query vars, feeds, and
// rewrite rules.
func NewSite(home, name, version string) *Site {
	home = strings.TrimRight(home, "/")
	return &Site{
		Home:      home,
		Name:      name,
		Version:   version,
		QueryVars: []string{"p", "page_id", "s", "exact", "cat", "tag", "author_name", "year", "monthnum", "feed", "embed"},
		Feeds:     append([]string(nil), DefaultFeeds...),
		Rules: map[string]string{
			`feed/(rdf|rss|rss2|atom)/?$`:           "feed=$1",
			`category/(.+?)/?$`:                     "category_name=$1",
			`tag/([^/]+)/?$`:                        "tag=$1",
			`author/([^/]+)/?$`:                     "author_name=$1",
			`([0-9]{4})/([0-9]{1,2})/?$`:            "year=$1&monthnum=$2",
			`([0-9]{4})/?$`:                         "year=$1",
			`([^/]+)/embed/?$`:                      "name=$1&embed=true",
			`attachment/([^/]+)/embed/?$`:           "attachment=$1&embed=true",
			`([^/]+)/?$`:                            "name=$1",
			`search/(.+)/?$`:                        "s=$1",
			`comments/feed/(rdf|rss|rss2|atom)/?$`:  "feed=$1&withcomments=1",
			`([^/]+)/trackback/?$`:                  "name=$1&tb=1",
			`([^/]+)/page/?([0-9]{1,})/?$`:          "name=$1&paged=$2",
			`category/(.+?)/embed/?$`:               "category_name=$1&embed=true",
			`author/([^/]+)/feed/(rss2|atom)/?$`:    "author_name=$1&feed=$2",
			`category/(.+?)/feed/(rss2|atom)/?$`:    "category_name=$1&feed=$2",
			`tag/([^/]+)/feed/(rss2|atom)/?$`:       "tag=$1&feed=$2",
			`([0-9]{4})/([0-9]{1,2})/embed/?$`:      "year=$1&monthnum=$2&embed=true",
			`([0-9]{4})/([0-9]{1,2})/feed/(rss2)$`:  "year=$1&monthnum=$2&feed=$3",
			`([^/]+)/attachment/([^/]+)/embed/?$`:   "attachment=$2&embed=true",
			`([^/]+)/attachment/([^/]+)/?$`:         "attachment=$2",
			`([^/]+)/comment-page-([0-9]{1,})/?$`:   "name=$1&cpage=$2",
			`([^/]+)/([0-9]+)/?$`:                   "name=$1&page=$2",
			`type/([^/]+)/?$`:                       "post_format=$1",
			`type/([^/]+)/embed/?$`:                 "post_format=$1&embed=true",
			`type/([^/]+)/feed/(rss2|atom)/?$`:      "post_format=$1&feed=$2",
			`tag/([^/]+)/embed/?$`:                  "tag=$1&embed=true",
			`author/([^/]+)/embed/?$`:               "author_name=$1&embed=true",
			`([0-9]{4})/embed/?$`:                   "year=$1&embed=true",
			`search/(.+)/embed/?$`:                  "s=$1&embed=true",
			`comments/embed/?$`:                     "&embed=true",
			`embed/?$`:                              "&embed=true",
		},
	}
}

// AcceptsQueryVar reports whether name is a public query var.
func (s *Site) AcceptsQueryVar(name string) bool {
	for _, v := range s.QueryVars {
		if v == name {
			return true
		}
	}
	return false
}

// ServesFeed reports whether feed is a registered feed endpoint.
func (s *Site) ServesFeed(feed string) bool {
	for _, f := range s.Feeds {
		if f == feed {
			return true
		}
	}
	return false
}

// RewriteRules returns the rules after the rewrite_rules_array filter.
func (s *Site) RewriteRules(r *hook.Registry) map[string]string {
	rules := make(map[string]string, len(s.Rules))
	for k, v := range s.Rules {
		rules[k] = v
	}
	return hook.FilterAs(r, hook.RewriteRules, rules)
}

// RulePatterns lists rewrite patterns in lexical order, for diagnostics.
func RulePatterns(rules map[string]string) []string {
	out := make([]string, 0, len(rules))
	for k := range rules {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DefaultEditorPlugins is the editor plugin list before tiny_mce_plugins.
var DefaultEditorPlugins = []string{"charmap", "colorpicker", "hr", "lists", "media", "paste", "tabfocus", "textcolor", "fullscreen", "wordpress", "wpautoresize", "wpeditimage", "wpemoji", "wpgallery", "wplink", "wpdialogs", "wptextpattern", "wpview", "wpembed"}

// EditorPlugins returns the filtered editor plugin list.
func EditorPlugins(r *hook.Registry) []string {
	return hook.FilterAs(r, hook.EditorPlugins, append([]string(nil), DefaultEditorPlugins...))
}

// TranslateWithContext runs text through gettext_with_context.  The host
// ships no translations, so the unfiltered result is text itself.
func TranslateWithContext(r *hook.Registry, text, context, domain string) string {
	return hook.FilterAs(r, hook.GettextWithContext, text, text, context, domain)
}

// RestEnabled reports whether the REST API is switched on.
func RestEnabled(r *hook.Registry) bool { return hook.FilterAs(r, hook.RestEnabled, true) }

// RestJSONPEnabled reports whether JSONP callbacks are allowed.
func RestJSONPEnabled(r *hook.Registry) bool {
	return hook.FilterAs(r, hook.RestJSONPEnabled, true)
}

// EmbedDiscover reports whether oEmbed discovery of remote URLs is on.
func EmbedDiscover(r *hook.Registry) bool { return hook.FilterAs(r, hook.EmbedDiscover, true) }
