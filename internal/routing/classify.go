// internal/routing/classify.go
//
// URL → page classification.
//
// Context
// -------
// The page handler turns every request it does not route elsewhere into a
// request.Context before template_redirect fires.  Classification is pure:
// it reads the path, the public query vars the site still accepts, and
// whether the (filtered) rewrite rules still carry embed endpoints.  The
// toggles change both during `init`, so the classifier is built after the
// lifecycle points have been dispatched.
//
// Permalink shape
// ---------------
//   /                               home (or ?s= search, ?feed= feed)
//   /feed/, /feed/<type>/           feed
//   /search/<terms>/                search
//   /category/<parent>/<slug>/      category (last segment wins)
//   /tag/<slug>/, /author/<login>/  tag, author
//   /<yyyy>/, /<yyyy>/<mm>/         date archive
//   /<yyyy>/<mm>/<slug>/            single post
//   /<yyyy>/<mm>/<slug>/embed/      embedded single post
//   /<slug>/                        page
//
// Anything else is classified as request.NotFound.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package routing

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/yanizio/primer/internal/host"
	"github.com/yanizio/primer/internal/request"
)

// Classifier maps URLs onto request contexts.
type Classifier struct {
	site  *host.Site
	embed bool
}

// NewClassifier snapshots what site accepts.  rules are the filtered
// rewrite rules; embed endpoints resolve only while an `embed=true` rule
// and the `embed` query var both survive.
func NewClassifier(site *host.Site, rules map[string]string) *Classifier {
	embed := false
	for _, q := range rules {
		if strings.Contains(q, "embed=true") {
			embed = true
			break
		}
	}
	return &Classifier{site: site, embed: embed && site.AcceptsQueryVar("embed")}
}

// Embeds reports whether embed endpoints are live.
func (c *Classifier) Embeds() bool { return c.embed }

// Classify builds the request context for r.
func (c *Classifier) Classify(r *http.Request) *request.Context {
	req := &request.Context{URL: r.URL, Header: http.Header{}}
	q := r.URL.Query()
	segs := segments(r.URL.Path)

	switch {
	case len(segs) == 0:
		c.classifyRoot(req, q)
	case segs[0] == "feed" && len(segs) <= 2:
		req.Type = request.Feed
		req.FeedType = "rss2"
		if len(segs) == 2 {
			req.FeedType = segs[1]
		}
	case segs[0] == "search" && len(segs) == 2:
		req.Type = request.Search
		req.Terms = strings.Fields(segs[1])
	case segs[0] == "category" && len(segs) >= 2:
		req.Type, req.Slug = request.Category, segs[len(segs)-1]
	case segs[0] == "tag" && len(segs) == 2:
		req.Type, req.Slug = request.Tag, segs[1]
	case segs[0] == "author" && len(segs) == 2:
		req.Type, req.Slug = request.Author, segs[1]
	case isYear(segs[0]):
		c.classifyDated(req, segs, q)
	case len(segs) == 1:
		req.Type, req.Slug = request.Page, segs[0]
	default:
		req.Type = request.NotFound
	}
	return req
}

func (c *Classifier) classifyRoot(req *request.Context, q url.Values) {
	switch {
	case c.site.AcceptsQueryVar("s") && q.Has("s"):
		req.Type = request.Search
		req.Terms = strings.Fields(q.Get("s"))
		req.Exact = c.site.AcceptsQueryVar("exact") && q.Get("exact") != ""
	case c.site.AcceptsQueryVar("feed") && q.Get("feed") != "":
		req.Type = request.Feed
		req.FeedType = q.Get("feed")
	default:
		req.Type = request.Home
		req.FrontPage = true
	}
}

func (c *Classifier) classifyDated(req *request.Context, segs []string, q url.Values) {
	req.Year, _ = strconv.Atoi(segs[0])
	if len(segs) >= 2 {
		m, err := strconv.Atoi(segs[1])
		if err != nil || m < 1 || m > 12 {
			req.Type = request.NotFound
			return
		}
		req.Month = m
	}

	switch len(segs) {
	case 1, 2:
		req.Type = request.Date
	case 3:
		req.Type, req.Slug = request.Single, segs[2]
		if q.Get("embed") == "true" {
			c.markEmbed(req)
		}
	case 4:
		if segs[3] != "embed" {
			req.Type = request.NotFound
			return
		}
		req.Type, req.Slug = request.Single, segs[2]
		c.markEmbed(req)
	default:
		req.Type = request.NotFound
	}
}

// markEmbed flags an embed request, or turns it into not-found once embeds
// are switched off.
func (c *Classifier) markEmbed(req *request.Context) {
	if !c.embed {
		req.Type = request.NotFound
		return
	}
	req.Embed = true
}

func segments(path string) []string {
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
