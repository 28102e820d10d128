// internal/request/request.go
//
// Per-request page context.
//
// Context
// -------
// The router classifies every URL into a page Type and fills a Context.
// Callbacks on template_redirect, the feed points, and the page regions
// receive *Context as their first dispatch value and may flip it into a
// not-found state or schedule a redirect.  A redirect halts the request:
// the server writes the redirect and skips composition.
//
// A Context is created per request and never shared across requests.
package request

import (
	"net/http"
	"net/url"
)

// Type classifies the requested page.
type Type int

const (
	Home Type = iota
	Single
	Page
	Category
	Tag
	Date
	Author
	Search
	Feed
	NotFound
)

var typeNames = [...]string{
	Home:     "home",
	Single:   "single",
	Page:     "page",
	Category: "category",
	Tag:      "tag",
	Date:     "date",
	Author:   "author",
	Search:   "search",
	Feed:     "feed",
	NotFound: "404",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// IsArchive reports whether t lists posts grouped by a taxonomy, date or
// author.
func (t Type) IsArchive() bool {
	switch t {
	case Category, Tag, Date, Author:
		return true
	}
	return false
}

// Context describes the current page.  Fields are set by the router; the
// not-found and redirect state is changed through methods.
type Context struct {
	Type      Type
	FrontPage bool
	ObjectID  int64  // post, term, or user id when resolved
	Slug      string // post/page slug, term slug, or author login
	Year      int
	Month     int
	Terms     []string // search terms
	Exact     bool     // exact-match search
	FeedType  string   // rdf, rss, rss2, atom
	Embed     bool     // ?embed=true on a single post
	LoggedIn  bool
	URL       *url.URL

	// Header collects response headers set by template_redirect callbacks.
	Header http.Header

	// Device classes from requestinfo, used for body classes.
	Device string
	IsBot  bool

	notFound     bool
	redirectTo   string
	redirectCode int
}

// SetNotFound forces the page into the not-found state.
func (c *Context) SetNotFound() { c.notFound = true }

// IsNotFound reports whether the page resolved to nothing or was forced
// into not-found.
func (c *Context) IsNotFound() bool { return c.notFound || c.Type == NotFound }

// Redirect schedules a redirect and halts composition.  A code outside
// 300-399 becomes 302.
func (c *Context) Redirect(location string, code int) {
	if code < 300 || code > 399 {
		code = http.StatusFound
	}
	c.redirectTo = location
	c.redirectCode = code
}

// Redirection returns the scheduled redirect, if any.
func (c *Context) Redirection() (location string, code int, ok bool) {
	return c.redirectTo, c.redirectCode, c.redirectTo != ""
}

// Halted reports whether a callback ended the request.
func (c *Context) Halted() bool { return c != nil && c.redirectTo != "" }

// Status is the HTTP status the composed page should carry.
func (c *Context) Status() int {
	if c.IsNotFound() {
		return http.StatusNotFound
	}
	return http.StatusOK
}

// AddHeader appends a response header, allocating the map on first use.
func (c *Context) AddHeader(key, value string) {
	if c.Header == nil {
		c.Header = make(http.Header)
	}
	c.Header.Add(key, value)
}
