// internal/page/composer.go
//
// Page composition flow.
//
// Context
// -------
// At request time the Composer decides the layout, fills the <head>, and
// fires the region action points in a fixed order:
//
//	primer_body
//	primer_before_header
//	primer_before_header_wrapper
//	primer_after_header
//	primer_after_site_header_wrapper
//	primer_before_content
//	primer_content
//	primer_after_content
//	primer_sidebar
//	primer_footer_widgets
//	primer_site_info
//
// Right before each region fires, its boolean filter
// `primer_show_<region>` decides whether it fires at all.  Region
// callbacks receive (*Region, *View) and append markup to the Region.
//
// The Composer only reads the hook registry; it never registers.
package page

import (
	"context"
	"html/template"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/primer/internal/head"
	"github.com/yanizio/primer/internal/hook"
	"github.com/yanizio/primer/internal/request"
)

// RegionPoints is the fixed region order.
var RegionPoints = []string{
	hook.Body,
	hook.BeforeHeader,
	hook.BeforeHeaderWrapper,
	hook.AfterHeader,
	hook.AfterSiteHeaderWrapper,
	hook.BeforeContent,
	hook.Content,
	hook.AfterContent,
	hook.Sidebar,
	hook.FooterWidgets,
	hook.SiteInfo,
}

// RegionName strips the "primer_" prefix from a region point.
func RegionName(point string) string { return strings.TrimPrefix(point, "primer_") }

// LayoutSource reads a stored per-object layout override.
type LayoutSource interface {
	LayoutOverride(ctx context.Context, objectID int64) (string, error)
}

// View is the read-only request state handed to region callbacks and show
// filters.
type View struct {
	Req          *request.Context
	Layout       Layout
	ContentWidth int
	Head         *head.Builder

	ctx context.Context
}

// Context returns the request context.
func (v *View) Context() context.Context {
	if v.ctx == nil {
		return context.Background()
	}
	return v.ctx
}

// Region collects the markup one region point produced.
type Region struct {
	Name  string
	Point string
	parts []string
}

// Write appends pre-escaped markup.
func (r *Region) Write(html template.HTML) { r.parts = append(r.parts, string(html)) }

// WriteString appends pre-escaped markup.
func (r *Region) WriteString(html string) { r.parts = append(r.parts, html) }

// HTML joins everything written so far.
func (r *Region) HTML() template.HTML { return template.HTML(strings.Join(r.parts, "\n")) }

// Empty reports whether nothing was written.
func (r *Region) Empty() bool { return len(r.parts) == 0 }

// Document is a composed page ready for the theme templates.
type Document struct {
	View        *View
	BodyClasses []string
	Regions     []*Region
	byName      map[string]*Region
}

// Region returns the named region ("content", "sidebar") or nil when it
// did not render.
func (d *Document) Region(name string) *Region { return d.byName[name] }

// Rendered lists the names of regions that fired, in order.
func (d *Document) Rendered() []string {
	out := make([]string, len(d.Regions))
	for i, r := range d.Regions {
		out[i] = r.Name
	}
	return out
}

// Status is the HTTP status for the page.
func (d *Document) Status() int { return d.View.Req.Status() }

// Composer assembles documents.  Safe for concurrent use.
type Composer struct {
	hooks         *hook.Registry
	overrides     LayoutSource
	defaultLayout Layout
	log           *zap.Logger
}

// NewComposer returns a Composer.  overrides may be nil.  An unknown
// defaultLayout falls back to two-column-default.
func NewComposer(hooks *hook.Registry, overrides LayoutSource, defaultLayout string, log *zap.Logger) *Composer {
	if log == nil {
		log = zap.NewNop()
	}
	l, ok := ParseLayout(defaultLayout)
	if !ok {
		l = TwoColumnDefault
	}
	return &Composer{hooks: hooks, overrides: overrides, defaultLayout: l, log: log.Named("page")}
}

// DefaultLayout returns the configured fallback layout.
func (c *Composer) DefaultLayout() Layout { return c.defaultLayout }

// Layout computes the layout key for req: a valid stored override on the
// requested post or page, else the default, then the primer_layout filter.
func (c *Composer) Layout(ctx context.Context, req *request.Context) Layout {
	l := c.defaultLayout
	if c.overrides != nil && req != nil && req.ObjectID > 0 && (req.Type == request.Single || req.Type == request.Page) {
		raw, err := c.overrides.LayoutOverride(ctx, req.ObjectID)
		switch {
		case err != nil:
			c.log.Warn("layout override lookup failed", zap.Int64("object", req.ObjectID), zap.Error(err))
		case raw != "":
			if o, ok := ParseLayout(raw); ok {
				l = o
			} else {
				c.log.Debug("ignoring unknown layout override", zap.Int64("object", req.ObjectID), zap.String("layout", raw))
			}
		}
	}

	filtered := hook.FilterAs(c.hooks, hook.Layout, l, req)
	if _, ok := ParseLayout(string(filtered)); !ok {
		c.log.Debug("primer_layout returned an unknown layout", zap.String("layout", string(filtered)))
		return l
	}
	return filtered
}

// ContentWidth returns the filtered content width for l.
func (c *Composer) ContentWidth(l Layout) int {
	return hook.FilterAs(c.hooks, hook.ContentWidth, l.BaseContentWidth(), l)
}

// Compose builds the document for req.  req must not be halted.
func (c *Composer) Compose(ctx context.Context, req *request.Context) *Document {
	l := c.Layout(ctx, req)
	v := &View{
		Req:          req,
		Layout:       l,
		ContentWidth: c.ContentWidth(l),
		Head:         head.New(),
		ctx:          ctx,
	}

	c.hooks.DispatchAction(hook.Head, v.Head, req)
	c.hooks.DispatchAction(hook.PrintStyles, v.Head)

	doc := &Document{View: v, byName: map[string]*Region{}}
	for _, p := range RegionPoints {
		name := RegionName(p)
		if !hook.FilterAs(c.hooks, hook.ShowRegion(name), true, v) {
			c.log.Debug("region hidden", zap.String("region", name))
			continue
		}
		reg := &Region{Name: name, Point: p}
		c.hooks.DispatchAction(p, reg, v)
		doc.Regions = append(doc.Regions, reg)
		doc.byName[name] = reg
	}

	// Body classes last: region callbacks may have flipped not-found.
	doc.BodyClasses = hook.FilterAs(c.hooks, hook.BodyClass, baseClasses(v), v)
	return doc
}

func baseClasses(v *View) []string {
	classes := []string{string(v.Layout)}
	if v.Req == nil {
		return classes
	}
	if v.Req.IsNotFound() {
		classes = append(classes, "error404")
	} else {
		classes = append(classes, v.Req.Type.String())
	}
	if v.Req.FrontPage {
		classes = append(classes, "home")
	}
	if v.Req.LoggedIn {
		classes = append(classes, "logged-in")
	}
	if v.Req.Device != "" {
		classes = append(classes, "device-"+strings.ToLower(v.Req.Device))
	}
	if v.Req.IsBot {
		classes = append(classes, "is-bot")
	}
	return classes
}
