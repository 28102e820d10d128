// modules/breadcrumb/breadcrumb.go
//
// Breadcrumb trail above the content loop.
//
// Context
// -------
// The module hooks primer_before_content at priority 5 and writes one
// <nav class="breadcrumbs"> listing Home and the path to the current view:
//
//	single     Home › 2024 › May › Post Slug
//	page       Home › Page Slug
//	category   Home › News › Local      (one crumb per path segment)
//	tag        Home › Tag: go
//	author     Home › Author: jane
//	date       Home › 2024 › May
//	search     Home › Search: terms
//
// The front page and not-found pages get no trail.  Labels come from the
// URL, not the database, so the trail never adds a query to the request.
// The last crumb is plain text; every other crumb links to its archive.
package breadcrumb

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/yanizio/primer/internal/hook"
	"github.com/yanizio/primer/internal/module"
	"github.com/yanizio/primer/internal/page"
	"github.com/yanizio/primer/internal/request"
	"github.com/yanizio/primer/internal/routing"
)

// TrailID is the callback identity on primer_before_content.
const TrailID = "breadcrumb_trail"

const trailPriority = 5

func init() { module.Register(Module{}) }

var _ module.Module = Module{}

// Module renders the breadcrumb trail.
type Module struct{}

func (Module) Name() string { return "breadcrumb" }

func (m Module) Setup(r *hook.Registry, _ module.Env) error {
	_, err := r.AddAction(hook.BeforeContent, TrailID, hook.Action2(render),
		hook.WithArity(2), hook.WithPriority(trailPriority), hook.WithOwner(m.Name()))
	return err
}

// Crumb is one step of the trail.
type Crumb struct {
	Label string
	Path  string // empty for the current page
}

func render(reg *page.Region, v *page.View) error {
	if v == nil || v.Req == nil {
		return nil
	}
	trail := Trail(v.Req)
	if len(trail) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`<nav class="breadcrumbs" aria-label="Breadcrumb"><ol>`)
	for _, c := range trail {
		class := "crumb-" + routing.MakeSlug(c.Label)
		if c.Path == "" {
			fmt.Fprintf(&b, `<li class="%s" aria-current="page">%s</li>`, class, html.EscapeString(c.Label))
			continue
		}
		fmt.Fprintf(&b, `<li class="%s"><a href="%s">%s</a></li>`, class, html.EscapeString(c.Path), html.EscapeString(c.Label))
	}
	b.WriteString(`</ol></nav>`)
	reg.WriteString(b.String())
	return nil
}

// Trail returns the crumbs for req, Home first.  It is empty when the
// request should show no trail.
func Trail(req *request.Context) []Crumb {
	if req.IsNotFound() || req.FrontPage || req.Type == request.Home || req.Type == request.Feed {
		return nil
	}
	out := []Crumb{{Label: "Home", Path: "/"}}

	switch req.Type {
	case request.Single:
		out = append(out, dateCrumbs(req.Year, req.Month)...)
		out = append(out, Crumb{Label: humanize(req.Slug)})
	case request.Page:
		out = append(out, Crumb{Label: humanize(req.Slug)})
	case request.Category:
		out = append(out, categoryCrumbs(req)...)
	case request.Tag:
		out = append(out, Crumb{Label: "Tag: " + req.Slug})
	case request.Author:
		out = append(out, Crumb{Label: "Author: " + req.Slug})
	case request.Date:
		out = append(out, dateCrumbs(req.Year, req.Month)...)
	case request.Search:
		out = append(out, Crumb{Label: "Search: " + strings.Join(req.Terms, " ")})
	default:
		return nil
	}
	out[len(out)-1].Path = ""
	return out
}

func dateCrumbs(year, month int) []Crumb {
	if year == 0 {
		return nil
	}
	y := strconv.Itoa(year)
	out := []Crumb{{Label: y, Path: routing.BuildPath(y) + "/"}}
	if month >= 1 && month <= 12 {
		out = append(out, Crumb{
			Label: time.Month(month).String(),
			Path:  routing.BuildPath(y, fmt.Sprintf("%02d", month)) + "/",
		})
	}
	return out
}

// categoryCrumbs walks /category/<parent>/.../<slug>.  Without a URL only
// the term itself is known.
func categoryCrumbs(req *request.Context) []Crumb {
	var segs []string
	if req.URL != nil {
		for _, s := range strings.Split(strings.Trim(req.URL.Path, "/"), "/") {
			if s != "" {
				segs = append(segs, s)
			}
		}
	}
	if len(segs) < 2 || segs[0] != "category" {
		return []Crumb{{Label: humanize(req.Slug)}}
	}
	out := make([]Crumb, 0, len(segs)-1)
	parent := "category"
	for _, s := range segs[1:] {
		out = append(out, Crumb{Label: humanize(s), Path: routing.BuildPath(parent, s) + "/"})
		parent = parent + "/" + s
	}
	return out
}

// humanize turns "hello-world" into "Hello World".
func humanize(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
