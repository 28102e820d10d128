// internal/page/composer_test.go
//
// Region order, show filters, layout resolution, and the default region
// callbacks against in-memory collaborators.
//
// Run: go test ./internal/page -v

package page

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/yanizio/primer/internal/cache"
	"github.com/yanizio/primer/internal/content"
	"github.com/yanizio/primer/internal/hook"
	"github.com/yanizio/primer/internal/navmenu"
	"github.com/yanizio/primer/internal/request"
	"github.com/yanizio/primer/internal/sidebar"
)

type overrides map[int64]string

func (o overrides) LayoutOverride(_ context.Context, id int64) (string, error) {
	if id == 99 {
		return "", errors.New("db down")
	}
	return o[id], nil
}

func allRegions() []string {
	out := make([]string, len(RegionPoints))
	for i, p := range RegionPoints {
		out[i] = RegionName(p)
	}
	return out
}

func TestCompose_FixedOrderAndShowFilters(t *testing.T) {
	r := hook.New(nil)
	var fired []string
	for _, p := range RegionPoints {
		p := p
		_, err := r.AddAction(p, "rec", hook.Action1(func(reg *Region) error {
			fired = append(fired, reg.Name)
			reg.WriteString("<i>" + reg.Name + "</i>")
			return nil
		}))
		if err != nil {
			t.Fatal(err)
		}
	}
	_, _ = r.AddFilter(hook.ShowRegion("before_header"), "hide", hook.Return(false))

	c := NewComposer(r, nil, "", nil)
	doc := c.Compose(context.Background(), &request.Context{Type: request.Home})

	want := allRegions()
	want = append(want[:1], want[2:]...) // before_header hidden
	if !reflect.DeepEqual(fired, want) || !reflect.DeepEqual(doc.Rendered(), want) {
		t.Fatalf("fired = %v, rendered = %v, want %v", fired, doc.Rendered(), want)
	}
	if doc.Region("before_header") != nil {
		t.Fatal("hidden region present in document")
	}
	if got := doc.Region("content").HTML(); got != "<i>content</i>" {
		t.Fatalf("content = %q", got)
	}
	if doc.Status() != http.StatusOK {
		t.Fatalf("status = %d", doc.Status())
	}
}

func TestLayout_OverrideDefaultAndFilter(t *testing.T) {
	r := hook.New(nil)
	c := NewComposer(r, overrides{1: "one-column-wide", 2: "bogus"}, "three-column-center", nil)
	ctx := context.Background()

	cases := []struct {
		req  request.Context
		want Layout
	}{
		{request.Context{Type: request.Single, ObjectID: 1}, OneColumnWide},
		{request.Context{Type: request.Page, ObjectID: 2}, ThreeColumnCenter},
		{request.Context{Type: request.Single, ObjectID: 99}, ThreeColumnCenter},
		{request.Context{Type: request.Category, ObjectID: 1}, ThreeColumnCenter},
	}
	for _, tc := range cases {
		req := tc.req
		if got := c.Layout(ctx, &req); got != tc.want {
			t.Errorf("Layout(%s %d) = %s, want %s", req.Type, req.ObjectID, got, tc.want)
		}
	}

	_, _ = r.AddFilter(hook.Layout, "search-wide", hook.Filter2(func(l Layout, req *request.Context) Layout {
		if req.Type == request.Search {
			return OneColumn
		}
		return l
	}), hook.WithArity(2))
	if got := c.Layout(ctx, &request.Context{Type: request.Search}); got != OneColumn {
		t.Fatalf("filtered layout = %s", got)
	}

	_, _ = r.AddFilter(hook.Layout, "junk", hook.Return(Layout("nope")), hook.WithPriority(20))
	if got := c.Layout(ctx, &request.Context{Type: request.Home}); got != ThreeColumnCenter {
		t.Fatalf("unknown filtered layout accepted: %s", got)
	}

	if NewComposer(r, nil, "garbage", nil).DefaultLayout() != TwoColumnDefault {
		t.Fatal("invalid default layout not replaced")
	}
}

func TestContentWidth(t *testing.T) {
	r := hook.New(nil)
	c := NewComposer(r, nil, "", nil)
	if c.ContentWidth(OneColumnWide) != 1068 || c.ContentWidth(TwoColumnReversed) != 688 {
		t.Fatal("base content widths wrong")
	}
	_, _ = r.AddFilter(hook.ContentWidth, "narrow", hook.Filter2(func(w int, l Layout) int {
		if l == OneColumn {
			return w - 88
		}
		return w
	}), hook.WithArity(2))
	if got := c.ContentWidth(OneColumn); got != 600 {
		t.Fatalf("filtered width = %d", got)
	}
}

func TestParseLayoutAndColumns(t *testing.T) {
	for _, l := range Layouts {
		got, ok := ParseLayout(string(l))
		if !ok || got != l {
			t.Fatalf("ParseLayout(%s) = %s %v", l, got, ok)
		}
	}
	if _, ok := ParseLayout("four-column"); ok {
		t.Fatal("unknown layout parsed")
	}
	if OneColumn.HasSidebar() || !TwoColumnDefault.HasSidebar() || TwoColumnDefault.HasSecondarySidebar() || !ThreeColumnReversed.HasSecondarySidebar() {
		t.Fatal("column predicates wrong")
	}
}

//
// default callbacks
//

type memPosts struct {
	posts  map[string]content.Post
	recent []content.Post
}

func (m memPosts) PostBySlug(_ context.Context, slug, typ string) (*content.Post, error) {
	p, ok := m.posts[typ+"/"+slug]
	if !ok {
		return nil, content.ErrNotFound
	}
	return &p, nil
}
func (m memPosts) Recent(context.Context, int) ([]content.Post, error) { return m.recent, nil }
func (m memPosts) Archive(context.Context, *request.Context, int) ([]content.Post, error) {
	return nil, nil
}
func (m memPosts) Search(context.Context, content.SearchQuery, int) ([]content.Post, error) {
	return nil, errors.New("search offline")
}

type memWidgets struct {
	assigned map[string][]string
	widgets  map[string]content.Widget
}

func (m memWidgets) SidebarWidgets(context.Context) (map[string][]string, error) {
	return m.assigned, nil
}
func (m memWidgets) Widget(_ context.Context, id string) (*content.Widget, error) {
	w, ok := m.widgets[id]
	if !ok {
		return nil, content.ErrNotFound
	}
	return &w, nil
}

func themed(t *testing.T, layout string, assigned map[string][]string) *Composer {
	t.Helper()
	r := hook.New(nil)
	widgets := memWidgets{
		assigned: assigned,
		widgets: map[string]content.Widget{
			"text-1": {ID: "text-1", Type: "text", Settings: map[string]string{"title": "About", "text": "Hi <there>"}},
			"text-2": {ID: "text-2", Type: "text", Settings: map[string]string{"text": "Footer"}},
			"odd-1":  {ID: "odd-1", Type: "unregistered"},
		},
	}
	sb := sidebar.New(r, nil, widgets, cache.NewStore(), nil)
	sb.Configure([]sidebar.Input{
		{ID: PrimarySidebar}, {ID: SecondarySidebar},
		{ID: "footer-1", Footer: true}, {ID: "footer-2", Footer: true}, {ID: "footer-3", Footer: true},
	})
	menus := navmenu.New(r, nil, nil)
	menus.Configure(map[string]string{"primary": "", "footer": ""})

	err := RegisterDefaults(r, Deps{
		Site: SiteInfo{Name: "Example", Home: "https://example.test", Tagline: "Just testing"},
		Posts: memPosts{
			posts:  map[string]content.Post{"post/hello": {ID: 7, Slug: "hello", Title: "Hello", Body: "World", Type: "post"}},
			recent: []content.Post{{ID: 1, Title: "First", Excerpt: "short", Type: "post"}},
		},
		Widgets:  widgets,
		Sidebars: sb,
		Menus:    menus,
	})
	if err != nil {
		t.Fatalf("RegisterDefaults: %v", err)
	}
	return NewComposer(r, nil, layout, nil)
}

func TestDefaults_SingleWithSidebars(t *testing.T) {
	c := themed(t, "three-column-default", map[string][]string{
		PrimarySidebar: {"text-1", "odd-1"},
		"footer-2":     {"text-2"},
	})
	req := &request.Context{Type: request.Single, Slug: "hello"}
	doc := c.Compose(context.Background(), req)

	if req.ObjectID != 7 || doc.View.Head.TitleText() != "Hello" {
		t.Fatalf("object = %d, title = %q", req.ObjectID, doc.View.Head.TitleText())
	}
	if got := string(doc.Region("content").HTML()); !strings.Contains(got, `<article id="post-7"`) || !strings.Contains(got, "World") {
		t.Fatalf("content = %s", got)
	}

	side := string(doc.Region("sidebar").HTML())
	if !strings.Contains(side, `<aside id="text-1" class="widget widget_text"><h4 class="widget-title">About</h4>`) ||
		!strings.Contains(side, "Hi &lt;there&gt;") {
		t.Fatalf("sidebar = %s", side)
	}
	if strings.Contains(side, "odd-1") {
		t.Fatal("widget of unknown type rendered")
	}

	foot := string(doc.Region("footer_widgets").HTML())
	if !strings.Contains(foot, "columns-1") || !strings.Contains(foot, "Footer") {
		t.Fatalf("footer widgets = %s", foot)
	}

	info := string(doc.Region("site_info").HTML())
	if !strings.HasPrefix(info, `<nav class="footer-navigation"`) || strings.Contains(info, "social-navigation") {
		t.Fatalf("site info = %s", info)
	}
	if !strings.Contains(string(doc.Region("after_header").HTML()), "main-navigation") {
		t.Fatal("primary navigation missing")
	}
	if doc.BodyClasses[0] != "three-column-default" || doc.BodyClasses[1] != "single" {
		t.Fatalf("body classes = %v", doc.BodyClasses)
	}
}

func TestDefaults_OneColumnNoFooterWidgets(t *testing.T) {
	c := themed(t, "one-column", map[string][]string{PrimarySidebar: {"text-1"}})
	doc := c.Compose(context.Background(), &request.Context{Type: request.Home, FrontPage: true})

	if doc.Region("sidebar") != nil {
		t.Fatal("sidebar rendered in one-column layout")
	}
	if doc.Region("footer_widgets") != nil {
		t.Fatal("footer widget region rendered with no active footer areas")
	}
	if got := string(doc.Region("content").HTML()); !strings.Contains(got, "short") {
		t.Fatalf("home listing = %s", got)
	}
	if !strings.Contains(string(doc.Region("before_header_wrapper").HTML()), `<h1 class="site-title">`) {
		t.Fatal("front page title should be h1")
	}
}

func TestDefaults_MissingPostIsNotFound(t *testing.T) {
	c := themed(t, "", nil)
	req := &request.Context{Type: request.Single, Slug: "nope"}
	doc := c.Compose(context.Background(), req)

	if doc.Status() != http.StatusNotFound {
		t.Fatalf("status = %d", doc.Status())
	}
	if !strings.Contains(string(doc.Region("content").HTML()), "error-404") {
		t.Fatal("not-found markup missing")
	}
	if doc.BodyClasses[1] != "error404" {
		t.Fatalf("body classes = %v", doc.BodyClasses)
	}
}

func TestDefaults_ContentFailureDegrades(t *testing.T) {
	c := themed(t, "", nil)
	doc := c.Compose(context.Background(), &request.Context{Type: request.Search, Terms: []string{"x"}})

	// The failing callback is skipped; the page still composes.
	if doc.Region("content") == nil || !doc.Region("content").Empty() {
		t.Fatal("content region should exist and be empty")
	}
	if doc.Region("site_info") == nil {
		t.Fatal("later regions did not render")
	}
}

type categorized bool

func (c categorized) HasActiveCategories(context.Context) bool { return bool(c) }

func TestDefaults_CategorizedBodyClass(t *testing.T) {
	for _, on := range []bool{true, false} {
		r := hook.New(nil)
		if err := RegisterDefaults(r, Deps{Posts: memPosts{}, Categories: categorized(on)}); err != nil {
			t.Fatal(err)
		}
		doc := NewComposer(r, nil, "", nil).Compose(context.Background(), &request.Context{Type: request.Home})
		has := false
		for _, c := range doc.BodyClasses {
			has = has || c == "categorized"
		}
		if has != on {
			t.Fatalf("categorized=%v, body classes %v", on, doc.BodyClasses)
		}
	}
}
