// internal/toggle/toggle_test.go
//
// Built-in toggles against the host defaults.
//
// Run: go test ./internal/toggle -v

package toggle

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/yanizio/primer/internal/content"
	"github.com/yanizio/primer/internal/head"
	"github.com/yanizio/primer/internal/hook"
	"github.com/yanizio/primer/internal/host"
	"github.com/yanizio/primer/internal/request"
)

const home = "https://example.test"

func hostRegistry(t interface {
	Fatalf(string, ...any)
}) (*hook.Registry, *host.Site) {
	r := hook.New(nil)
	site := host.NewSite(home, "Example", "6.5")
	if err := host.RegisterDefaults(r, site); err != nil {
		t.Fatalf("RegisterDefaults: %v", err)
	}
	return r, site
}

// state summarises a registry as point → "id@priority" list.
func state(r *hook.Registry) map[string][]string {
	out := map[string][]string{}
	for _, p := range r.Points() {
		var ids []string
		for _, reg := range r.Registrations(p) {
			ids = append(ids, fmt.Sprintf("%s@%d", reg.ID, reg.Priority))
		}
		out[p] = ids
	}
	return out
}

func TestDefaults_HeadIsTrimmed(t *testing.T) {
	r, site := hostRegistry(t)
	NewSet(nil, Defaults(home)...).Apply(r)
	r.DispatchAction(hook.Init, site)

	b := head.New()
	r.DispatchAction(hook.Head, b, &request.Context{Type: request.Single, ObjectID: 3})
	for _, gone := range []string{"generator", "rss+xml", "EditURI", "wlwmanifest", "shortlink", "api.w.org", "json+oembed", "wp-embed", "_wpemojiSettings", "open-sans"} {
		if b.Contains(gone) {
			t.Errorf("head still contains %q: %v", gone, b.Tags())
		}
	}

	if host.RestEnabled(r) || host.RestJSONPEnabled(r) || host.EmbedDiscover(r) {
		t.Fatal("REST or embed discovery still enabled")
	}
	if site.AcceptsQueryVar("embed") {
		t.Fatal("embed query var survived init")
	}
	if len(site.Feeds) != 0 {
		t.Fatalf("feeds = %v, want none", site.Feeds)
	}
	for _, p := range host.EditorPlugins(r) {
		if p == "wpembed" {
			t.Fatal("wpembed editor plugin survived")
		}
	}
	for pattern, rewrite := range site.RewriteRules(r) {
		if strings.Contains(rewrite, "embed=true") {
			t.Fatalf("embed rule %q survived", pattern)
		}
	}
	if r.HasPoint(hook.RestAPIInit) || r.HasPoint(hook.OEmbedDataparse) || r.HasPoint(hook.Mail) {
		t.Fatal("embed or emoji callbacks survived")
	}
}

func TestDisableArchives(t *testing.T) {
	r, _ := hostRegistry(t)
	NewSet(nil, DisableArchives()).Apply(r)

	for _, typ := range []request.Type{request.Category, request.Tag, request.Date, request.Author} {
		c := &request.Context{Type: typ}
		r.DispatchAction(hook.TemplateRedirect, c)
		if c.Status() != http.StatusNotFound {
			t.Errorf("%s status = %d, want 404", typ, c.Status())
		}
	}
	c := &request.Context{Type: request.Single}
	r.DispatchAction(hook.TemplateRedirect, c)
	if c.IsNotFound() {
		t.Fatal("single post forced to not-found")
	}
}

func TestDisableFeeds_RedirectsAndHalts(t *testing.T) {
	r, _ := hostRegistry(t)
	NewSet(nil, DisableFeeds(home)).Apply(r)

	c := &request.Context{Type: request.Feed, FeedType: "rss2"}
	r.DispatchAction(hook.DoFeed("rss2"), c)
	loc, code, ok := c.Redirection()
	if !ok || loc != home+"/" || code != http.StatusFound || !c.Halted() {
		t.Fatalf("redirect = %q %d %v", loc, code, ok)
	}
}

func TestDisableFeeds_LaterFeedWritersDoNotRun(t *testing.T) {
	r, _ := hostRegistry(t)
	NewSet(nil, DisableFeeds(home)).Apply(r)

	wrote := false
	_, err := r.AddAction(hook.DoFeed("atom"), "write_atom", hook.Action1(func(*request.Context) error {
		wrote = true
		return nil
	}), hook.WithPriority(hook.DefaultPriority))
	if err != nil {
		t.Fatal(err)
	}

	c := &request.Context{Type: request.Feed, FeedType: "atom"}
	r.DispatchAction(hook.DoFeed("atom"), c)
	if !c.Halted() {
		t.Fatal("feed request not redirected")
	}
	if wrote {
		t.Fatal("feed writer ran after the redirect")
	}
}

func TestDisableOpenSans(t *testing.T) {
	r, _ := hostRegistry(t)
	NewSet(nil, DisableOpenSans()).Apply(r)

	if got := host.TranslateWithContext(r, "on", host.OpenSansContext, "default"); got != "off" {
		t.Fatalf("open sans = %q, want off", got)
	}
	if got := host.TranslateWithContext(r, "on", "something else", "default"); got != "on" {
		t.Fatalf("unrelated context = %q", got)
	}
	reg := r.Registrations(hook.GettextWithContext)[0]
	if reg.Priority != 888 || reg.Arity != 4 {
		t.Fatalf("registration = %+v", reg)
	}
}

func TestSearchTitlesOnly(t *testing.T) {
	r, _ := hostRegistry(t)
	NewSet(nil, SearchTitlesOnly()).Apply(r)

	q := content.SearchQuery{Terms: []string{"go", "50%"}}
	got := hook.FilterAs(r, hook.PostsSearch, content.DefaultSearchClause(q), q)
	want := content.SearchClause{
		SQL:  " AND p.post_title LIKE ? AND p.post_title LIKE ? AND p.post_password = ''",
		Args: []any{"%go%", `%50\%%`},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("clause = %+v, want %+v", got, want)
	}

	q = content.SearchQuery{Terms: []string{"go"}, Exact: true, LoggedIn: true}
	got = hook.FilterAs(r, hook.PostsSearch, content.DefaultSearchClause(q), q)
	if got.SQL != " AND p.post_title LIKE ?" || got.Args[0] != "go" {
		t.Fatalf("exact logged-in clause = %+v", got)
	}

	empty := hook.FilterAs(r, hook.PostsSearch, content.SearchClause{}, content.SearchQuery{})
	if !empty.Empty() {
		t.Fatalf("empty search rewritten to %+v", empty)
	}
}

func TestMissingTargetIsNoop(t *testing.T) {
	r, _ := hostRegistry(t)
	ghost := Remove("ghost", Target{"no_such_point", "no_such_callback", 10}, Target{hook.Head, "nope", 3})

	set := NewSet(nil, ghost, RemoveHeadClutter())
	set.Apply(r)

	if r.Has(hook.Head, host.Generator) {
		t.Fatal("RemoveHeadClutter lost its effect next to a no-op toggle")
	}
	if !reflect.DeepEqual(set.Applied(), []string{"ghost", NameRemoveHeadClutter}) {
		t.Fatalf("applied = %v", set.Applied())
	}
}

func TestSet_AppliesOnceAndSkipsFailures(t *testing.T) {
	r := hook.New(nil)
	calls := 0
	set := NewSet(nil,
		Toggle{Name: "count", Apply: func(*hook.Registry) error { calls++; return nil }},
		Toggle{Name: "broken", Apply: func(*hook.Registry) error { return errors.New("boom") }},
	)
	set.Apply(r)
	set.Apply(r)
	if calls != 1 {
		t.Fatalf("toggle ran %d times, want 1", calls)
	}
	if !reflect.DeepEqual(set.Applied(), []string{"count"}) {
		t.Fatalf("applied = %v", set.Applied())
	}
}

func TestWithout(t *testing.T) {
	got := Without(Defaults(home), []string{NameDisableREST, NameDisableFeeds})
	if len(got) != len(Defaults(home))-2 {
		t.Fatalf("len = %d", len(got))
	}
	for _, tg := range got {
		if tg.Name == NameDisableREST || tg.Name == NameDisableFeeds {
			t.Fatalf("%s not removed", tg.Name)
		}
	}
}

func TestToggles_Commute(t *testing.T) {
	r0, s0 := hostRegistry(t)
	NewSet(nil, Defaults(home)...).Apply(r0)
	r0.DispatchAction(hook.Init, s0)
	want := state(r0)

	rapid.Check(t, func(rt *rapid.T) {
		toggles := Defaults(home)
		perm := rapid.Permutation(toggles).Draw(rt, "order")

		r, s := hostRegistry(rt)
		NewSet(nil, perm...).Apply(r)
		r.DispatchAction(hook.Init, s)

		got := state(r)
		if !reflect.DeepEqual(got, want) {
			rt.Fatalf("state differs for order %v:\n got %v\nwant %v", names(perm), got, want)
		}
	})
}

func names(ts []Toggle) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Name
	}
	return out
}
