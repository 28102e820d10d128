package bootstrap

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/primer/internal/hook"
	"github.com/yanizio/primer/internal/host"
	"github.com/yanizio/primer/internal/imagesize"
	"github.com/yanizio/primer/internal/page"
	"github.com/yanizio/primer/internal/request"
	"github.com/yanizio/primer/internal/theme"
	"github.com/yanizio/primer/internal/toggle"
)

func engine(t *testing.T, disabled ...string) (*Engine, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { raw.Close() })

	decl, err := theme.DefaultDeclarations()
	if err != nil {
		t.Fatal(err)
	}
	e, err := Initialize(Options{
		Site:            page.SiteInfo{Name: "Example", Home: "https://example.test/"},
		Version:         "6.5",
		DefaultLayout:   "one-column-wide",
		Declarations:    decl,
		DisabledToggles: disabled,
		DB:              sqlx.NewDb(raw, "mysql"),
	})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return e, mock
}

func TestInitialize_Lifecycle(t *testing.T) {
	e, mock := engine(t)

	for _, p := range []string{hook.AfterSetupTheme, hook.WidgetsInit, hook.Init} {
		if e.Hooks.Dispatched(p) != 1 {
			t.Fatalf("%s dispatched %d times", p, e.Hooks.Dispatched(p))
		}
	}
	if e.ContentWidth != 1068 {
		t.Fatalf("content width = %d", e.ContentWidth)
	}
	if e.Site.Home != "https://example.test" {
		t.Fatalf("home = %q", e.Site.Home)
	}

	sizes := e.Surface.ImageSizes()
	if len(sizes) != 2 || sizes[0].Name != "primer-featured" || sizes[1].Crop != imagesize.Anchored("center", "center") {
		t.Fatalf("surface sizes = %+v", sizes)
	}
	if !e.Hooks.Has(hook.ImageSizeNamesChoose, imagesize.LabelFilterID) {
		t.Fatal("label filter missing")
	}
	if got := e.Surface.Sidebars(); len(got) != 6 || got[0].ID != "sidebar-1" {
		t.Fatalf("surface sidebars = %+v", got)
	}
	if len(e.Surface.NavMenus()) != 3 || !e.Menus.Has("social") {
		t.Fatalf("menus = %v", e.Surface.NavMenus())
	}

	// Toggles have trimmed the host defaults.
	if e.Hooks.Has(hook.Head, host.Generator) || e.Hooks.Has(hook.Head, host.EmojiDetectionScript) {
		t.Fatal("head clutter survived")
	}
	if e.Site.Feeds != nil || e.Classifier.Embeds() {
		t.Fatalf("feeds = %v, embeds = %v", e.Site.Feeds, e.Classifier.Embeds())
	}
	if host.RestEnabled(e.Hooks) {
		t.Fatal("REST still enabled")
	}
	if len(e.Toggles.Applied()) != len(toggle.Defaults("")) {
		t.Fatalf("applied = %v", e.Toggles.Applied())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("initialization touched the database: %v", err)
	}
}

func TestInitialize_DisabledToggles(t *testing.T) {
	e, _ := engine(t, toggle.NameDisableFeeds, toggle.NameDisableEmbeds, toggle.NameDisableREST)

	if len(e.Site.Feeds) != len(host.DefaultFeeds) {
		t.Fatalf("feeds = %v", e.Site.Feeds)
	}
	if !e.Classifier.Embeds() {
		t.Fatal("embeds disabled although toggle was off")
	}
	if !host.RestEnabled(e.Hooks) || !e.Hooks.Has(hook.Head, host.FeedLinks) {
		t.Fatal("defaults removed by a disabled toggle")
	}
}

func TestInitialize_ComposesWithoutFooterWidgets(t *testing.T) {
	e, mock := engine(t)

	mock.ExpectQuery(`SELECT .* FROM wp_posts p`).
		WillReturnRows(sqlmock.NewRows([]string{"ID", "post_name", "post_title", "post_content", "post_excerpt",
			"post_type", "post_status", "post_password", "post_date", "post_author"}))

	doc := e.Composer.Compose(context.Background(), &request.Context{Type: request.Page, Slug: "missing"})
	if doc.Status() != 404 {
		t.Fatalf("status = %d", doc.Status())
	}
	if doc.Region("sidebar") != nil {
		t.Fatal("sidebar rendered in one-column-wide layout")
	}
}
