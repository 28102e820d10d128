// internal/server/server_test.go
//
// End-to-end requests through the chi router against a bootstrapped
// engine on go-sqlmock.
//
// Run: go test ./internal/server -v

package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/primer/internal/bootstrap"
	"github.com/yanizio/primer/internal/page"
	"github.com/yanizio/primer/internal/theme"
	"github.com/yanizio/primer/internal/toggle"
)

var postCols = []string{"ID", "post_name", "post_title", "post_content", "post_excerpt",
	"post_type", "post_status", "post_password", "post_date", "post_author"}

func newSite(t *testing.T, disabled ...string) (http.Handler, sqlmock.Sqlmock) {
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
	e, err := bootstrap.Initialize(bootstrap.Options{
		Site:            page.SiteInfo{Name: "Example", Home: "https://example.test"},
		Version:         "6.5",
		Declarations:    decl,
		DisabledToggles: disabled,
		DB:              sqlx.NewDb(raw, "mysql"),
	})
	if err != nil {
		t.Fatal(err)
	}
	th, err := theme.Load("primer", "")
	if err != nil {
		t.Fatal(err)
	}
	h, err := New(Options{Engine: e, Theme: th})
	if err != nil {
		t.Fatal(err)
	}
	return h, mock
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestFeedRedirectsHome(t *testing.T) {
	h, _ := newSite(t)
	rr := get(h, "/feed/")
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "https://example.test/" {
		t.Fatalf("feed: %d %s", rr.Code, rr.Header().Get("Location"))
	}
}

func TestFeedServedWhenToggleOff(t *testing.T) {
	h, mock := newSite(t, toggle.NameDisableFeeds, toggle.NameDisableEmoji)
	mock.ExpectQuery(`FROM wp_posts p`).WillReturnRows(sqlmock.NewRows(postCols).
		AddRow(3, "hello", "Hello", "Body 🙂", "", "post", "publish", "", time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), 1))

	rr := get(h, "/feed/")
	if rr.Code != http.StatusOK || !strings.HasPrefix(rr.Header().Get("Content-Type"), "application/rss+xml") {
		t.Fatalf("feed: %d %s", rr.Code, rr.Header().Get("Content-Type"))
	}
	body := rr.Body.String()
	if !strings.Contains(body, "<link>https://example.test/2024/05/hello/</link>") {
		t.Fatalf("feed body = %s", body)
	}
	if strings.Contains(body, "🙂") || !strings.Contains(body, "wp-smiley") {
		t.Fatal("emoji not staticized in feed")
	}
}

func TestArchiveIsNotFound(t *testing.T) {
	h, _ := newSite(t)
	rr := get(h, "/category/news/")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "error-404") || !strings.Contains(body, `class="two-column-default error404`) {
		t.Fatalf("body = %s", body)
	}
	if strings.Contains(body, `name="generator"`) || strings.Contains(body, "emoji") {
		t.Fatal("trimmed head output leaked into page")
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("security headers missing")
	}
}

func TestSingleWithLayoutOverride(t *testing.T) {
	h, mock := newSite(t)
	row := func() *sqlmock.Rows {
		return sqlmock.NewRows(postCols).
			AddRow(7, "hello", "Hello", "World", "", "post", "publish", "", time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), 1)
	}
	mock.ExpectQuery(`FROM wp_posts p`).WithArgs("hello", "post").WillReturnRows(row())
	mock.ExpectQuery(`FROM wp_postmeta`).WithArgs(int64(7), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"meta_value"}).AddRow("one-column"))
	mock.ExpectQuery(`FROM wp_posts p`).WithArgs("hello", "post").WillReturnRows(row())

	rr := get(h, "/2024/05/hello/")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `<article id="post-7"`) || !strings.Contains(body, `class="one-column single`) {
		t.Fatalf("body = %s", body)
	}
	if !strings.Contains(body, "<title>Hello") {
		t.Fatal("title not set from post")
	}
	if rr.Header().Get("Link") != "" {
		t.Fatal("shortlink header survived head-clutter toggle")
	}
}

func TestRESTDisabled(t *testing.T) {
	h, _ := newSite(t)
	rr := get(h, "/wp-json/oembed/1.0/embed?url=https://example.test/2024/05/hello/")
	if rr.Code != http.StatusForbidden || !strings.Contains(rr.Body.String(), "rest_disabled") {
		t.Fatalf("rest: %d %s", rr.Code, rr.Body.String())
	}
}

func TestRESTEmbedsAndJSONP(t *testing.T) {
	h, _ := newSite(t, toggle.NameDisableREST, toggle.NameDisableEmbeds)

	rr := get(h, "/wp-json/oembed/1.0/embed?url=https://example.test/2024/05/hello/")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"provider_name":"Example"`) {
		t.Fatalf("oembed: %d %s", rr.Code, rr.Body.String())
	}

	rr = get(h, "/wp-json/oembed/1.0/embed?url=https://example.test/x/&_jsonp=cb")
	if !strings.HasPrefix(rr.Body.String(), "/**/cb(") {
		t.Fatalf("jsonp body = %s", rr.Body.String())
	}

	rr = get(h, "/wp-json/oembed/1.0/embed?url=https://example.test/x/&_jsonp=alert(1)")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid callback accepted: %d", rr.Code)
	}
}

func TestEmbedRouteGoneWithEmbedsOff(t *testing.T) {
	h, _ := newSite(t, toggle.NameDisableREST)
	rr := get(h, "/wp-json/oembed/1.0/embed?url=https://example.test/x/")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("oembed route still mounted: %d", rr.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newSite(t)
	_ = get(h, "/category/news/")
	rr := get(h, "/metrics")
	if !strings.Contains(rr.Body.String(), `primer_page_render_total{status="404"}`) {
		t.Fatal("page render counter missing")
	}
}
