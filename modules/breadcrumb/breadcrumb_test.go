package breadcrumb

import (
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/yanizio/primer/internal/hook"
	"github.com/yanizio/primer/internal/module"
	"github.com/yanizio/primer/internal/page"
	"github.com/yanizio/primer/internal/request"
)

func labels(t []Crumb) []string {
	out := make([]string, len(t))
	for i, c := range t {
		out[i] = c.Label
	}
	return out
}

func TestTrail(t *testing.T) {
	cat, _ := url.Parse("/category/news/local-events/")
	cases := []struct {
		name string
		req  *request.Context
		want []string
	}{
		{"single", &request.Context{Type: request.Single, Year: 2024, Month: 5, Slug: "hello-world"}, []string{"Home", "2024", "May", "Hello World"}},
		{"page", &request.Context{Type: request.Page, Slug: "about"}, []string{"Home", "About"}},
		{"category", &request.Context{Type: request.Category, Slug: "local-events", URL: cat}, []string{"Home", "News", "Local Events"}},
		{"tag", &request.Context{Type: request.Tag, Slug: "go"}, []string{"Home", "Tag: go"}},
		{"year", &request.Context{Type: request.Date, Year: 2023}, []string{"Home", "2023"}},
		{"search", &request.Context{Type: request.Search, Terms: []string{"hook", "order"}}, []string{"Home", "Search: hook order"}},
		{"front", &request.Context{Type: request.Home, FrontPage: true}, []string{}},
		{"404", &request.Context{Type: request.NotFound}, []string{}},
	}
	for _, tc := range cases {
		got := labels(Trail(tc.req))
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s: trail = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestTrail_Links(t *testing.T) {
	tr := Trail(&request.Context{Type: request.Single, Year: 2024, Month: 5, Slug: "hello"})
	paths := []string{tr[0].Path, tr[1].Path, tr[2].Path, tr[3].Path}
	if !reflect.DeepEqual(paths, []string{"/", "/2024/", "/2024/05/", ""}) {
		t.Fatalf("paths = %v", paths)
	}
}

func TestSetup_RendersBeforeContent(t *testing.T) {
	r := hook.New(nil)
	if err := (Module{}).Setup(r, module.Env{}); err != nil {
		t.Fatal(err)
	}
	regs := r.Registrations(hook.BeforeContent)
	if len(regs) != 1 || regs[0].ID != TrailID || regs[0].Priority != 5 || regs[0].Owner != "breadcrumb" {
		t.Fatalf("registrations = %+v", regs)
	}

	reg := &page.Region{Name: "before_content", Point: hook.BeforeContent}
	r.DispatchAction(hook.BeforeContent, reg, &page.View{Req: &request.Context{Type: request.Tag, Slug: "<go>"}})
	out := string(reg.HTML())
	if !strings.Contains(out, `<li class="crumb-home"><a href="/">Home</a></li>`) {
		t.Fatalf("html = %s", out)
	}
	if !strings.Contains(out, `aria-current="page">Tag: &lt;go&gt;</li>`) {
		t.Fatalf("label not escaped: %s", out)
	}
}
