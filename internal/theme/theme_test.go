package theme

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yanizio/primer/internal/hook"
	"github.com/yanizio/primer/internal/imagesize"
	"github.com/yanizio/primer/internal/page"
	"github.com/yanizio/primer/internal/request"
	"github.com/yanizio/primer/internal/sidebar"
)

func TestDefaultDeclarations(t *testing.T) {
	d, err := DefaultDeclarations()
	if err != nil {
		t.Fatal(err)
	}
	if len(d.ImageSizes) != 2 || d.ImageSizes[1].Name != "primer-hero" || d.ImageSizes[1].Crop != imagesize.Anchored("center", "center") {
		t.Fatalf("image sizes = %+v", d.ImageSizes)
	}
	if d.ImageSizes[0].Height != imagesize.Unconstrained {
		t.Fatalf("featured height = %d", d.ImageSizes[0].Height)
	}
	if len(d.Sidebars) != 6 || !d.Sidebars[2].Footer || d.Sidebars[5].ID != "hero" {
		t.Fatalf("sidebars = %+v", d.Sidebars)
	}
	if d.NavMenus["social"] != "Social Menu" {
		t.Fatalf("menus = %v", d.NavMenus)
	}
}

func TestLoadDeclarations_Override(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "theme.yaml")
	override := `
image_sizes:
  - name: primer-hero
    width: 1200
    height: 600
  - name: card
    width: 300
    height: 200
    crop: true
sidebars:
  - id: footer-3
    footer: false
nav_menus:
  social: ""
  legal: Legal Links
`
	if err := os.WriteFile(path, []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := LoadDeclarations(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.ImageSizes) != 3 || d.ImageSizes[1].Width != 1200 || d.ImageSizes[2].Name != "card" || !d.ImageSizes[2].Crop.Enabled {
		t.Fatalf("image sizes = %+v", d.ImageSizes)
	}
	if d.Sidebars[4].ID != "footer-3" || d.Sidebars[4].Footer {
		t.Fatalf("footer-3 = %+v", d.Sidebars[4])
	}
	if d.NavMenus["legal"] != "Legal Links" || d.NavMenus["social"] != "" || d.NavMenus["primary"] != "Primary Menu" {
		t.Fatalf("menus = %v", d.NavMenus)
	}

	if _, err := LoadDeclarations(filepath.Join(dir, "missing.yaml")); err != nil {
		t.Fatalf("missing override: %v", err)
	}
}

func TestSurface(t *testing.T) {
	s := NewSurface()
	s.AddImageSize("b", 1, 2, imagesize.NoCrop)
	s.AddImageSize("a", 3, 4, imagesize.Crop{Enabled: true})
	s.RegisterNavMenu("primary", "Primary")

	s.RegisterSidebar(sidebarArea("x", "X"))
	s.RegisterSidebar(sidebarArea("y", "Y"))
	s.RegisterSidebar(sidebarArea("x", "X2"))

	if got := s.ImageSizes(); got[0].Name != "a" || got[1].Height != 2 {
		t.Fatalf("sizes = %+v", got)
	}
	got := s.Sidebars()
	if len(got) != 2 || got[0].Name != "X2" || got[1].ID != "y" {
		t.Fatalf("sidebars = %+v", got)
	}
	if s.NavMenus()["primary"] != "Primary" {
		t.Fatal("menu missing")
	}
}

func TestRender(t *testing.T) {
	th, err := Load("primer", "")
	if err != nil {
		t.Fatal(err)
	}

	r := hook.New(nil)
	_, _ = r.AddAction(hook.Content, "hello", hook.Action1(func(reg *page.Region) error {
		reg.WriteString("<p>hello</p>")
		return nil
	}))
	doc := page.NewComposer(r, nil, "one-column", nil).Compose(context.Background(), &request.Context{Type: request.Search, Terms: []string{"a", "b"}})

	var b strings.Builder
	if err := th.Render(&b, Page{Doc: doc, Home: "https://example.test"}); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	for _, want := range []string{
		`<body class="one-column search">`,
		"<p>hello</p>",
		`value="a b"`,
		`/themes/primer/assets/css/style.css`,
		`max-width:688px`,
		`action="https://example.test/"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestLoad_OverrideReplacesLayout(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "templates"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "templates", "layout.html"), []byte(`custom {{region .Doc "content"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	th, err := Load("child", dir)
	if err != nil {
		t.Fatal(err)
	}
	doc := page.NewComposer(hook.New(nil), nil, "", nil).Compose(context.Background(), &request.Context{})

	var b strings.Builder
	if err := th.Render(&b, Page{Doc: doc}); err != nil {
		t.Fatal(err)
	}
	if b.String() != "custom " {
		t.Fatalf("override output = %q", b.String())
	}

	if _, err := Load("bare", t.TempDir()); err != nil {
		t.Fatalf("override dir without templates: %v", err)
	}
}

func sidebarArea(id, name string) sidebar.Area { return sidebar.Area{ID: id, Name: name} }
