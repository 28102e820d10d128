// Package theme holds the presentation side of Primer:
//
//   - the embedded page templates, optionally overridden from disk,
//   - the embedded declarations (image sizes, sidebars, nav menus) and the
//     override file layered over them,
//   - Surface, the rendering side the declarative registries publish to,
//   - Render, which turns a composed page.Document into HTML.
//
// Templates are parsed once at startup; Render is safe for concurrent use.
package theme

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/yanizio/primer/internal/page"
)

//go:embed templates/*.html
var embedded embed.FS

//go:embed defaults.yaml
var defaultDeclarations []byte

// Theme is returned by Load once all templates are parsed.
type Theme struct {
	Name      string
	Renderer  *template.Template
	AssetFunc func(string) string
}

// Load parses the embedded templates, then every *.html under
// overrideDir/templates when overrideDir is set.  Later definitions of the
// same template name win, so overrides replace built-ins.
func Load(name, overrideDir string) (*Theme, error) {
	th := &Theme{Name: name}
	assetPrefix := "/themes/" + name + "/assets/"
	th.AssetFunc = func(p string) string { return assetPrefix + strings.TrimPrefix(p, "/") }

	tpl := template.New(name).Funcs(FuncMap(th.AssetFunc))

	files, err := CollectHTML(embedded, "templates")
	if err != nil {
		return nil, fmt.Errorf("walk embedded templates: %w", err)
	}
	if _, err := tpl.ParseFS(embedded, files...); err != nil {
		return nil, fmt.Errorf("parse embedded templates: %w", err)
	}

	if overrideDir != "" {
		fsys := os.DirFS(overrideDir)
		files, err := CollectHTML(fsys, "templates")
		if err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("walk theme overrides: %w", err)
		}
		if len(files) > 0 {
			if _, err := tpl.ParseFS(fsys, files...); err != nil {
				return nil, fmt.Errorf("parse theme overrides: %w", err)
			}
		}
	}

	th.Renderer = tpl
	return th, nil
}

func isNotExist(err error) bool { return errors.Is(err, fs.ErrNotExist) }

// Page is the data the layout template receives.
type Page struct {
	Doc   *page.Document
	Home  string
	Lang  string
	Query string
}

// Render executes layout.html for doc.
func (th *Theme) Render(w io.Writer, p Page) error {
	if p.Lang == "" {
		p.Lang = "en"
	}
	if p.Query == "" && p.Doc != nil && p.Doc.View.Req != nil {
		p.Query = strings.Join(p.Doc.View.Req.Terms, " ")
	}
	// Render into a buffer so a template error never leaves half a page.
	var buf bytes.Buffer
	if err := th.Renderer.ExecuteTemplate(&buf, "layout.html", p); err != nil {
		return fmt.Errorf("render layout: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// FuncMap returns the template helpers.
func FuncMap(asset func(string) string) template.FuncMap {
	return template.FuncMap{
		"asset": asset,
		"join":  strings.Join,
		"region": func(d *page.Document, name string) template.HTML {
			if d == nil {
				return ""
			}
			if r := d.Region(name); r != nil {
				return r.HTML()
			}
			return ""
		},
	}
}
