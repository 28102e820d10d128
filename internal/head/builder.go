// internal/head/builder.go
//
// The Builder collects everything that should appear inside a page's
// <head> element.  It is scoped to a single request.  The host and the
// theme attach callbacks to the `wp_head` action; each one receives the
// Builder and pushes tags into it.  Because wp_head fires callbacks in
// priority order, the Builder keeps tags in insertion order.
//
// Features
// --------
//   - SetTitle          single <title> tag (last call wins).
//   - Meta, Link,       arbitrary pre-built tags, deduplicated per request.
//     Script, Style
//   - InlineStyle       raw CSS wrapped in <style> for hero images and such.
//   - HTML              concatenated output for the layout template.
package head

import (
	"html/template"
	"strings"
	"sync"
)

// Builder is safe for use by one request's callbacks.  The mutex only
// guards against a module that renders widgets concurrently.
type Builder struct {
	mu    sync.Mutex
	title string
	tags  []string
	seen  map[string]struct{}
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{seen: make(map[string]struct{})}
}

// SetTitle overrides the page <title>.  The last caller wins.
func (b *Builder) SetTitle(t string) {
	b.mu.Lock()
	b.title = t
	b.mu.Unlock()
}

// TitleText returns the raw title text.
func (b *Builder) TitleText() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.title
}

// Title returns a fully formed <title> tag or an empty string.
func (b *Builder) Title() template.HTML {
	t := b.TitleText()
	if t == "" {
		return ""
	}
	return template.HTML("<title>" + template.HTMLEscapeString(t) + "</title>")
}

func (b *Builder) Meta(tag string)   { b.add("meta:"+tag, tag) }
func (b *Builder) Link(tag string)   { b.add("link:"+tag, tag) }
func (b *Builder) Script(tag string) { b.add("script:"+tag, tag) }
func (b *Builder) Style(tag string)  { b.add("style:"+tag, tag) }

// InlineStyle wraps css in a <style> element tagged with id.
func (b *Builder) InlineStyle(id, css string) {
	tag := `<style id="` + template.HTMLEscapeString(id) + `">` + css + `</style>`
	b.add("inline:"+id, tag)
}

func (b *Builder) add(key, tag string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.seen[key]; dup {
		return
	}
	b.seen[key] = struct{}{}
	b.tags = append(b.tags, tag)
}

// Tags returns a copy of the collected tags in insertion order.
func (b *Builder) Tags() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.tags...)
}

// Contains reports whether any collected tag contains substr.  Handy in
// tests and in modules that avoid emitting a tag twice.
func (b *Builder) Contains(substr string) bool {
	for _, t := range b.Tags() {
		if strings.Contains(t, substr) {
			return true
		}
	}
	return false
}

// HTML joins the pre-escaped tags, one per line.
func (b *Builder) HTML() template.HTML {
	return template.HTML(strings.Join(b.Tags(), "\n"))
}
