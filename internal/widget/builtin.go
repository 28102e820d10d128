package widget

import (
	"context"
	"html/template"
	"strings"
)

func init() {
	Register(Text{})
	Register(HeroText{})
}

// Text renders free text, one paragraph per blank-line separated block.
type Text struct{}

func (Text) Type() string { return "text" }

func (Text) Render(_ context.Context, s map[string]string) (template.HTML, error) {
	var b strings.Builder
	b.WriteString(`<div class="textwidget">`)
	for _, para := range strings.Split(s["text"], "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(template.HTMLEscapeString(para))
		b.WriteString("</p>")
	}
	b.WriteString(`</div>`)
	return template.HTML(b.String()), nil
}

// HeroText renders the front-page hero message with an optional button.
type HeroText struct{}

func (HeroText) Type() string { return "hero-text" }

func (HeroText) Render(_ context.Context, s map[string]string) (template.HTML, error) {
	var b strings.Builder
	b.WriteString(`<div class="textwidget">`)
	if msg := strings.TrimSpace(s["message"]); msg != "" {
		b.WriteString("<p>" + template.HTMLEscapeString(msg) + "</p>")
	}
	if label, url := s["button_text"], s["button_url"]; label != "" && url != "" {
		b.WriteString(`<p><a class="button" href="` + template.HTMLEscapeString(url) + `">` +
			template.HTMLEscapeString(label) + `</a></p>`)
	}
	b.WriteString(`</div>`)
	return template.HTML(b.String()), nil
}
