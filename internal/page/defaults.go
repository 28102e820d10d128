package page

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/primer/internal/content"
	"github.com/yanizio/primer/internal/hook"
	"github.com/yanizio/primer/internal/navmenu"
	"github.com/yanizio/primer/internal/request"
	"github.com/yanizio/primer/internal/sidebar"
	"github.com/yanizio/primer/internal/widget"
)

// Callback identities of the theme's own region callbacks.
const (
	SiteTitleID         = "primer_add_site_title"
	PrimaryNavID        = "primer_add_primary_navigation"
	ContentLoopID       = "primer_content_loop"
	SidebarID           = "primer_add_sidebar"
	FooterWidgetsID     = "primer_add_footer_widgets"
	FooterNavID         = "primer_add_footer_navigation"
	SocialNavID         = "primer_add_social_navigation"
	CreditID            = "primer_add_credit"
	SidebarForLayoutID  = "primer_sidebar_for_layout"
	FooterHasWidgetsID  = "primer_footer_has_widgets"
	CategorizedID       = "primer_categorized_blog"
	primaryNavPriority  = 11
	footerNavPriority   = 5
	socialNavPriority   = 7
	defaultListingLimit = 10
)

// Primary and secondary sidebar ids.
const (
	PrimarySidebar   = "sidebar-1"
	SecondarySidebar = "sidebar-2"
)

// Posts is the read side of the content repository the content region
// needs.
type Posts interface {
	PostBySlug(ctx context.Context, slug, postType string) (*content.Post, error)
	Recent(ctx context.Context, limit int) ([]content.Post, error)
	Archive(ctx context.Context, req *request.Context, limit int) ([]content.Post, error)
	Search(ctx context.Context, q content.SearchQuery, limit int) ([]content.Post, error)
}

// Widgets reads widget assignment and instances.
type Widgets interface {
	SidebarWidgets(ctx context.Context) (map[string][]string, error)
	Widget(ctx context.Context, id string) (*content.Widget, error)
}

// Categories answers whether the blog uses more than one category.
type Categories interface {
	HasActiveCategories(ctx context.Context) bool
}

// SiteInfo is the blog identity shown in header and footer.
type SiteInfo struct {
	Name    string
	Tagline string
	Home    string
	Credit  string
}

// Deps are the collaborators of the default region callbacks.
type Deps struct {
	Site     SiteInfo
	Posts    Posts
	Widgets  Widgets
	Sidebars *sidebar.Registry
	Menus    *navmenu.Registry

	// Categories adds the "categorized" body class.  Optional.
	Categories Categories
	Log        *zap.Logger
}

// RegisterDefaults attaches the theme's region callbacks and show filters.
func RegisterDefaults(r *hook.Registry, d Deps) error {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	d.Log = d.Log.Named("page")
	view := hook.WithArity(2)
	owner := hook.WithOwner("primer")

	actions := []struct {
		point, id string
		fn        func(*Region, *View) error
		prio      int
	}{
		{hook.BeforeHeaderWrapper, SiteTitleID, d.siteTitle, hook.DefaultPriority},
		{hook.AfterHeader, PrimaryNavID, d.menu("primary", "main-navigation"), primaryNavPriority},
		{hook.Content, ContentLoopID, d.contentLoop, hook.DefaultPriority},
		{hook.Sidebar, SidebarID, d.sidebar, hook.DefaultPriority},
		{hook.FooterWidgets, FooterWidgetsID, d.footerWidgets, hook.DefaultPriority},
		{hook.SiteInfo, FooterNavID, d.menu("footer", "footer-navigation"), footerNavPriority},
		{hook.SiteInfo, SocialNavID, d.menu("social", "social-navigation"), socialNavPriority},
		{hook.SiteInfo, CreditID, d.credit, hook.DefaultPriority},
	}
	for _, a := range actions {
		if _, err := r.AddAction(a.point, a.id, hook.Action2(a.fn), view, owner, hook.WithPriority(a.prio)); err != nil {
			return fmt.Errorf("register %s: %w", a.id, err)
		}
	}

	if _, err := r.AddFilter(hook.ShowRegion(RegionName(hook.Sidebar)), SidebarForLayoutID,
		hook.Filter2(func(show bool, v *View) bool {
			return show && v.Layout.HasSidebar()
		}), view, owner); err != nil {
		return fmt.Errorf("register %s: %w", SidebarForLayoutID, err)
	}
	if _, err := r.AddFilter(hook.ShowRegion(RegionName(hook.FooterWidgets)), FooterHasWidgetsID,
		hook.Filter2(func(show bool, v *View) bool {
			return show && d.Sidebars != nil && len(d.Sidebars.ActiveFooterAreas(v.Context())) > 0
		}), view, owner); err != nil {
		return fmt.Errorf("register %s: %w", FooterHasWidgetsID, err)
	}
	if d.Categories != nil {
		if _, err := r.AddFilter(hook.BodyClass, CategorizedID,
			hook.Filter2(func(classes []string, v *View) []string {
				if d.Categories.HasActiveCategories(v.Context()) {
					return append(classes, "categorized")
				}
				return classes
			}), view, owner); err != nil {
			return fmt.Errorf("register %s: %w", CategorizedID, err)
		}
	}
	return nil
}

func (d Deps) siteTitle(reg *Region, v *View) error {
	tag := "div"
	if v.Req != nil && v.Req.FrontPage {
		tag = "h1"
	}
	reg.WriteString(fmt.Sprintf(`<div class="site-title-wrapper"><%s class="site-title"><a href="%s/" rel="home">%s</a></%s>`,
		tag, esc(d.Site.Home), esc(d.Site.Name), tag))
	if d.Site.Tagline != "" {
		reg.WriteString(`<div class="site-description">` + esc(d.Site.Tagline) + `</div>`)
	}
	reg.WriteString(`</div>`)
	return nil
}

func (d Deps) menu(location, class string) func(*Region, *View) error {
	return func(reg *Region, _ *View) error {
		if d.Menus == nil || !d.Menus.Has(location) {
			return nil
		}
		reg.WriteString(fmt.Sprintf(`<nav class="%s" data-location="%s"></nav>`, class, location))
		return nil
	}
}

func (d Deps) credit(reg *Region, _ *View) error {
	text := d.Site.Credit
	if text == "" {
		text = d.Site.Name
	}
	reg.WriteString(`<div class="site-info">` + esc(text) + `</div>`)
	return nil
}

func (d Deps) contentLoop(reg *Region, v *View) error {
	if d.Posts == nil {
		return errors.New("no content repository")
	}
	ctx, req := v.Context(), v.Req
	if req.IsNotFound() {
		writeNotFound(reg)
		return nil
	}

	var (
		posts []content.Post
		err   error
	)
	switch {
	case req.Type == request.Single || req.Type == request.Page:
		postType := "post"
		if req.Type == request.Page {
			postType = "page"
		}
		var p *content.Post
		p, err = d.Posts.PostBySlug(ctx, req.Slug, postType)
		if errors.Is(err, content.ErrNotFound) {
			req.SetNotFound()
			writeNotFound(reg)
			return nil
		}
		if err == nil {
			req.ObjectID = p.ID
			v.Head.SetTitle(p.Title)
			reg.WriteString(article(*p, true))
			return nil
		}
	case req.Type.IsArchive():
		posts, err = d.Posts.Archive(ctx, req, defaultListingLimit)
	case req.Type == request.Search:
		posts, err = d.Posts.Search(ctx, content.SearchQuery{Terms: req.Terms, Exact: req.Exact, LoggedIn: req.LoggedIn}, defaultListingLimit)
	default:
		posts, err = d.Posts.Recent(ctx, defaultListingLimit)
	}
	if err != nil {
		return fmt.Errorf("content %s: %w", req.Type, err)
	}

	if len(posts) == 0 {
		reg.WriteString(`<section class="no-results"><p>Nothing matched.</p></section>`)
		return nil
	}
	for _, p := range posts {
		reg.WriteString(article(p, false))
	}
	return nil
}

func (d Deps) sidebar(reg *Region, v *View) error {
	ids := []string{PrimarySidebar}
	if v.Layout.HasSecondarySidebar() {
		ids = append(ids, SecondarySidebar)
	}
	for _, id := range ids {
		markup, err := d.renderArea(v.Context(), id)
		if err != nil {
			return err
		}
		if markup != "" {
			reg.WriteString(fmt.Sprintf(`<div id="%s" class="widget-area" role="complementary">%s</div>`, id, markup))
		}
	}
	return nil
}

func (d Deps) footerWidgets(reg *Region, v *View) error {
	if d.Sidebars == nil {
		return nil
	}
	active := d.Sidebars.ActiveFooterAreas(v.Context())
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="container footer-widget-area columns-%d">`, len(active))
	for _, id := range active {
		markup, err := d.renderArea(v.Context(), id)
		if err != nil {
			return err
		}
		b.WriteString(`<div class="footer-widget">` + markup + `</div>`)
	}
	b.WriteString(`</div>`)
	reg.WriteString(b.String())
	return nil
}

// renderArea renders every widget assigned to area id.  Widgets of an
// unknown type, or that fail to load or render, are skipped.
func (d Deps) renderArea(ctx context.Context, id string) (string, error) {
	if d.Sidebars == nil || d.Widgets == nil {
		return "", nil
	}
	area, ok := d.Sidebars.Area(id)
	if !ok {
		return "", nil
	}
	assigned, err := d.Widgets.SidebarWidgets(ctx)
	if err != nil {
		return "", fmt.Errorf("widgets for %s: %w", id, err)
	}

	var b strings.Builder
	for _, wid := range assigned[id] {
		inst, err := d.Widgets.Widget(ctx, wid)
		if err != nil {
			d.Log.Warn("widget load failed", zap.String("widget", wid), zap.Error(err))
			continue
		}
		typ := widget.Lookup(inst.Type)
		if typ == nil {
			d.Log.Debug("unknown widget type", zap.String("widget", wid), zap.String("type", inst.Type))
			continue
		}
		body, err := typ.Render(ctx, inst.Settings)
		if err != nil {
			d.Log.Warn("widget render failed", zap.String("widget", wid), zap.Error(err))
			continue
		}
		b.WriteString(sidebar.WrapWidget(area, esc(wid), "widget_"+esc(inst.Type), esc(inst.Settings["title"]), string(body)))
	}
	return b.String(), nil
}

func article(p content.Post, full bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<article id="post-%d" class="%s"><header class="entry-header"><h2 class="entry-title">%s</h2></header>`,
		p.ID, esc(p.Type), esc(p.Title))
	body := p.Excerpt
	if full || body == "" {
		body = p.Body
	}
	b.WriteString(`<div class="entry-content">` + esc(body) + `</div></article>`)
	return b.String()
}

func writeNotFound(reg *Region) {
	reg.WriteString(`<section class="error-404 not-found"><h1 class="page-title">Oops! That page can&rsquo;t be found.</h1></section>`)
}

func esc(s string) string { return template.HTMLEscapeString(s) }
