// internal/bootstrap/bootstrap.go
//
// Engine assembly.
//
// Context
// -------
// Initialize wires every registry onto one hook.Registry and runs the
// theme lifecycle exactly once, in this order:
//
//  1. host defaults (wp_head printers, emoji, REST, oEmbed),
//  2. feature toggles (trim or short-circuit the defaults),
//  3. module setup (plugins attach to points from their init()),
//  4. theme callbacks on after_setup_theme (content width at priority 0,
//     image sizes and nav menus at 10) and widgets_init (sidebars),
//  5. cache invalidation bindings and the page region defaults,
//  6. dispatch of after_setup_theme, widgets_init, and init(site).
//
// After Initialize returns, the registry is only read: page requests
// dispatch points but nothing registers or deregisters.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package bootstrap

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/primer/internal/cache"
	"github.com/yanizio/primer/internal/content"
	"github.com/yanizio/primer/internal/hook"
	"github.com/yanizio/primer/internal/host"
	"github.com/yanizio/primer/internal/imagesize"
	"github.com/yanizio/primer/internal/metrics"
	"github.com/yanizio/primer/internal/module"
	"github.com/yanizio/primer/internal/navmenu"
	"github.com/yanizio/primer/internal/page"
	"github.com/yanizio/primer/internal/routing"
	"github.com/yanizio/primer/internal/sidebar"
	"github.com/yanizio/primer/internal/theme"
	"github.com/yanizio/primer/internal/toggle"
)

// Callback identities of the theme lifecycle.
const (
	ContentWidthID     = "primer_content_width"
	SetupID            = "primer_setup"
	RegisterSidebarsID = "primer_register_sidebars"
	contentWidthPrio   = 0
)

// Options are the inputs of Initialize.
type Options struct {
	Site            page.SiteInfo
	Version         string
	DefaultLayout   string
	Declarations    theme.Declarations
	DisabledToggles []string

	// Extra toggles applied after the built-ins.
	Toggles []toggle.Toggle

	DB  *sqlx.DB
	Log *zap.Logger
}

// Engine is the initialized theme.
type Engine struct {
	Hooks      *hook.Registry
	Site       *host.Site
	Surface    *theme.Surface
	ImageSizes *imagesize.Registry
	Sidebars   *sidebar.Registry
	Menus      *navmenu.Registry
	Toggles    *toggle.Set
	Content    *content.Store
	Composer   *page.Composer
	Classifier *routing.Classifier
	Modules    []string

	// ContentWidth is the content width of the default layout, fixed at
	// after_setup_theme.
	ContentWidth int
}

// Initialize builds the engine.  It fails only on programming errors
// (conflicting point kinds, invalid registrations); malformed
// declarations are dropped and logged.
func Initialize(opts Options) (*Engine, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	e := &Engine{
		Hooks:   hook.New(log, hook.WithObserver(metrics.HookObserver{})),
		Site:    host.NewSite(opts.Site.Home, opts.Site.Name, opts.Version),
		Surface: theme.NewSurface(),
	}
	opts.Site.Home = e.Site.Home

	if err := host.RegisterDefaults(e.Hooks, e.Site); err != nil {
		return nil, fmt.Errorf("host defaults: %w", err)
	}

	store := cache.NewStore()
	e.Content = content.NewStore(opts.DB, e.Hooks, store, log)
	e.ImageSizes = imagesize.New(e.Hooks, e.Surface, log)
	e.Sidebars = sidebar.New(e.Hooks, e.Surface, e.Content, store, log)
	e.Menus = navmenu.New(e.Hooks, e.Surface, log)

	e.Toggles = toggle.NewSet(log, toggle.Without(toggle.Defaults(e.Site.Home), opts.DisabledToggles)...)
	e.Toggles.Add(opts.Toggles...)
	e.Toggles.Apply(e.Hooks)

	e.Modules = module.SetupAll(e.Hooks, module.Env{Site: e.Site, Log: log})

	e.Composer = page.NewComposer(e.Hooks, e.Content, opts.DefaultLayout, log)
	if err := e.registerLifecycle(opts.Declarations); err != nil {
		return nil, err
	}

	if err := e.Sidebars.BindInvalidation(); err != nil {
		return nil, fmt.Errorf("sidebar invalidation: %w", err)
	}
	if err := e.Content.BindInvalidation(); err != nil {
		return nil, fmt.Errorf("content invalidation: %w", err)
	}
	if err := page.RegisterDefaults(e.Hooks, page.Deps{
		Site:       opts.Site,
		Posts:      e.Content,
		Widgets:    e.Content,
		Sidebars:   e.Sidebars,
		Menus:      e.Menus,
		Categories: e.Content,
		Log:        log,
	}); err != nil {
		return nil, fmt.Errorf("page defaults: %w", err)
	}

	e.Hooks.DispatchAction(hook.AfterSetupTheme)
	e.Hooks.DispatchAction(hook.WidgetsInit)
	e.Hooks.DispatchAction(hook.Init, e.Site)

	e.Classifier = routing.NewClassifier(e.Site, e.Site.RewriteRules(e.Hooks))

	log.Info("theme initialized",
		zap.Strings("toggles", e.Toggles.Applied()),
		zap.Strings("modules", e.Modules),
		zap.Strings("image_sizes", e.ImageSizes.Names()),
		zap.Int("sidebars", len(e.Sidebars.Areas())),
		zap.Int("content_width", e.ContentWidth),
		zap.Bool("embeds", e.Classifier.Embeds()),
	)
	return e, nil
}

// registerLifecycle hooks the theme's declarative setup onto the
// lifecycle points.
func (e *Engine) registerLifecycle(d theme.Declarations) error {
	owner := hook.WithOwner("primer")

	if _, err := e.Hooks.AddAction(hook.AfterSetupTheme, ContentWidthID, hook.ActionFunc(func() {
		e.ContentWidth = e.Composer.ContentWidth(e.Composer.DefaultLayout())
	}), hook.WithArity(0), hook.WithPriority(contentWidthPrio), owner); err != nil {
		return fmt.Errorf("register %s: %w", ContentWidthID, err)
	}

	if _, err := e.Hooks.AddAction(hook.AfterSetupTheme, SetupID, hook.ActionFunc(func() {
		e.ImageSizes.Configure(d.ImageSizes)
		e.Menus.Configure(d.NavMenus)
	}), hook.WithArity(0), owner); err != nil {
		return fmt.Errorf("register %s: %w", SetupID, err)
	}

	if _, err := e.Hooks.AddAction(hook.WidgetsInit, RegisterSidebarsID, hook.ActionFunc(func() {
		e.Sidebars.Configure(d.Sidebars)
	}), hook.WithArity(0), owner); err != nil {
		return fmt.Errorf("register %s: %w", RegisterSidebarsID, err)
	}
	return nil
}
