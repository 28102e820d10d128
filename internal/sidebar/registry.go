// internal/sidebar/registry.go
//
// Sidebar/widget-area registry.
//
// Context
// -------
// A widget area is a named container (primary sidebar, footer columns, the
// front-page hero) plus the markup that wraps each widget and its title.
// Configure runs the declared areas through the `sidebars` filter, fills
// in missing wrapper markup, and publishes each area to the rendering
// surface in declared order.
//
// Footer areas get one more service: ActiveFooterAreas reports which of
// them currently hold widgets.  The answer drives whether the footer
// widget region renders at all and with how many columns, so it is cached
// process-wide and dropped on any content or widget event (see
// BindInvalidation).
//
// Notes
// -----
//   - Wrapper-open markup uses explicit-index verbs: `%[1]s` is the widget
//     id and `%[2]s` its CSS classes.  Markup with any other verb count
//     falls back to the built-in wrapper.
//   - An id declared twice keeps its first position and its last values.
package sidebar

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/yanizio/primer/internal/cache"
	"github.com/yanizio/primer/internal/hook"
	"github.com/yanizio/primer/internal/metrics"
	"github.com/yanizio/primer/internal/naming"
)

// Built-in wrapper markup.
const (
	DefaultBeforeWidget = `<aside id="%[1]s" class="widget %[2]s">`
	DefaultAfterWidget  = `</aside>`
	DefaultBeforeTitle  = `<h4 class="widget-title">`
	DefaultAfterTitle   = `</h4>`
)

// InvalidateID is the callback identity bound to the invalidation points.
const InvalidateID = "primer_active_footer_areas_reset"

// InvalidationPoints are the events after which widget assignment, category
// existence, or publication state may have changed.
var InvalidationPoints = []string{
	hook.CreateCategory,
	hook.EditCategory,
	hook.DeleteCategory,
	hook.SavePost,
	hook.UpdateSidebarsWidgets,
}

// Input is one raw area declaration.
type Input struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	BeforeWidget string `yaml:"before_widget"`
	AfterWidget  string `yaml:"after_widget"`
	BeforeTitle  string `yaml:"before_title"`
	AfterTitle   string `yaml:"after_title"`
	Footer       bool   `yaml:"footer"`
}

// Area is a registered area.  Every field except Description is non-empty.
type Area struct {
	ID           string
	Name         string
	Description  string
	BeforeWidget string
	AfterWidget  string
	BeforeTitle  string
	AfterTitle   string
	Footer       bool
}

// Surface is the rendering side that stores areas for the widget UI.
type Surface interface {
	RegisterSidebar(Area)
}

// WidgetLookup reads the current widget assignment, area id → widget ids.
type WidgetLookup interface {
	SidebarWidgets(ctx context.Context) (map[string][]string, error)
}

// Registry owns configured areas.  Safe for concurrent reads.
type Registry struct {
	hooks   *hook.Registry
	surface Surface
	widgets WidgetLookup
	log     *zap.Logger

	mu    sync.RWMutex
	areas []Area
	index map[string]int

	active *cache.Lazy[[]string]
}

// New returns an empty registry.  store holds the active-footer cache.
func New(hooks *hook.Registry, surface Surface, widgets WidgetLookup, store *cache.Store, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Registry{
		hooks:   hooks,
		surface: surface,
		widgets: widgets,
		log:     log.Named("sidebar"),
		index:   map[string]int{},
	}
	r.active = cache.NewLazy(store, "primer_active_footer_areas", r.loadActiveFooter)
	return r
}

// Configure filters, defaults, and registers areas.  The returned slice is
// in declared order.
func (r *Registry) Configure(areas []Input) []Area {
	raw := append([]Input(nil), areas...)
	raw = hook.FilterAs(r.hooks, hook.Sidebars, raw)

	var out []Area
	index := make(map[string]int, len(raw))
	for _, in := range raw {
		if in.ID == "" {
			metrics.DeclarationsDroppedTotal.WithLabelValues("sidebar").Inc()
			r.log.Debug("sidebar dropped", zap.String("name", in.Name), zap.String("reason", "empty id"))
			continue
		}
		a := r.withDefaults(in)
		if i, dup := index[a.ID]; dup {
			out[i] = a
			continue
		}
		index[a.ID] = len(out)
		out = append(out, a)
	}

	for _, a := range out {
		if r.surface != nil {
			r.surface.RegisterSidebar(a)
		}
		r.log.Debug("sidebar registered", zap.String("id", a.ID), zap.Bool("footer", a.Footer))
	}

	r.mu.Lock()
	r.areas = out
	r.index = index
	r.mu.Unlock()

	// Declared footer set changed; any cached answer is stale.
	r.active.Invalidate()
	return append([]Area(nil), out...)
}

func (r *Registry) withDefaults(in Input) Area {
	a := Area{
		ID:           in.ID,
		Name:         in.Name,
		Description:  in.Description,
		BeforeWidget: in.BeforeWidget,
		AfterWidget:  in.AfterWidget,
		BeforeTitle:  in.BeforeTitle,
		AfterTitle:   in.AfterTitle,
		Footer:       in.Footer,
	}
	if a.Name == "" {
		a.Name = naming.Humanize(a.ID)
	}
	if a.BeforeWidget == "" || a.AfterWidget == "" || !validWidgetOpen(a.BeforeWidget) {
		if a.BeforeWidget != "" {
			r.log.Debug("sidebar widget wrapper replaced", zap.String("id", a.ID), zap.String("markup", a.BeforeWidget))
		}
		a.BeforeWidget, a.AfterWidget = DefaultBeforeWidget, DefaultAfterWidget
	}
	if a.BeforeTitle == "" || a.AfterTitle == "" {
		a.BeforeTitle, a.AfterTitle = DefaultBeforeTitle, DefaultAfterTitle
	}
	return a
}

// validWidgetOpen reports whether markup has exactly one id slot, one
// classes slot, and no other formatting verbs.
func validWidgetOpen(markup string) bool {
	if strings.Count(markup, "%[1]s") != 1 || strings.Count(markup, "%[2]s") != 1 {
		return false
	}
	rest := strings.NewReplacer("%[1]s", "", "%[2]s", "", "%%", "").Replace(markup)
	return !strings.Contains(rest, "%")
}

//
// lookups
//

// Areas returns all registered areas in declared order.
func (r *Registry) Areas() []Area {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Area(nil), r.areas...)
}

// Area returns the area registered under id.
func (r *Registry) Area(id string) (Area, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return Area{}, false
	}
	return r.areas[i], true
}

// FooterAreas returns the footer-designated areas in declared order.
func (r *Registry) FooterAreas() []Area {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Area
	for _, a := range r.areas {
		if a.Footer {
			out = append(out, a)
		}
	}
	return out
}

// ActiveFooterAreas returns the ids of footer areas that hold at least one
// widget, in declared order.  Lookup failures yield an empty, uncached
// result.
func (r *Registry) ActiveFooterAreas(ctx context.Context) []string {
	ids, err := r.active.Get(ctx)
	if err != nil {
		r.log.Warn("active footer areas unavailable", zap.Error(err))
		return []string{}
	}
	return append([]string{}, ids...)
}

func (r *Registry) loadActiveFooter(ctx context.Context) ([]string, error) {
	footers := r.FooterAreas()
	if len(footers) == 0 || r.widgets == nil {
		return []string{}, nil
	}
	assigned, err := r.widgets.SidebarWidgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("sidebar widgets: %w", err)
	}
	out := make([]string, 0, len(footers))
	for _, a := range footers {
		if len(assigned[a.ID]) > 0 {
			out = append(out, a.ID)
		}
	}
	return out, nil
}

// Invalidate drops the cached active-footer answer.
func (r *Registry) Invalidate() { r.active.Invalidate() }

// BindInvalidation attaches Invalidate to every InvalidationPoints event.
// Event payloads are ignored.
func (r *Registry) BindInvalidation() error {
	for _, p := range InvalidationPoints {
		_, err := r.hooks.AddAction(p, InvalidateID, hook.ActionFunc(r.Invalidate), hook.WithArity(0))
		if err != nil {
			return fmt.Errorf("bind %s: %w", p, err)
		}
	}
	return nil
}

// WrapWidget renders one widget inside the area's wrapper markup.  title
// and body are expected to be escaped already.
func WrapWidget(a Area, widgetID, classes, title, body string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf(a.BeforeWidget, widgetID, classes))
	if title != "" {
		b.WriteString(a.BeforeTitle)
		b.WriteString(title)
		b.WriteString(a.AfterTitle)
	}
	b.WriteString(body)
	b.WriteString(a.AfterWidget)
	return b.String()
}
