// Package navmenu registers the theme's navigation menu locations.
//
// A location is a slot ("primary", "social", "footer") that site owners
// assign a menu to.  Declarations pass through the primer_nav_menus filter
// before they reach the surface.  Walking a menu tree into markup is the
// surface's job and is not modelled here.
package navmenu

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/yanizio/primer/internal/hook"
	"github.com/yanizio/primer/internal/naming"
)

// Location is one registered menu slot.
type Location struct {
	Key         string
	Description string
}

// Surface stores menu locations for the menu editor.
type Surface interface {
	RegisterNavMenu(location, description string)
}

// Registry owns the configured locations.
type Registry struct {
	hooks   *hook.Registry
	surface Surface
	log     *zap.Logger

	mu   sync.RWMutex
	locs []Location
}

func New(hooks *hook.Registry, surface Surface, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{hooks: hooks, surface: surface, log: log.Named("navmenu")}
}

// Configure filters and registers menus (location → description).  Empty
// keys are dropped; empty descriptions default to the humanized key.
func (r *Registry) Configure(menus map[string]string) []Location {
	raw := make(map[string]string, len(menus))
	for k, v := range menus {
		raw[k] = v
	}
	raw = hook.FilterAs(r.hooks, hook.NavMenus, raw)

	keys := make([]string, 0, len(raw))
	for k := range raw {
		key := naming.SanitizeKey(k)
		if key == "" {
			r.log.Debug("nav menu dropped", zap.String("location", k))
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	locs := make([]Location, 0, len(keys))
	for _, k := range keys {
		desc := raw[k]
		if desc == "" {
			desc = naming.Humanize(k)
		}
		loc := Location{Key: naming.SanitizeKey(k), Description: desc}
		if r.surface != nil {
			r.surface.RegisterNavMenu(loc.Key, loc.Description)
		}
		locs = append(locs, loc)
	}

	r.mu.Lock()
	r.locs = locs
	r.mu.Unlock()
	return append([]Location(nil), locs...)
}

// Locations returns the registered locations sorted by key.
func (r *Registry) Locations() []Location {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Location(nil), r.locs...)
}

// Has reports whether key is a registered location.
func (r *Registry) Has(key string) bool {
	for _, l := range r.Locations() {
		if l.Key == key {
			return true
		}
	}
	return false
}
