// internal/widget/registry.go
//
// Widget type registry and lookup helpers.
//
// A **Widget** type renders one stored widget instance ("text", "hero-text")
// inside a widget area.  Each type registers itself by calling
// `widget.Register(MyWidget{})` in an init() func.  The key is the value
// returned by Type and matches the `widget_type` column of stored widget
// instances.
//
// The page flow looks the type up, renders the instance settings, and
// wraps the result in the area's before/after markup (see
// internal/sidebar.WrapWidget).
package widget

import (
	"context"
	"html/template"
	"sort"
	"sync"
)

// Widget renders instances of one widget type.  Settings come straight from
// storage and may miss keys; implementations treat a nil map as empty.
//
// Render MUST be concurrency-safe; multiple requests may call it.  Errors
// are returned, not written, so the caller decides how to degrade.
type Widget interface {
	Type() string
	Render(ctx context.Context, settings map[string]string) (template.HTML, error)
}

var (
	mu       sync.RWMutex
	registry = map[string]Widget{}
)

// Register a widget type during init().  A duplicate type overwrites the
// earlier entry.
func Register(w Widget) {
	mu.Lock()
	registry[w.Type()] = w
	mu.Unlock()
}

// Lookup returns the widget type or nil.
func Lookup(typ string) Widget {
	mu.RLock()
	defer mu.RUnlock()
	return registry[typ]
}

// Types lists registered widget types in lexical order.
func Types() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
