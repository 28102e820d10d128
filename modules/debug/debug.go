// modules/debug/debug.go
//
// Diagnostics module mounted at /debug.
//
//	GET /debug/hooks    every extension point with its callbacks, in
//	                    dispatch order
//	GET /debug/request  the requestinfo record for the caller (UA, IP,
//	                    and geo)
//
// Both endpoints are read-only JSON.  The module registers no callbacks;
// Setup only remembers which registry to report on.
package debug

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/primer/internal/hook"
	"github.com/yanizio/primer/internal/module"
	"github.com/yanizio/primer/internal/requestinfo"
)

func init() { module.Register(&Module{}) }

// compile-time assertions
var (
	_ module.Module = (*Module)(nil)
	_ module.Router = (*Module)(nil)
)

// Module reports on the registry it was set up against.
type Module struct {
	hooks atomic.Pointer[hook.Registry]
}

func (m *Module) Name() string { return "debug" }

func (m *Module) Setup(r *hook.Registry, _ module.Env) error {
	m.hooks.Store(r)
	return nil
}

func (m *Module) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/hooks", m.listHooks)
	r.Get("/request", requestInfo)
	return r
}

type callback struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Priority int    `json:"priority"`
	Arity    int    `json:"arity"`
	Owner    string `json:"owner,omitempty"`
}

type point struct {
	Name       string     `json:"name"`
	Dispatched int        `json:"dispatched"`
	Callbacks  []callback `json:"callbacks"`
}

func (m *Module) listHooks(w http.ResponseWriter, _ *http.Request) {
	reg := m.hooks.Load()
	if reg == nil {
		http.Error(w, "registry not ready", http.StatusServiceUnavailable)
		return
	}
	out := make([]point, 0, 64)
	for _, name := range reg.Points() {
		p := point{Name: name, Dispatched: reg.Dispatched(name), Callbacks: []callback{}}
		for _, x := range reg.Registrations(name) {
			p.Callbacks = append(p.Callbacks, callback{
				ID:       x.ID,
				Kind:     x.Kind.String(),
				Priority: x.Priority,
				Arity:    x.Arity,
				Owner:    x.Owner,
			})
		}
		out = append(out, p)
	}
	writeJSON(w, out)
}

func requestInfo(w http.ResponseWriter, r *http.Request) {
	ri := requestinfo.FromContext(r.Context())
	if ri == nil {
		http.Error(w, "request info not available", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"ip":      ri.Geo.IP,
		"country": ri.Geo.CountryISO,
		"city":    ri.Geo.City,
		"browser": ri.UA.Browser,
		"device":  ri.UA.Device,
		"os":      ri.UA.OS,
		"os_ver":  ri.UA.OSVersion,
		"bot":     ri.UA.IsBot,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
