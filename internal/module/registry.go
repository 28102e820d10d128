// internal/module/registry.go
//
// Plugin registry (cycle-free).
//
// Each plugin lives under modules/<name> and calls module.Register() in an
// init() function.  Bootstrap calls Setup on every registered module, in
// name order, after the host defaults and toggles are in place and before
// the theme's setup points fire.  Setup attaches the module's callbacks to
// extension points.  A module that also implements Router gets its routes
// mounted at "/<name>".
//
// The registry is process-wide: cmd/web blank-imports the modules it
// wants, exactly like database drivers.

package module

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/primer/internal/hook"
	"github.com/yanizio/primer/internal/host"
)

// Env is what a module receives at setup.
type Env struct {
	Site *host.Site
	Log  *zap.Logger
}

// Module contract.  Setup may run more than once in tests; each call
// receives a fresh registry and must register against that one.
type Module interface {
	Name() string
	Setup(r *hook.Registry, env Env) error
}

// Router is optional.  Routes should mount both page and API endpoints
// relative to the module prefix, e.g:
//
//	r := chi.NewRouter()
//	r.Get("/hooks", listHooks)
//	return r
type Router interface {
	Routes() chi.Router
}

var (
	mu       sync.RWMutex
	registry = map[string]Module{}
)

// Register is invoked from module init() functions.  A duplicate name
// overwrites the earlier module.
func Register(m Module) {
	mu.Lock()
	registry[m.Name()] = m
	mu.Unlock()
}

// All returns every registered module sorted by name.
func All() []Module {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Module, 0, len(registry))
	for _, m := range registry {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// SetupAll runs Setup on every module.  Callbacks a module registers carry
// its name as owner, so a failing module can be detached as a unit.  A
// failing module is logged and skipped; the rest still load.
func SetupAll(r *hook.Registry, env Env) []string {
	if env.Log == nil {
		env.Log = zap.NewNop()
	}
	var loaded []string
	for _, m := range All() {
		if err := m.Setup(r, env); err != nil {
			removed := r.DeregisterOwner(m.Name())
			env.Log.Warn("module setup failed",
				zap.String("module", m.Name()),
				zap.Int("detached", removed),
				zap.Error(err))
			continue
		}
		loaded = append(loaded, m.Name())
	}
	return loaded
}

// Mount attaches every Router module to mux under "/<name>".
func Mount(mux chi.Router) error {
	for _, m := range All() {
		rt, ok := m.(Router)
		if !ok {
			continue
		}
		sub := rt.Routes()
		if sub == nil {
			return fmt.Errorf("module %s: nil router", m.Name())
		}
		mux.Mount("/"+m.Name(), sub)
	}
	return nil
}
