// internal/toggle/toggle.go
//
// Feature toggles.
//
// Context
// -------
// A toggle is a fixed, named change to the hook registry applied once at
// startup: it removes a host default (by point, callback id, and priority)
// or adds a callback that short-circuits default behaviour, such as
// forcing archive pages to not-found or redirecting feed requests home.
//
// Rules
// -----
//   - Toggles are independent.  None reads state another one wrote, so a
//     Set applies them in any order with the same result.
//   - Removing something that is not registered is a silent no-op.  Host
//     versions drift; a toggle must not break because a default is gone.
//   - Apply runs once per Set.  Re-applying a single toggle is harmless
//     too, because registering the same (id, priority) replaces in place.
package toggle

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/yanizio/primer/internal/hook"
)

// Owner is the bound identity of every registration a toggle adds.
const Owner = "toggle"

// Toggle is one named registry transformation.
type Toggle struct {
	Name  string
	Apply func(r *hook.Registry) error
}

// Target names one registration a toggle removes.
type Target struct {
	Point    string
	ID       string
	Priority int
}

// Remove builds a toggle that deregisters every target.  Missing targets
// are skipped.
func Remove(name string, targets ...Target) Toggle {
	return Toggle{Name: name, Apply: func(r *hook.Registry) error {
		removeAll(r, targets)
		return nil
	}}
}

func removeAll(r *hook.Registry, targets []Target) {
	for _, t := range targets {
		r.Deregister(t.Point, t.ID, t.Priority)
	}
}

// Set applies a group of toggles exactly once.
type Set struct {
	log *zap.Logger

	mu      sync.Mutex
	toggles []Toggle
	applied []string
	once    sync.Once
}

// NewSet returns a Set holding toggles.
func NewSet(log *zap.Logger, toggles ...Toggle) *Set {
	if log == nil {
		log = zap.NewNop()
	}
	return &Set{log: log.Named("toggle"), toggles: toggles}
}

// Add appends toggles.  Toggles added after Apply are ignored.
func (s *Set) Add(t ...Toggle) {
	s.mu.Lock()
	s.toggles = append(s.toggles, t...)
	s.mu.Unlock()
}

// Apply runs every toggle against r.  Later calls do nothing.  A toggle
// that fails is logged and skipped; the others still apply.
func (s *Set) Apply(r *hook.Registry) {
	s.once.Do(func() {
		s.mu.Lock()
		toggles := append([]Toggle(nil), s.toggles...)
		s.mu.Unlock()

		var applied []string
		for _, t := range toggles {
			if t.Apply == nil {
				continue
			}
			if err := t.Apply(r); err != nil {
				s.log.Warn("toggle failed", zap.String("toggle", t.Name), zap.Error(err))
				continue
			}
			applied = append(applied, t.Name)
			s.log.Debug("toggle applied", zap.String("toggle", t.Name))
		}

		s.mu.Lock()
		s.applied = applied
		s.mu.Unlock()
		s.log.Info("toggles applied", zap.Strings("toggles", applied))
	})
}

// Applied lists the toggles that applied successfully, sorted by name.
func (s *Set) Applied() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]string(nil), s.applied...)
	sort.Strings(out)
	return out
}

// Without drops toggles whose name is in disabled.
func Without(toggles []Toggle, disabled []string) []Toggle {
	skip := make(map[string]bool, len(disabled))
	for _, d := range disabled {
		skip[d] = true
	}
	out := make([]Toggle, 0, len(toggles))
	for _, t := range toggles {
		if !skip[t.Name] {
			out = append(out, t)
		}
	}
	return out
}
