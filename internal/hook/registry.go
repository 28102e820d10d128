// internal/hook/registry.go
//
// Extension-point registry.
//
// Context
// -------
// Every piece of the theme, and every plugin module, talks to the others
// through named extension points.  An *action* point broadcasts to all of
// its callbacks and ignores their results.  A *filter* point threads one
// value through its callbacks, each one receiving the previous result.
//
// One Registry is created at boot (see internal/bootstrap) and passed by
// pointer to every component that registers or dispatches.  There is no
// package-level instance.
//
// Ordering
// --------
// Callbacks run by priority ascending, ties broken by insertion sequence.
// The per-point slice is kept sorted and is replaced, never edited, on each
// mutation.  A dispatch grabs the current slice once and iterates it, so
// callbacks that register or deregister while running (including re-entrant
// dispatch of the same point) only change what later dispatches see.
//
// Notes
// -----
//   - Registrations are process-wide and read-mostly.  Steady-state requests
//     only read, so the RWMutex is uncontended.
//   - Dispatch state (snapshot, accumulator) lives on the caller's stack.
package hook

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// DefaultPriority is used when Register is called without WithPriority.
const DefaultPriority = 10

// DefaultArity is the number of dispatch values handed to a callback when
// WithArity is not given.
const DefaultArity = 1

var (
	// ErrInvalidPointKind is returned when a point name is reused with the
	// other kind.
	ErrInvalidPointKind = errors.New("hook: point already declared with a different kind")

	// ErrInvalidRegistration is returned for an empty point, empty id, nil
	// callback, or negative arity.
	ErrInvalidRegistration = errors.New("hook: invalid registration")
)

// Kind distinguishes broadcast points from transform points.
type Kind int

const (
	Action Kind = iota + 1
	Filter
)

func (k Kind) String() string {
	switch k {
	case Action:
		return "action"
	case Filter:
		return "filter"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Registration is one callback attached to one point.  Values returned by
// Registrations are copies; mutating them has no effect on the registry.
type Registration struct {
	Point    string
	Kind     Kind
	ID       string // callback identity, e.g. "wp_generator"
	Priority int
	Arity    int
	Owner    string // optional bound identity for DeregisterOwner

	seq    uint64
	action ActionCallback
	filter FilterCallback
}

// Seq reports the insertion sequence used to break priority ties.
func (r Registration) Seq() uint64 { return r.seq }

type point struct {
	kind Kind
	regs []*Registration // sorted; replaced wholesale on mutation
}

// Registry stores every registration for every point.  The zero value is
// not usable; construct with New.
type Registry struct {
	mu     sync.RWMutex
	points map[string]*point
	seq    uint64

	countsMu sync.Mutex
	counts   map[string]int

	log      *zap.Logger
	observer Observer
}

// Observer receives dispatch and failure events.  internal/metrics
// supplies the Prometheus implementation.
type Observer interface {
	Dispatched(kind Kind, point string)
	Failed(point, id string)
}

type nopObserver struct{}

func (nopObserver) Dispatched(Kind, string) {}
func (nopObserver) Failed(string, string)   {}

// Option configures a Registry.
type Option func(*Registry)

// WithObserver installs a dispatch observer.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		if o != nil {
			r.observer = o
		}
	}
}

// New returns an empty registry.  A nil logger is replaced by a no-op one.
func New(log *zap.Logger, opts ...Option) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Registry{
		points:   make(map[string]*point),
		counts:   make(map[string]int),
		log:      log.Named("hook"),
		observer: nopObserver{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

//
// registration options
//

// RegisterOption tunes a single registration.
type RegisterOption func(*Registration)

// WithPriority sets the priority.  Lower runs first.
func WithPriority(p int) RegisterOption { return func(r *Registration) { r.Priority = p } }

// WithArity sets how many dispatch values the callback receives.  For a
// filter the accumulator counts as the first value.
func WithArity(n int) RegisterOption { return func(r *Registration) { r.Arity = n } }

// WithOwner binds the registration to a source, e.g. a module name.
func WithOwner(owner string) RegisterOption { return func(r *Registration) { r.Owner = owner } }

//
// mutation
//

// Register attaches cb to the named point.  cb must be an ActionCallback for
// Action points and a FilterCallback for Filter points.
//
// Registering the same id twice at the same priority replaces the earlier
// callback in place, keeping its position in the order.
func (r *Registry) Register(name string, kind Kind, id string, cb any, opts ...RegisterOption) (Handle, error) {
	reg := &Registration{
		Point:    name,
		Kind:     kind,
		ID:       id,
		Priority: DefaultPriority,
		Arity:    DefaultArity,
	}
	for _, o := range opts {
		o(reg)
	}

	if name == "" || id == "" || reg.Arity < 0 {
		return Handle{}, fmt.Errorf("%w: point=%q id=%q arity=%d", ErrInvalidRegistration, name, id, reg.Arity)
	}
	switch kind {
	case Action:
		fn, ok := cb.(ActionCallback)
		if !ok || fn == nil {
			return Handle{}, fmt.Errorf("%w: %s %q needs an ActionCallback", ErrInvalidRegistration, name, id)
		}
		reg.action = fn
	case Filter:
		fn, ok := cb.(FilterCallback)
		if !ok || fn == nil {
			return Handle{}, fmt.Errorf("%w: %s %q needs a FilterCallback", ErrInvalidRegistration, name, id)
		}
		reg.filter = fn
	default:
		return Handle{}, fmt.Errorf("%w: unknown kind %v", ErrInvalidRegistration, kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.points[name]
	if !ok {
		p = &point{kind: kind}
		r.points[name] = p
	} else if p.kind != kind {
		return Handle{}, fmt.Errorf("%w: %q is %s, got %s", ErrInvalidPointKind, name, p.kind, kind)
	}

	next := make([]*Registration, 0, len(p.regs)+1)
	replaced := false
	for _, old := range p.regs {
		if old.ID == id && old.Priority == reg.Priority {
			reg.seq = old.seq
			next = append(next, reg)
			replaced = true
			continue
		}
		next = append(next, old)
	}
	if !replaced {
		r.seq++
		reg.seq = r.seq
		next = append(next, reg)
		sortRegistrations(next)
	}
	p.regs = next

	return Handle{r: r, point: name, id: id, priority: reg.Priority}, nil
}

// AddAction registers an action callback.
func (r *Registry) AddAction(name, id string, cb ActionCallback, opts ...RegisterOption) (Handle, error) {
	return r.Register(name, Action, id, cb, opts...)
}

// AddFilter registers a filter callback.
func (r *Registry) AddFilter(name, id string, cb FilterCallback, opts ...RegisterOption) (Handle, error) {
	return r.Register(name, Filter, id, cb, opts...)
}

// Deregister removes the registration matching (id, priority) from point.
// It reports whether anything was removed.  A missing point or callback is
// not an error.
func (r *Registry) Deregister(name, id string, priority int) bool {
	removed := r.remove(name, func(reg *Registration) bool {
		return reg.ID == id && reg.Priority == priority
	}) > 0
	if !removed {
		r.log.Debug("deregister target not found",
			zap.String("point", name),
			zap.String("id", id),
			zap.Int("priority", priority))
	}
	return removed
}

// DeregisterAll drops every registration on point and returns how many
// were removed.  The point keeps its declared kind.
func (r *Registry) DeregisterAll(name string) int {
	return r.remove(name, func(*Registration) bool { return true })
}

// DeregisterOwner drops every registration bound to owner on every point.
func (r *Registry) DeregisterOwner(owner string) int {
	if owner == "" {
		return 0
	}
	r.mu.RLock()
	names := make([]string, 0, len(r.points))
	for n := range r.points {
		names = append(names, n)
	}
	r.mu.RUnlock()

	total := 0
	for _, n := range names {
		total += r.remove(n, func(reg *Registration) bool { return reg.Owner == owner })
	}
	return total
}

func (r *Registry) remove(name string, match func(*Registration) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.points[name]
	if !ok {
		return 0
	}
	next := make([]*Registration, 0, len(p.regs))
	for _, reg := range p.regs {
		if !match(reg) {
			next = append(next, reg)
		}
	}
	n := len(p.regs) - len(next)
	if n > 0 {
		p.regs = next
	}
	return n
}

//
// inspection
//

// Has reports whether id is registered on point at any priority.
func (r *Registry) Has(name, id string) bool {
	for _, reg := range r.snapshot(name) {
		if reg.ID == id {
			return true
		}
	}
	return false
}

// HasPoint reports whether point has at least one registration.
func (r *Registry) HasPoint(name string) bool { return len(r.snapshot(name)) > 0 }

// KindOf returns the declared kind of point, or 0 if it was never declared.
func (r *Registry) KindOf(name string) Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.points[name]; ok {
		return p.kind
	}
	return 0
}

// Registrations returns a copy of point's registrations in dispatch order.
func (r *Registry) Registrations(name string) []Registration {
	snap := r.snapshot(name)
	out := make([]Registration, len(snap))
	for i, reg := range snap {
		out[i] = *reg
	}
	return out
}

// Points lists every declared point name in lexical order.
func (r *Registry) Points() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.points))
	for n := range r.points {
		out = append(out, n)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Dispatched reports how many dispatches of point have completed.
func (r *Registry) Dispatched(name string) int {
	r.countsMu.Lock()
	defer r.countsMu.Unlock()
	return r.counts[name]
}

func (r *Registry) snapshot(name string) []*Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.points[name]; ok {
		return p.regs
	}
	return nil
}

func (r *Registry) declared(name string) (Kind, []*Registration) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.points[name]; ok {
		return p.kind, p.regs
	}
	return 0, nil
}

func (r *Registry) countDispatch(name string) {
	r.countsMu.Lock()
	r.counts[name]++
	r.countsMu.Unlock()
}

func sortRegistrations(regs []*Registration) {
	sort.SliceStable(regs, func(i, j int) bool {
		if regs[i].Priority != regs[j].Priority {
			return regs[i].Priority < regs[j].Priority
		}
		return regs[i].seq < regs[j].seq
	})
}

//
// handle
//

// Handle identifies one registration so its owner can remove it later.
type Handle struct {
	r        *Registry
	point    string
	id       string
	priority int
}

// Point returns the point the handle was registered on.
func (h Handle) Point() string { return h.point }

// ID returns the callback identity.
func (h Handle) ID() string { return h.id }

// Priority returns the registration priority.
func (h Handle) Priority() int { return h.priority }

// Deregister removes the registration.  Calling it twice is harmless.
func (h Handle) Deregister() bool {
	if h.r == nil {
		return false
	}
	return h.r.Deregister(h.point, h.id, h.priority)
}
