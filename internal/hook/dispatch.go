package hook

import (
	"fmt"

	"go.uber.org/zap"
)

// ActionCallback receives at most Arity dispatch values.
type ActionCallback func(args ...any) error

// FilterCallback receives the accumulator plus at most Arity-1 extra values
// and returns the replacement accumulator.
type FilterCallback func(value any, args ...any) (any, error)

// CallbackError describes one callback that failed during dispatch.  It is
// logged and counted; dispatch never returns it to the caller.
type CallbackError struct {
	Point string
	ID    string
	Err   error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("hook %s: callback %s: %v", e.Point, e.ID, e.Err)
}

func (e *CallbackError) Unwrap() error { return e.Err }

// Halter is implemented by dispatch values that a callback can end early,
// such as a request that has been redirected.
type Halter interface {
	Halted() bool
}

// DispatchAction runs every callback registered on point in order.  Failing
// callbacks are logged and skipped.  When the first argument is a Halter
// that becomes halted during this dispatch, the remaining callbacks are
// skipped.
func (r *Registry) DispatchAction(name string, args ...any) {
	kind, regs := r.declared(name)
	if kind == Filter {
		r.log.Warn("action dispatch on filter point", zap.String("point", name))
		return
	}
	r.observer.Dispatched(Action, name)

	h := halter(args)
	wasHalted := h != nil && h.Halted()
	for i, reg := range regs {
		r.invokeAction(reg, args)
		if h != nil && !wasHalted && h.Halted() {
			if rest := len(regs) - i - 1; rest > 0 {
				r.log.Debug("dispatch halted",
					zap.String("point", name),
					zap.String("by", reg.ID),
					zap.Int("skipped", rest))
			}
			break
		}
	}
	r.countDispatch(name)
}

func halter(args []any) Halter {
	if len(args) == 0 {
		return nil
	}
	h, _ := args[0].(Halter)
	return h
}

// DispatchFilter threads value through every callback registered on point
// and returns the final accumulator.  With no callbacks it returns value.
func (r *Registry) DispatchFilter(name string, value any, args ...any) any {
	kind, regs := r.declared(name)
	if kind == Action {
		r.log.Warn("filter dispatch on action point", zap.String("point", name))
		return value
	}
	r.observer.Dispatched(Filter, name)

	acc := value
	for _, reg := range regs {
		if next, ok := r.invokeFilter(reg, acc, args); ok {
			acc = next
		}
	}
	r.countDispatch(name)
	return acc
}

// FilterAs is DispatchFilter for a statically typed value.  A callback that
// returns a value of another type is treated as a failed step.
func FilterAs[T any](r *Registry, name string, value T, args ...any) T {
	kind, regs := r.declared(name)
	if kind == Action {
		r.log.Warn("filter dispatch on action point", zap.String("point", name))
		return value
	}
	r.observer.Dispatched(Filter, name)

	acc := value
	for _, reg := range regs {
		next, ok := r.invokeFilter(reg, acc, args)
		if !ok {
			continue
		}
		typed, ok := next.(T)
		if !ok {
			r.fail(reg, fmt.Errorf("returned %T, want %T", next, value))
			continue
		}
		acc = typed
	}
	r.countDispatch(name)
	return acc
}

func (r *Registry) invokeAction(reg *Registration, args []any) {
	defer func() {
		if p := recover(); p != nil {
			r.fail(reg, fmt.Errorf("panic: %v", p))
		}
	}()
	if err := reg.action(clip(args, reg.Arity)...); err != nil {
		r.fail(reg, err)
	}
}

func (r *Registry) invokeFilter(reg *Registration, acc any, args []any) (out any, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			r.fail(reg, fmt.Errorf("panic: %v", p))
			out, ok = nil, false
		}
	}()
	extra := reg.Arity - 1
	if extra < 0 {
		extra = 0
	}
	next, err := reg.filter(acc, clip(args, extra)...)
	if err != nil {
		r.fail(reg, err)
		return nil, false
	}
	return next, true
}

func (r *Registry) fail(reg *Registration, err error) {
	cerr := &CallbackError{Point: reg.Point, ID: reg.ID, Err: err}
	r.log.Warn("callback failed",
		zap.String("point", reg.Point),
		zap.String("id", reg.ID),
		zap.Int("priority", reg.Priority),
		zap.String("owner", reg.Owner),
		zap.Error(cerr))
	r.observer.Failed(reg.Point, reg.ID)
}

// clip returns a copy of at most n leading args.  Each callback gets its
// own slice, so writing to one cannot change what a later callback sees.
func clip(args []any, n int) []any {
	if n > len(args) {
		n = len(args)
	}
	if n <= 0 {
		return nil
	}
	return append([]any(nil), args[:n]...)
}
