package hook

import "fmt"

// Adapters turn fixed-arity Go functions into ActionCallback and
// FilterCallback values.  Pair each adapter with the matching WithArity so
// the dispatcher hands over the right number of values; a value of the
// wrong type, or a missing one, is reported as a callback failure.

// ActionFunc adapts a callback that takes no dispatch values.  Register it
// with WithArity(0).
func ActionFunc(fn func()) ActionCallback {
	return func(...any) error {
		fn()
		return nil
	}
}

// Action1 adapts a single-argument action.
func Action1[A any](fn func(A) error) ActionCallback {
	return func(args ...any) error {
		a, err := arg[A](args, 0)
		if err != nil {
			return err
		}
		return fn(a)
	}
}

// Action2 adapts a two-argument action.  Register it with WithArity(2).
func Action2[A, B any](fn func(A, B) error) ActionCallback {
	return func(args ...any) error {
		a, err := arg[A](args, 0)
		if err != nil {
			return err
		}
		b, err := arg[B](args, 1)
		if err != nil {
			return err
		}
		return fn(a, b)
	}
}

// FilterFunc adapts a single-value transform.
func FilterFunc[T any](fn func(T) T) FilterCallback {
	return func(value any, _ ...any) (any, error) {
		v, ok := value.(T)
		if !ok {
			return nil, fmt.Errorf("value is %T, want %T", value, *new(T))
		}
		return fn(v), nil
	}
}

// Filter2 adapts a transform that also reads one extra dispatch value.
// Register it with WithArity(2).
func Filter2[T, A any](fn func(T, A) T) FilterCallback {
	return func(value any, args ...any) (any, error) {
		v, ok := value.(T)
		if !ok {
			return nil, fmt.Errorf("value is %T, want %T", value, *new(T))
		}
		a, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		return fn(v, a), nil
	}
}

// Return always yields v, ignoring the accumulator.  The host's
// __return_false and __return_true are Return(false) and Return(true).
func Return[T any](v T) FilterCallback {
	return func(any, ...any) (any, error) { return v, nil }
}

func arg[A any](args []any, i int) (A, error) {
	var zero A
	if i >= len(args) {
		return zero, fmt.Errorf("missing argument %d (%T)", i, zero)
	}
	a, ok := args[i].(A)
	if !ok {
		if args[i] == nil {
			return zero, nil
		}
		return zero, fmt.Errorf("argument %d is %T, want %T", i, args[i], zero)
	}
	return a, nil
}
