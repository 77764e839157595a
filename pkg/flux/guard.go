package flux

import "context"

// Guard validates a state transition after reducers have run and before the
// next tree is committed. Returning a non-nil error rejects the dispatch; the
// prior state is retained and the caller receives a GuardViolationError.
type Guard interface {
	Name() string
	Check(ctx context.Context, prev, next State, action Action) error
}

type funcGuard struct {
	name string
	fn   func(ctx context.Context, prev, next State, action Action) error
}

// GuardFunc wraps a function as a named Guard.
func GuardFunc(name string, fn func(ctx context.Context, prev, next State, action Action) error) Guard {
	return funcGuard{name: name, fn: fn}
}

func (g funcGuard) Name() string { return g.name }

func (g funcGuard) Check(ctx context.Context, prev, next State, action Action) error {
	return g.fn(ctx, prev, next, action)
}
