package flux

import "fmt"

// Reducer computes the next value of a feature slice from the current value
// and a dispatched action. Reducers must be pure: no I/O, no mutation of the
// input, no dependence on external mutable state. A reducer that does not
// recognize an action must return the identical input reference so that
// unchanged slices keep their identity across dispatches.
type Reducer func(slice any, action Action) (any, error)

// Typed adapts a strongly typed reducer to the Reducer contract, rejecting
// dispatches whose slice value is not of type S.
func Typed[S any](fn func(S, Action) (S, error)) Reducer {
	return func(slice any, action Action) (any, error) {
		current, ok := slice.(S)
		if !ok {
			var zero S
			return nil, fmt.Errorf("slice is %T, not %T", slice, zero)
		}
		return fn(current, action)
	}
}
