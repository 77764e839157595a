package flux

import "fmt"

// Action is an immutable tagged message describing something that happened.
// The Kind uniquely identifies the variant; Payload carries optional data.
type Action struct {
	Kind    string
	Payload any
}

// NewAction builds an action with the supplied kind and payload.
func NewAction(kind string, payload any) Action {
	return Action{Kind: kind, Payload: payload}
}

// Creator returns a factory producing actions of a fixed kind with a typed
// payload. It keeps dispatch sites free of repeated kind strings.
func Creator[P any](kind string) func(P) Action {
	return func(payload P) Action {
		return Action{Kind: kind, Payload: payload}
	}
}

// PayloadAs extracts the action payload as T.
func PayloadAs[T any](action Action) (T, error) {
	value, ok := action.Payload.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("action %q payload is %T, not %T", action.Kind, action.Payload, zero)
	}
	return value, nil
}
