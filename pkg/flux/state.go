package flux

import (
	"fmt"
	"sort"
)

// State is a snapshot of the feature-state tree. Snapshots share unchanged
// slice values with their predecessors; a slice value must therefore never be
// mutated after it has been returned from a reducer.
type State struct {
	slices map[string]any
}

// Slice returns the state slice registered under feature.
func (s State) Slice(feature string) (any, bool) {
	v, ok := s.slices[feature]
	return v, ok
}

// Features returns the registered feature names in lexical order.
func (s State) Features() []string {
	out := make([]string, 0, len(s.slices))
	for name := range s.slices {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len reports the number of registered feature slices.
func (s State) Len() int {
	return len(s.slices)
}

// Export returns a plain map copy of the tree for serialization. Slice
// values are shared, not deep-copied; treat the result as read-only.
func (s State) Export() map[string]any {
	out := make(map[string]any, len(s.slices))
	for name, slice := range s.slices {
		out[name] = slice
	}
	return out
}

// SliceOf returns the feature slice asserted to type T.
func SliceOf[T any](s State, feature string) (T, error) {
	var zero T
	v, ok := s.slices[feature]
	if !ok {
		return zero, fmt.Errorf("feature %q not registered", feature)
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("feature %q slice is %T, not %T", feature, v, zero)
	}
	return typed, nil
}

// cloneSlices shallow-copies the tree map. Slice values are shared; structural
// sharing is what keeps identity comparison a valid change signal upstream.
func cloneSlices(slices map[string]any) map[string]any {
	cloned := make(map[string]any, len(slices))
	for name, slice := range slices {
		cloned[name] = slice
	}
	return cloned
}
