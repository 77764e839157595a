// Package selector provides memoized projections over state values. A
// selector caches its most recent inputs and output; when invoked again with
// identity-equal inputs it returns the cached output without re-running the
// projection. Cache depth is one: only the last call is remembered.
//
// Identity comparison relies on the structural sharing discipline of package
// flux: a slice value that was not replaced by a dispatch keeps its identity,
// so identity equality is a sound "unchanged" signal.
package selector
