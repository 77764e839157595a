// Package effect bridges side-effecting work into the pure dispatch cycle. A
// Coordinator observes committed actions, launches asynchronous handlers for
// the ones an effect matches, and dispatches the follow-up action each
// handler produces. Handler failures are converted into failure actions and
// re-enter the store as data; they are never propagated as errors.
//
// Each effect selects a concurrency policy governing overlapping triggers:
// Merge runs them all in parallel, Switch cancels the in-flight run and
// discards its result, Concat queues triggers and runs them one at a time in
// order, and Exhaust ignores triggers while a run is in flight. The policy
// choice decides which races are possible; Switch is the usual answer when a
// stale response must never overwrite a fresher one.
package effect
