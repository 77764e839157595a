// Package flux implements a unidirectional state container: a store that owns
// an immutable feature-state tree, pure reducers that compute the next tree
// from dispatched actions, guards that validate the transition before commit,
// and an observational journal of every committed dispatch.
//
// Dispatch is serialized. Reducers, guards, and subscribers run on the
// dispatching goroutine and must not call back into the store; asynchronous
// work belongs in effect handlers (see package effect), which re-enter the
// store by dispatching follow-up actions.
package flux
