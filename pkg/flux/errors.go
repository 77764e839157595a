package flux

import (
	"errors"
	"fmt"
)

// ErrStoreClosed is returned by operations on a store after Close.
var ErrStoreClosed = errors.New("store closed")

// ReducerError reports a reducer failure during dispatch. The dispatch that
// produced it was rejected and the prior state retained.
type ReducerError struct {
	Feature string
	Kind    string
	Err     error
}

func (e ReducerError) Error() string {
	return fmt.Sprintf("reducer for feature %q failed on action %q: %v", e.Feature, e.Kind, e.Err)
}

func (e ReducerError) Unwrap() error { return e.Err }

// PanicError wraps a value recovered from a panicking reducer or guard.
type PanicError struct {
	Value any
}

func (e PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// GuardViolationError reports a guard rejecting a state transition. The
// dispatch was rejected and the prior state retained.
type GuardViolationError struct {
	Guard string
	Kind  string
	Err   error
}

func (e GuardViolationError) Error() string {
	return fmt.Sprintf("guard %q rejected action %q: %v", e.Guard, e.Kind, e.Err)
}

func (e GuardViolationError) Unwrap() error { return e.Err }
