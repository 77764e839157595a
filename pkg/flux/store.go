package flux

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

const opDispatch = "dispatch"

// Store owns the feature-state tree. All mutation flows through Dispatch,
// which is serialized; every other component only ever holds snapshots.
type Store struct {
	mu         sync.RWMutex
	slices     map[string]any
	reducers   map[string]Reducer
	order      []string
	guards     []Guard
	subs       []*stateSubscription
	actionSubs []*actionSubscription
	nextSubID  uint64
	seq        uint64
	dispatched bool
	closed     bool

	journal JournalSink
	metrics MetricsRecorder
	tracer  Tracer
	logger  Logger
	nowFn   func() time.Time
}

type stateSubscription struct {
	id uint64
	fn func(State)
}

type actionSubscription struct {
	id uint64
	fn func(Action, State)
}

// Option configures a store at construction time.
type Option func(*Store)

// WithLogger wires a structured logger into the store.
func WithLogger(logger Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics wires a metrics recorder observing every dispatch outcome.
func WithMetrics(recorder MetricsRecorder) Option {
	return func(s *Store) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// WithTracer wires a tracer opening one span per dispatch.
func WithTracer(tracer Tracer) Option {
	return func(s *Store) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithJournal wires an append-only journal sink recording committed
// dispatches.
func WithJournal(sink JournalSink) Option {
	return func(s *Store) {
		s.journal = sink
	}
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// New constructs an empty store. Features are added via Register before the
// first dispatch.
func New(opts ...Option) *Store {
	s := &Store{
		slices:   make(map[string]any),
		reducers: make(map[string]Reducer),
		metrics:  noopMetrics{},
		tracer:   noopTracer{},
		logger:   noopLogger{},
		nowFn:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a feature slice with its initial value and reducer. The tree
// shape is fixed once the store is live: registration after the first
// dispatch is rejected.
func (s *Store) Register(feature string, initial any, reducer Reducer) error {
	if feature == "" {
		return fmt.Errorf("feature name required")
	}
	if reducer == nil {
		return fmt.Errorf("feature %q requires a reducer", feature)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	if s.dispatched {
		return fmt.Errorf("cannot register feature %q after first dispatch", feature)
	}
	if _, exists := s.reducers[feature]; exists {
		return fmt.Errorf("feature %q already registered", feature)
	}
	s.reducers[feature] = reducer
	s.order = append(s.order, feature)
	s.slices[feature] = initial
	return nil
}

// RegisterGuard adds a pre-commit guard. Like features, guards are fixed once
// the store is live.
func (s *Store) RegisterGuard(guard Guard) error {
	if guard == nil {
		return fmt.Errorf("guard cannot be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	if s.dispatched {
		return fmt.Errorf("cannot register guard %q after first dispatch", guard.Name())
	}
	s.guards = append(s.guards, guard)
	return nil
}

// Dispatch runs every registered reducer against its slice, validates the
// transition with the registered guards, and commits the next tree. Any
// reducer or guard failure rejects the whole dispatch and retains the prior
// state. Subscribers are notified in registration order on the dispatching
// goroutine; they must not call back into the store.
func (s *Store) Dispatch(ctx context.Context, action Action) (State, error) {
	if action.Kind == "" {
		return State{}, fmt.Errorf("action kind required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return State{}, ErrStoreClosed
	}
	s.dispatched = true

	start := s.nowFn()
	ctx, span := s.tracer.Start(ctx, opDispatch)

	prev := State{slices: s.slices}
	next := cloneSlices(s.slices)
	var changed []string
	var dispatchErr error
	for _, feature := range s.order {
		out, err := runReducer(s.reducers[feature], next[feature], action)
		if err != nil {
			dispatchErr = ReducerError{Feature: feature, Kind: action.Kind, Err: err}
			break
		}
		if !sameRef(out, next[feature]) {
			next[feature] = out
			changed = append(changed, feature)
		}
	}

	nextState := State{slices: next}
	if dispatchErr == nil {
		for _, guard := range s.guards {
			if err := runGuard(ctx, guard, prev, nextState, action); err != nil {
				dispatchErr = GuardViolationError{Guard: guard.Name(), Kind: action.Kind, Err: err}
				break
			}
		}
	}

	duration := s.nowFn().Sub(start)
	if dispatchErr != nil {
		s.metrics.Observe(ctx, opDispatch, false, duration)
		span.End(dispatchErr)
		s.logger.Warn("dispatch rejected", "kind", action.Kind, "error", dispatchErr)
		return State{}, dispatchErr
	}

	s.slices = next
	s.seq++
	sort.Strings(changed)
	s.appendJournal(ctx, action, nextState, changed)
	s.metrics.Observe(ctx, opDispatch, true, duration)
	span.End(nil)
	s.logger.Debug("dispatch committed", "kind", action.Kind, "seq", s.seq)

	for _, sub := range s.subs {
		sub.fn(nextState)
	}
	for _, sub := range s.actionSubs {
		sub.fn(action, nextState)
	}
	return nextState, nil
}

// Subscribe registers a listener invoked with the committed tree after every
// dispatch. The returned function deregisters it.
func (s *Store) Subscribe(listener func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || listener == nil {
		return func() {}
	}
	id := s.nextSubID
	s.nextSubID++
	s.subs = append(s.subs, &stateSubscription{id: id, fn: listener})
	return func() { s.unsubscribeState(id) }
}

// SubscribeActions registers a listener invoked with every committed action
// and the tree it produced. Effect coordinators attach here.
func (s *Store) SubscribeActions(listener func(Action, State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || listener == nil {
		return func() {}
	}
	id := s.nextSubID
	s.nextSubID++
	s.actionSubs = append(s.actionSubs, &actionSubscription{id: id, fn: listener})
	return func() { s.unsubscribeActions(id) }
}

func (s *Store) unsubscribeState(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

func (s *Store) unsubscribeActions(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.actionSubs {
		if sub.id == id {
			s.actionSubs = append(s.actionSubs[:i], s.actionSubs[i+1:]...)
			return
		}
	}
}

// State returns the current committed tree.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{slices: s.slices}
}

// Seq returns the number of committed dispatches.
func (s *Store) Seq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

// Close tears the store down. Subsequent dispatches fail with ErrStoreClosed;
// registered subscribers are released.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subs = nil
	s.actionSubs = nil
	return nil
}

func (s *Store) appendJournal(ctx context.Context, action Action, state State, changed []string) {
	if s.journal == nil {
		return
	}
	entry := Entry{Seq: s.seq, At: s.nowFn(), Kind: action.Kind, Changed: changed}
	if action.Payload != nil {
		payload, err := PayloadFromValue(action.Payload)
		if err != nil {
			s.logger.Warn("journal: action payload not serializable", "kind", action.Kind, "error", err)
		} else {
			entry.Action = payload
		}
	}
	tree, err := PayloadFromValue(state.Export())
	if err != nil {
		s.logger.Warn("journal: state not serializable", "kind", action.Kind, "error", err)
	} else {
		entry.State = tree
	}
	if err := s.journal.Append(ctx, entry); err != nil {
		s.logger.Error("journal: append failed", "seq", entry.Seq, "error", err)
	}
}

func runReducer(reducer Reducer, slice any, action Action) (out any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = PanicError{Value: rec}
		}
	}()
	return reducer(slice, action)
}

func runGuard(ctx context.Context, guard Guard, prev, next State, action Action) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = PanicError{Value: rec}
		}
	}()
	return guard.Check(ctx, prev, next, action)
}
