package effect

import (
	"context"
	"fmt"
	"sync"

	"fluxcore/pkg/flux"
)

// Handler performs the asynchronous work for one triggering action and
// returns the follow-up action to dispatch. Returning a zero-kind action
// dispatches nothing.
type Handler func(ctx context.Context, trigger flux.Action) (flux.Action, error)

// Effect describes one registered side-effect coordinator entry.
type Effect struct {
	// Name identifies the effect in logs. Defaults to the first kind.
	Name string
	// Kinds lists the action kinds that trigger the effect.
	Kinds []string
	// Match overrides Kinds when set.
	Match func(flux.Action) bool
	// Policy governs overlapping triggers. The zero value is Merge.
	Policy Policy
	// Run performs the asynchronous work.
	Run Handler
	// OnError maps a handler failure to the failure action dispatched in its
	// place. Defaults to FailureAction.
	OnError func(trigger flux.Action, err error) flux.Action
}

// FailureAction is the default failure mapper: the trigger kind with a
// ".failure" suffix, carrying the error text as payload.
func FailureAction(trigger flux.Action, err error) flux.Action {
	return flux.Action{Kind: trigger.Kind + ".failure", Payload: err.Error()}
}

// Coordinator attaches effects to a store's action feed. Launching a handler
// never blocks the dispatch path: triggers are handed to goroutines (or an
// unbounded per-effect queue under Concat) and their results re-enter the
// store through Dispatch.
type Coordinator struct {
	store  *flux.Store
	logger flux.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	detach func()

	mu      sync.Mutex
	runners []*runner
	closed  bool
}

// CoordinatorOption configures a coordinator.
type CoordinatorOption func(*Coordinator)

// WithLogger wires a structured logger into the coordinator.
func WithLogger(logger flux.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCoordinator subscribes a coordinator to the store's action feed.
func NewCoordinator(store *flux.Store, opts ...CoordinatorOption) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		store:  store,
		logger: nopLogger{},
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.detach = store.SubscribeActions(c.onAction)
	return c
}

// Register adds an effect. Effects can be registered at any time before
// Close.
func (c *Coordinator) Register(effect Effect) error {
	if effect.Run == nil {
		return fmt.Errorf("effect %q requires a Run handler", effect.Name)
	}
	if effect.Match == nil && len(effect.Kinds) == 0 {
		return fmt.Errorf("effect %q matches no actions", effect.Name)
	}
	if effect.Name == "" {
		if len(effect.Kinds) > 0 {
			effect.Name = effect.Kinds[0]
		} else {
			effect.Name = "unnamed"
		}
	}
	if effect.OnError == nil {
		effect.OnError = FailureAction
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("coordinator closed")
	}
	r := newRunner(c, effect)
	c.runners = append(c.runners, r)
	c.wg.Add(1)
	go r.loop()
	return nil
}

// Close detaches from the store, cancels in-flight handlers, and waits for
// them to drain. Results of cancelled handlers are discarded, not dispatched.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	runners := append([]*runner(nil), c.runners...)
	c.mu.Unlock()

	c.detach()
	c.cancel()
	for _, r := range runners {
		r.wake()
	}
	c.wg.Wait()
	return nil
}

func (c *Coordinator) onAction(action flux.Action, _ flux.State) {
	c.mu.Lock()
	runners := c.runners
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}
	for _, r := range runners {
		if r.matches(action) {
			r.trigger(action)
		}
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
