package effect

import (
	"context"
	"sync"

	"fluxcore/pkg/flux"
)

type eventKind int

const (
	triggerEvent eventKind = iota
	resultEvent
)

// event is one unit of work for a runner loop: either a matched trigger or
// the outcome of a completed handler run. Queue order defines which of two
// overlapping runs supersedes the other.
type event struct {
	kind       eventKind
	action     flux.Action
	generation uint64
	dispatch   bool
}

// runner owns all concurrency bookkeeping for a single effect. A per-runner
// goroutine drains an unbounded event queue, so enqueuing from the store's
// dispatch path never blocks and the loop never holds a lock while
// dispatching.
type runner struct {
	coord  *Coordinator
	effect Effect

	mu    sync.Mutex
	cond  *sync.Cond
	queue []event

	// loop-local state, touched only by the loop goroutine.
	generation uint64
	cancelRun  context.CancelFunc
	busy       bool
	pending    []flux.Action
}

func newRunner(c *Coordinator, e Effect) *runner {
	r := &runner{coord: c, effect: e}
	r.cond = sync.NewCond(&r.mu)
	return r
}

func (r *runner) matches(action flux.Action) bool {
	if r.effect.Match != nil {
		return r.effect.Match(action)
	}
	for _, kind := range r.effect.Kinds {
		if kind == action.Kind {
			return true
		}
	}
	return false
}

func (r *runner) trigger(action flux.Action) {
	r.post(event{kind: triggerEvent, action: action})
}

func (r *runner) post(ev event) {
	r.mu.Lock()
	r.queue = append(r.queue, ev)
	r.cond.Signal()
	r.mu.Unlock()
}

func (r *runner) wake() {
	r.mu.Lock()
	r.cond.Broadcast()
	r.mu.Unlock()
}

func (r *runner) loop() {
	defer r.coord.wg.Done()
	for {
		r.mu.Lock()
		for len(r.queue) == 0 && r.coord.ctx.Err() == nil {
			r.cond.Wait()
		}
		if r.coord.ctx.Err() != nil {
			r.mu.Unlock()
			return
		}
		ev := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()

		switch ev.kind {
		case triggerEvent:
			r.handleTrigger(ev.action)
		case resultEvent:
			r.handleResult(ev)
		}
	}
}

func (r *runner) handleTrigger(action flux.Action) {
	switch r.effect.Policy {
	case Switch:
		if r.cancelRun != nil {
			r.cancelRun()
		}
		r.generation++
		r.launch(action, r.generation)
	case Concat:
		if r.busy {
			r.pending = append(r.pending, action)
			return
		}
		r.busy = true
		r.generation++
		r.launch(action, r.generation)
	case Exhaust:
		if r.busy {
			r.coord.logger.Debug("effect trigger ignored while busy",
				"effect", r.effect.Name, "policy", r.effect.Policy.String(), "kind", action.Kind)
			return
		}
		r.busy = true
		r.generation++
		r.launch(action, r.generation)
	default: // Merge
		r.generation++
		r.launch(action, r.generation)
	}
}

func (r *runner) handleResult(ev event) {
	switch r.effect.Policy {
	case Switch:
		if ev.generation != r.generation {
			r.coord.logger.Debug("stale effect result discarded",
				"effect", r.effect.Name, "kind", ev.action.Kind)
			return
		}
		r.dispatchResult(ev)
	case Concat:
		r.dispatchResult(ev)
		if len(r.pending) > 0 {
			next := r.pending[0]
			r.pending = r.pending[1:]
			r.generation++
			r.launch(next, r.generation)
			return
		}
		r.busy = false
	case Exhaust:
		r.dispatchResult(ev)
		r.busy = false
	default: // Merge
		r.dispatchResult(ev)
	}
}

func (r *runner) dispatchResult(ev event) {
	if !ev.dispatch {
		return
	}
	if _, err := r.coord.store.Dispatch(r.coord.ctx, ev.action); err != nil {
		r.coord.logger.Error("effect dispatch failed",
			"effect", r.effect.Name, "kind", ev.action.Kind, "error", err)
	}
}

// launch starts the handler goroutine for one trigger. Its outcome re-enters
// the loop as a resultEvent tagged with the run's generation.
func (r *runner) launch(trigger flux.Action, generation uint64) {
	ctx, cancel := context.WithCancel(r.coord.ctx)
	if r.effect.Policy == Switch {
		r.cancelRun = cancel
	}
	r.coord.wg.Add(1)
	go func() {
		defer r.coord.wg.Done()
		defer cancel()
		result, ok := r.run(ctx, trigger)
		r.post(event{kind: resultEvent, action: result, generation: generation, dispatch: ok})
	}()
}

// run executes the handler, converting failures into the effect's failure
// action. A cancelled run never produces a dispatchable result.
func (r *runner) run(ctx context.Context, trigger flux.Action) (flux.Action, bool) {
	result, err := safeRun(ctx, r.effect.Run, trigger)
	if ctx.Err() != nil {
		return flux.Action{}, false
	}
	if err != nil {
		return r.effect.OnError(trigger, err), true
	}
	if result.Kind == "" {
		return flux.Action{}, false
	}
	return result, true
}

func safeRun(ctx context.Context, run Handler, trigger flux.Action) (result flux.Action, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result = flux.Action{}
			err = flux.PanicError{Value: rec}
		}
	}()
	return run(ctx, trigger)
}
