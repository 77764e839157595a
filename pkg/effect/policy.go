package effect

import "fmt"

// Policy selects how an effect treats a new triggering action while a prior
// run is still in flight.
type Policy int

const (
	// Merge runs every trigger in parallel; no ordering promise among
	// completions.
	Merge Policy = iota
	// Switch cancels the in-flight run and discards its eventual result;
	// only the newest trigger's outcome is ever dispatched.
	Switch
	// Concat queues triggers and runs them one at a time in arrival order.
	Concat
	// Exhaust ignores new triggers until the in-flight run completes.
	Exhaust
)

func (p Policy) String() string {
	switch p {
	case Merge:
		return "merge"
	case Switch:
		return "switch"
	case Concat:
		return "concat"
	case Exhaust:
		return "exhaust"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}
