package flux

import "context"

// Replay dispatches actions in order against the store and returns the final
// tree. Because reducers are pure, replaying the same sequence against the
// same initial state always yields the same result.
func Replay(ctx context.Context, store *Store, actions []Action) (State, error) {
	state := store.State()
	for _, action := range actions {
		next, err := store.Dispatch(ctx, action)
		if err != nil {
			return State{}, err
		}
		state = next
	}
	return state, nil
}
