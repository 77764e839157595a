package effect

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"

	"fluxcore/pkg/flux"
)

// WithRetry wraps a handler with exponential backoff, giving up once
// maxElapsed has passed or the context is cancelled. Wrap an error with
// Permanent to stop retrying immediately.
func WithRetry(handler Handler, maxElapsed time.Duration) Handler {
	return func(ctx context.Context, trigger flux.Action) (flux.Action, error) {
		var result flux.Action
		attempt := func() error {
			out, err := handler(ctx, trigger)
			if err != nil {
				return err
			}
			result = out
			return nil
		}
		policy := backoff.NewExponentialBackOff()
		policy.MaxElapsedTime = maxElapsed
		if err := backoff.Retry(attempt, backoff.WithContext(policy, ctx)); err != nil {
			return flux.Action{}, err
		}
		return result, nil
	}
}

// Permanent marks an error as non-retryable for WithRetry.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
