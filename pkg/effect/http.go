package effect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"fluxcore/pkg/flux"
)

// FetchJSON builds a handler that GETs url, decodes the JSON response body as
// T, and maps it to a success action. Non-2xx responses and decode failures
// surface as handler errors, which the coordinator converts into failure
// actions. The remote service is treated as an opaque collaborator; any
// timeout belongs on the client or the request context.
func FetchJSON[T any](client *http.Client, url string, onSuccess func(T) flux.Action) Handler {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context, _ flux.Action) (flux.Action, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return flux.Action{}, fmt.Errorf("build request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return flux.Action{}, fmt.Errorf("fetch %s: %w", url, err)
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return flux.Action{}, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
		}
		var payload T
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return flux.Action{}, fmt.Errorf("decode %s: %w", url, err)
		}
		return onSuccess(payload), nil
	}
}
