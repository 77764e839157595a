// Package memory implements an in-memory journal sink for tests and
// ephemeral dev-tool sessions.
package memory

import (
	"context"
	"fmt"
	"sync"

	"fluxcore/pkg/flux"
)

// Journal retains dispatch entries in process memory, in append order.
type Journal struct {
	mu      sync.RWMutex
	entries []flux.Entry
}

// New returns an empty in-memory journal.
func New() *Journal { return &Journal{} }

// Append records one entry. Sequence numbers must be strictly increasing.
func (j *Journal) Append(_ context.Context, entry flux.Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if n := len(j.entries); n > 0 && entry.Seq <= j.entries[n-1].Seq {
		return fmt.Errorf("out-of-order seq %d after %d", entry.Seq, j.entries[n-1].Seq)
	}
	j.entries = append(j.entries, entry)
	return nil
}

// Entries returns a copy of all recorded entries in append order.
func (j *Journal) Entries() []flux.Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]flux.Entry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Len reports the number of recorded entries.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}

// LastSeq returns the sequence number of the newest entry, zero when empty.
func (j *Journal) LastSeq() uint64 {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if len(j.entries) == 0 {
		return 0
	}
	return j.entries[len(j.entries)-1].Seq
}
