// Package journal selects and verifies dispatch-journal backends.
package journal

import (
	"context"
	"fmt"
	"os"

	"fluxcore/internal/infra/journal/memory"
	"fluxcore/internal/infra/journal/postgres"
	"fluxcore/internal/infra/journal/sqlite"
	"fluxcore/pkg/flux"
)

// Driver identifies a concrete journal backend implementation.
type Driver string

const (
	// DriverMemory keeps the journal in process memory (tests / ephemeral).
	DriverMemory Driver = "memory"
	// DriverSQLite appends to an embedded sqlite file (default).
	DriverSQLite Driver = "sqlite"
	// DriverPostgres appends to a PostgreSQL server.
	DriverPostgres Driver = "postgres"
)

// Sink extends flux.JournalSink with read access for dev tools and replay.
type Sink interface {
	flux.JournalSink
	Entries(ctx context.Context) ([]flux.Entry, error)
}

// Open selects a backend using environment variables. Defaults to sqlite
// when unset.
//
//	FLUXCORE_JOURNAL_DRIVER: memory|sqlite|postgres (default sqlite)
//	FLUXCORE_JOURNAL_PATH: path to sqlite file (default ./fluxcore.journal.db)
//	FLUXCORE_JOURNAL_DSN: postgres DSN when driver=postgres
func Open(_ context.Context) (Sink, error) {
	driver := os.Getenv("FLUXCORE_JOURNAL_DRIVER")
	if driver == "" {
		driver = string(DriverSQLite)
	}
	switch Driver(driver) {
	case DriverMemory:
		return memSink{memory.New()}, nil
	case DriverSQLite:
		return New(os.Getenv("FLUXCORE_JOURNAL_PATH"))
	case DriverPostgres:
		return postgres.New(os.Getenv("FLUXCORE_JOURNAL_DSN"))
	default:
		return nil, fmt.Errorf("unknown journal driver %s", driver)
	}
}

// New opens a sqlite journal at path (the default backend).
func New(path string) (Sink, error) {
	return sqlite.New(path)
}

// memSink adapts the in-memory journal's snapshot accessor to the Sink shape.
type memSink struct {
	*memory.Journal
}

func (m memSink) Entries(context.Context) ([]flux.Entry, error) {
	return m.Journal.Entries(), nil
}

// Verify checks journal integrity: strictly increasing sequence numbers and
// decodable state payloads. It returns the number of entries checked.
func Verify(ctx context.Context, sink Sink) (int, error) {
	entries, err := sink.Entries(ctx)
	if err != nil {
		return 0, err
	}
	var prev uint64
	for i, entry := range entries {
		if entry.Seq <= prev && i > 0 {
			return i, fmt.Errorf("entry %d: seq %d not greater than %d", i, entry.Seq, prev)
		}
		if entry.Kind == "" {
			return i, fmt.Errorf("entry %d (seq %d): empty action kind", i, entry.Seq)
		}
		var tree map[string]any
		if err := entry.State.Decode(&tree); err != nil {
			return i, fmt.Errorf("entry %d (seq %d): state payload: %w", i, entry.Seq, err)
		}
		prev = entry.Seq
	}
	return len(entries), nil
}
