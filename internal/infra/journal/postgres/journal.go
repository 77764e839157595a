// Package postgres persists the dispatch journal to a PostgreSQL server.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"fluxcore/pkg/flux"
)

const (
	defaultDriver = "pgx"
	// Default DSN keeps parity with journal.Open defaults while allowing
	// overrides via env.
	defaultDSN = "postgres://localhost/fluxcore?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// OverrideSQLOpen swaps the sql.Open implementation (stub drivers in tests)
// and returns a restore function.
func OverrideSQLOpen(fn func(driver, dsn string) (*sql.DB, error)) func() {
	openMu.Lock()
	prev := sqlOpen
	sqlOpen = fn
	openMu.Unlock()
	return func() {
		openMu.Lock()
		sqlOpen = prev
		openMu.Unlock()
	}
}

// Journal appends one row per committed dispatch.
type Journal struct {
	db *sql.DB
	mu sync.Mutex
}

// New opens a Postgres-backed journal using the provided DSN (falls back to
// defaultDSN) and ensures the journal table exists.
func New(dsn string) (*Journal, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS flux_journal (
		seq BIGINT PRIMARY KEY,
		at TIMESTAMPTZ NOT NULL,
		kind TEXT NOT NULL,
		action JSONB,
		state JSONB,
		changed JSONB
	)`); err != nil {
		return nil, fmt.Errorf("create journal table: %w", err)
	}
	return &Journal{db: db}, nil
}

// Append inserts one entry; the seq primary key rejects duplicates.
func (j *Journal) Append(ctx context.Context, entry flux.Entry) error {
	changed, err := json.Marshal(entry.Changed)
	if err != nil {
		return fmt.Errorf("encode changed: %w", err)
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	_, err = j.db.ExecContext(ctx,
		`INSERT INTO flux_journal (seq, at, kind, action, state, changed) VALUES ($1, $2, $3, $4, $5, $6)`,
		int64(entry.Seq),
		entry.At.UTC(),
		entry.Kind,
		nullableJSON(entry.Action.Raw()),
		nullableJSON(entry.State.Raw()),
		string(changed),
	)
	if err != nil {
		return fmt.Errorf("insert journal entry %d: %w", entry.Seq, err)
	}
	return nil
}

// Entries returns all recorded entries ordered by sequence.
func (j *Journal) Entries(ctx context.Context) ([]flux.Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT seq, at, kind, action, state, changed FROM flux_journal ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("select journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []flux.Entry
	for rows.Next() {
		var (
			seq     int64
			at      time.Time
			kind    string
			action  sql.NullString
			state   sql.NullString
			changed sql.NullString
		)
		if err := rows.Scan(&seq, &at, &kind, &action, &state, &changed); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		entry := flux.Entry{Seq: uint64(seq), At: at, Kind: kind}
		if action.Valid && action.String != "" {
			entry.Action = flux.NewPayload([]byte(action.String))
		}
		if state.Valid && state.String != "" {
			entry.State = flux.NewPayload([]byte(state.String))
		}
		if changed.Valid && changed.String != "" && changed.String != "null" {
			if err := json.Unmarshal([]byte(changed.String), &entry.Changed); err != nil {
				return nil, fmt.Errorf("decode changed for seq %d: %w", seq, err)
			}
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// Close releases the underlying database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
