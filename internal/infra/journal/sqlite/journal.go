// Package sqlite persists the dispatch journal to an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"fluxcore/pkg/flux"
)

// Journal appends one row per committed dispatch to a single table.
type Journal struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// New opens (creating if needed) a SQLite-backed journal at path.
func New(path string) (*Journal, error) {
	if path == "" {
		path = "fluxcore.journal.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS journal (
		seq INTEGER PRIMARY KEY,
		at TEXT NOT NULL,
		kind TEXT NOT NULL,
		action BLOB,
		state BLOB,
		changed TEXT
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create journal table: %w", err)
	}
	return &Journal{db: db, path: path}, nil
}

// Path returns the journal file location.
func (j *Journal) Path() string { return j.path }

// Append inserts one entry. The seq primary key rejects duplicates, keeping
// the journal strictly append-only.
func (j *Journal) Append(ctx context.Context, entry flux.Entry) error {
	changed, err := json.Marshal(entry.Changed)
	if err != nil {
		return fmt.Errorf("encode changed: %w", err)
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	_, err = j.db.ExecContext(ctx,
		`INSERT INTO journal (seq, at, kind, action, state, changed) VALUES (?, ?, ?, ?, ?, ?)`,
		int64(entry.Seq),
		entry.At.UTC().Format(time.RFC3339Nano),
		entry.Kind,
		[]byte(entry.Action.Raw()),
		[]byte(entry.State.Raw()),
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
		`SELECT seq, at, kind, action, state, changed FROM journal ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("select journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []flux.Entry
	for rows.Next() {
		var (
			seq     int64
			at      string
			kind    string
			action  []byte
			state   []byte
			changed string
		)
		if err := rows.Scan(&seq, &at, &kind, &action, &state, &changed); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		entry := flux.Entry{Seq: uint64(seq), Kind: kind}
		if entry.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("parse timestamp for seq %d: %w", seq, err)
		}
		if len(action) > 0 {
			entry.Action = flux.NewPayload(action)
		}
		if len(state) > 0 {
			entry.State = flux.NewPayload(state)
		}
		if changed != "" {
			if err := json.Unmarshal([]byte(changed), &entry.Changed); err != nil {
				return nil, fmt.Errorf("decode changed for seq %d: %w", seq, err)
			}
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// LastSeq returns the newest sequence number, zero when the journal is empty.
func (j *Journal) LastSeq(ctx context.Context) (uint64, error) {
	var seq sql.NullInt64
	if err := j.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM journal`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("select max seq: %w", err)
	}
	if !seq.Valid {
		return 0, nil
	}
	return uint64(seq.Int64), nil
}

// Close releases the underlying database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}
