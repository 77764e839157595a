package flux

import (
	"context"
	"encoding/json"
	"time"
)

// Payload wraps a JSON snapshot of an action payload or state tree. The bytes
// are cloned on the way in and out to prevent callers from mutating shared
// state.
type Payload struct {
	defined bool
	raw     json.RawMessage
}

// NewPayload builds a payload wrapper from raw JSON. Passing a nil slice
// yields a defined but empty payload; use UndefinedPayload for "not set".
func NewPayload(raw json.RawMessage) Payload {
	payload := Payload{defined: true}
	if raw != nil {
		payload.raw = cloneRawMessage(raw)
	}
	return payload
}

// PayloadFromValue marshals a typed value into a Payload.
func PayloadFromValue[T any](value T) (Payload, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return Payload{}, err
	}
	return NewPayload(raw), nil
}

// UndefinedPayload returns an uninitialized payload wrapper.
func UndefinedPayload() Payload {
	return Payload{}
}

// Defined reports whether the payload has been initialized.
func (p Payload) Defined() bool {
	return p.defined
}

// IsEmpty reports whether the payload contains no bytes.
func (p Payload) IsEmpty() bool {
	if !p.defined {
		return true
	}
	return len(p.raw) == 0
}

// Raw returns a cloned copy of the underlying JSON bytes. Nil is returned
// when the payload is undefined or empty.
func (p Payload) Raw() json.RawMessage {
	if !p.defined || len(p.raw) == 0 {
		return nil
	}
	return cloneRawMessage(p.raw)
}

// Decode unmarshals the payload bytes into out.
func (p Payload) Decode(out any) error {
	if !p.defined || len(p.raw) == 0 {
		return nil
	}
	return json.Unmarshal(p.raw, out)
}

// MarshalJSON serializes the raw bytes, or null when undefined/empty.
func (p Payload) MarshalJSON() ([]byte, error) {
	if !p.defined || len(p.raw) == 0 {
		return []byte("null"), nil
	}
	return cloneRawMessage(p.raw), nil
}

// UnmarshalJSON restores the wrapper from serialized form.
func (p *Payload) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = Payload{}
		return nil
	}
	*p = NewPayload(data)
	return nil
}

func cloneRawMessage(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	cloned := make(json.RawMessage, len(raw))
	copy(cloned, raw)
	return cloned
}

// Entry is one record of the append-only dispatch journal: the action that
// was dispatched and the state tree it produced. The journal is purely
// observational; it is written after commit and never influences dispatch.
type Entry struct {
	Seq     uint64    `json:"seq"`
	At      time.Time `json:"at"`
	Kind    string    `json:"kind"`
	Action  Payload   `json:"action"`
	State   Payload   `json:"state"`
	Changed []string  `json:"changed,omitempty"`
}

// JournalSink receives one entry per committed dispatch. Append errors are
// logged by the store and never fail the dispatch that produced the entry.
type JournalSink interface {
	Append(ctx context.Context, entry Entry) error
}
