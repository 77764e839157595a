package flux

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

var expvarSeq uint64

type opStats struct {
	Successes       int64   `json:"successes"`
	Errors          int64   `json:"errors"`
	TotalDurationMS float64 `json:"total_duration_ms"`
}

// ExpvarMetricsRecorder publishes per-operation dispatch counters via expvar.
// It fulfills MetricsRecorder for deployments that prefer process-local
// metrics without external dependencies; see internal/infra/metrics for the
// prometheus-backed recorder.
type ExpvarMetricsRecorder struct {
	name  string
	mu    sync.Mutex
	stats map[string]*opStats
}

// ExpvarMetricsSnapshot captures a read-only view of the recorded metrics.
type ExpvarMetricsSnapshot struct {
	Operations map[string]opStats `json:"operations"`
	RecordedAt time.Time          `json:"recorded_at"`
}

// NewExpvarMetricsRecorder constructs an expvar-backed recorder and publishes
// it under the supplied name. When name is empty, a unique identifier is
// generated.
func NewExpvarMetricsRecorder(name string) *ExpvarMetricsRecorder {
	if name == "" {
		id := atomic.AddUint64(&expvarSeq, 1)
		name = fmt.Sprintf("flux_store_metrics_%d", id)
	}
	rec := &ExpvarMetricsRecorder{
		name:  name,
		stats: make(map[string]*opStats),
	}
	expvar.Publish(name, expvar.Func(func() any {
		return rec.Snapshot()
	}))
	return rec
}

// Name returns the expvar export name associated with the recorder.
func (r *ExpvarMetricsRecorder) Name() string {
	return r.name
}

// Snapshot returns an immutable copy of the aggregated metrics.
func (r *ExpvarMetricsRecorder) Snapshot() ExpvarMetricsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make(map[string]opStats, len(r.stats))
	for op, st := range r.stats {
		ops[op] = *st
	}
	return ExpvarMetricsSnapshot{Operations: ops, RecordedAt: time.Now().UTC()}
}

// Observe records a dispatch outcome.
func (r *ExpvarMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.stats[operation]
	if !ok {
		st = &opStats{}
		r.stats[operation] = st
	}
	if success {
		st.Successes++
	} else {
		st.Errors++
	}
	st.TotalDurationMS += float64(duration) / float64(time.Millisecond)
}

// JSONTraceEntry is a finished span record. Spans are numbered by the tracer
// in completion order, not start order.
type JSONTraceEntry struct {
	Span      uint64        `json:"span"`
	Operation string        `json:"operation"`
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`
	EndedAt   time.Time     `json:"ended_at"`
	Elapsed   time.Duration `json:"elapsed_ns"`
}

// JSONTraceTracer records dispatch spans in memory and optionally streams each
// finished span to a writer as a JSON line.
type JSONTraceTracer struct {
	mu      sync.Mutex
	nextID  uint64
	entries []JSONTraceEntry
	enc     *json.Encoder
}

// NewJSONTracer constructs a tracer writing to w. A nil writer retains spans
// in memory only.
func NewJSONTracer(w io.Writer) *JSONTraceTracer {
	t := &JSONTraceTracer{}
	if w != nil {
		t.enc = json.NewEncoder(w)
	}
	return t
}

// Entries returns a copy of all finished spans.
func (t *JSONTraceTracer) Entries() []JSONTraceEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]JSONTraceEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Start implements the Tracer interface.
func (t *JSONTraceTracer) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	return ctx, &jsonTraceSpan{tracer: t, operation: operation, started: time.Now()}
}

type jsonTraceSpan struct {
	tracer    *JSONTraceTracer
	operation string
	started   time.Time
}

func (s *jsonTraceSpan) End(err error) {
	status, message := "success", ""
	if err != nil {
		status, message = "error", err.Error()
	}

	t := s.tracer
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	entry := JSONTraceEntry{
		Span:      t.nextID,
		Operation: s.operation,
		Status:    status,
		Error:     message,
		EndedAt:   time.Now().UTC(),
		Elapsed:   time.Since(s.started),
	}
	t.entries = append(t.entries, entry)
	if t.enc != nil {
		_ = t.enc.Encode(entry)
	}
}
