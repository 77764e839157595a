package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCountsOutcomes(t *testing.T) {
	rec := New(nil)
	ctx := context.Background()

	rec.Observe(ctx, "dispatch", true, 3*time.Millisecond)
	rec.Observe(ctx, "dispatch", true, time.Millisecond)
	rec.Observe(ctx, "dispatch", false, 2*time.Millisecond)

	success := testutil.ToFloat64(rec.operations.WithLabelValues("dispatch", "success"))
	if success != 2 {
		t.Fatalf("success count = %v, want 2", success)
	}
	failure := testutil.ToFloat64(rec.operations.WithLabelValues("dispatch", "error"))
	if failure != 1 {
		t.Fatalf("error count = %v, want 1", failure)
	}
}

func TestSharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := New(reg)
	if rec.Registry() != reg {
		t.Fatal("recorder did not adopt the provided registry")
	}
	rec.Observe(context.Background(), "dispatch", true, time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	if !names["fluxcore_store_operations_total"] {
		t.Fatalf("operations counter not registered: %v", names)
	}
	if !names["fluxcore_store_operation_duration_seconds"] {
		t.Fatalf("duration histogram not registered: %v", names)
	}
}

func TestPrivateRegistriesAreIndependent(t *testing.T) {
	a := New(nil)
	b := New(nil)
	if a.Registry() == b.Registry() {
		t.Fatal("recorders share a registry they should not")
	}
	// Both registering the same collector names must not panic.
	a.Observe(context.Background(), "dispatch", true, time.Millisecond)
	b.Observe(context.Background(), "dispatch", false, time.Millisecond)
}
