package memory

import (
	"context"
	"testing"
	"time"

	"fluxcore/pkg/flux"
)

func entry(seq uint64, kind string) flux.Entry {
	return flux.Entry{Seq: seq, At: time.Now().UTC(), Kind: kind}
}

func TestAppendKeepsOrder(t *testing.T) {
	j := New()
	ctx := context.Background()
	for i, kind := range []string{"a", "b", "c"} {
		if err := j.Append(ctx, entry(uint64(i+1), kind)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if j.Len() != 3 {
		t.Fatalf("len = %d, want 3", j.Len())
	}
	if j.LastSeq() != 3 {
		t.Fatalf("last seq = %d, want 3", j.LastSeq())
	}
	entries := j.Entries()
	for i, kind := range []string{"a", "b", "c"} {
		if entries[i].Kind != kind {
			t.Fatalf("entries[%d].Kind = %q, want %q", i, entries[i].Kind, kind)
		}
	}
}

func TestAppendRejectsNonIncreasingSeq(t *testing.T) {
	j := New()
	ctx := context.Background()
	if err := j.Append(ctx, entry(2, "a")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := j.Append(ctx, entry(2, "dup")); err == nil {
		t.Fatal("expected error for duplicate seq")
	}
	if err := j.Append(ctx, entry(1, "old")); err == nil {
		t.Fatal("expected error for decreasing seq")
	}
	if j.Len() != 1 {
		t.Fatalf("len = %d after rejected appends, want 1", j.Len())
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	j := New()
	if err := j.Append(context.Background(), entry(1, "a")); err != nil {
		t.Fatalf("append: %v", err)
	}
	entries := j.Entries()
	entries[0].Kind = "mutated"
	if j.Entries()[0].Kind != "a" {
		t.Fatal("caller mutation leaked into journal")
	}
}

func TestEmptyJournal(t *testing.T) {
	j := New()
	if j.Len() != 0 || j.LastSeq() != 0 {
		t.Fatalf("len=%d lastSeq=%d, want zeroes", j.Len(), j.LastSeq())
	}
	if got := j.Entries(); len(got) != 0 {
		t.Fatalf("entries = %v", got)
	}
}
