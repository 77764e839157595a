package snapshot

import (
	"context"
	"strings"
	"testing"

	memarchive "fluxcore/internal/infra/snapshot/memory"
	"fluxcore/pkg/flux"
)

func TestOpenSelectsDriverFromEnv(t *testing.T) {
	t.Setenv("FLUXCORE_SNAPSHOT_DRIVER", "memory")
	archive, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if archive.Driver() != DriverMemory {
		t.Fatalf("driver = %s, want memory", archive.Driver())
	}

	t.Setenv("FLUXCORE_SNAPSHOT_DRIVER", "fs")
	t.Setenv("FLUXCORE_SNAPSHOT_FS_ROOT", t.TempDir())
	archive, err = Open(context.Background())
	if err != nil {
		t.Fatalf("open fs: %v", err)
	}
	if archive.Driver() != DriverFilesystem {
		t.Fatalf("driver = %s, want fs", archive.Driver())
	}

	t.Setenv("FLUXCORE_SNAPSHOT_DRIVER", "tape")
	if _, err := Open(context.Background()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func counterReducer(slice any, action flux.Action) (any, error) {
	n := slice.(int)
	if action.Kind == "counter.increment" {
		return n + 1, nil
	}
	return n, nil
}

func TestCaptureAndLoad(t *testing.T) {
	s := flux.New()
	if err := s.Register("counter", 0, counterReducer); err != nil {
		t.Fatalf("register: %v", err)
	}
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := s.Dispatch(ctx, flux.NewAction("counter.increment", nil)); err != nil {
			t.Fatalf("dispatch: %v", err)
		}
	}

	archive := memarchive.New()
	info, err := Capture(ctx, archive, s)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if !strings.HasPrefix(info.Key, "snapshots/") || !strings.HasSuffix(info.Key, ".json") {
		t.Fatalf("key = %q", info.Key)
	}
	if info.ContentType != "application/json" {
		t.Fatalf("content type = %q", info.ContentType)
	}

	rec, err := Load(ctx, archive, info.Key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec.Seq != 5 {
		t.Fatalf("seq = %d, want 5", rec.Seq)
	}
	counter, ok := rec.State["counter"].(float64)
	if !ok || counter != 5 {
		t.Fatalf("state = %v", rec.State)
	}
}

func TestCaptureKeysSortInCaptureOrder(t *testing.T) {
	s := flux.New()
	if err := s.Register("counter", 0, counterReducer); err != nil {
		t.Fatalf("register: %v", err)
	}
	ctx := context.Background()
	archive := memarchive.New()

	first, err := Capture(ctx, archive, s)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if _, err := s.Dispatch(ctx, flux.NewAction("counter.increment", nil)); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	second, err := Capture(ctx, archive, s)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if !(first.Key < second.Key) {
		t.Fatalf("keys out of order: %q then %q", first.Key, second.Key)
	}

	infos, err := archive.List(ctx, "snapshots/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("listed %d snapshots, want 2", len(infos))
	}
}
