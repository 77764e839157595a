package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"fluxcore/internal/infra/snapshot/core"
)

func TestPutReplacesExistingObject(t *testing.T) {
	a := New()
	ctx := context.Background()
	if _, err := a.Put(ctx, "k", strings.NewReader("v1"), "text/plain"); err != nil {
		t.Fatalf("put: %v", err)
	}
	info, err := a.Put(ctx, "k", strings.NewReader("v2-longer"), "text/plain")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 9 {
		t.Fatalf("info = %+v", info)
	}

	_, body, err := a.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(body)
	if string(data) != "v2-longer" {
		t.Fatalf("content = %s", data)
	}
}

func TestGetAndDeleteMissing(t *testing.T) {
	a := New()
	ctx := context.Background()
	if _, _, err := a.Get(ctx, "ghost"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("get err = %v", err)
	}
	if err := a.Delete(ctx, "ghost"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("delete err = %v", err)
	}
}

func TestListSortedWithPrefix(t *testing.T) {
	a := New()
	ctx := context.Background()
	for _, key := range []string{"b", "a", "prefix/z", "prefix/y"} {
		if _, err := a.Put(ctx, key, strings.NewReader("x"), ""); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := a.List(ctx, "prefix/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "prefix/y" || infos[1].Key != "prefix/z" {
		t.Fatalf("infos = %+v", infos)
	}
	if a.Driver() != core.DriverMemory {
		t.Fatalf("driver = %s", a.Driver())
	}
}
