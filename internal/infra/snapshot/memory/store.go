// Package memory implements an in-memory snapshot archive for tests.
package memory

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"fluxcore/internal/infra/snapshot/core"
)

type object struct {
	info core.Info
	data []byte
}

// Archive implements core.Archive backed by process memory.
type Archive struct {
	mu   sync.RWMutex
	objs map[string]object
}

// New returns an empty in-memory archive.
func New() *Archive { return &Archive{objs: make(map[string]object)} }

// Driver returns the archive driver identifier.
func (a *Archive) Driver() core.Driver { return core.DriverMemory }

// Put stores a snapshot object, replacing any existing object at key.
func (a *Archive) Put(_ context.Context, key string, r io.Reader, contentType string) (core.Info, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.Info{}, err
	}
	info := core.Info{
		Key:          key,
		Size:         int64(len(data)),
		ContentType:  contentType,
		LastModified: time.Now().UTC(),
	}
	a.mu.Lock()
	a.objs[key] = object{info: info, data: data}
	a.mu.Unlock()
	return info, nil
}

// Get returns snapshot metadata and a reader over its content.
func (a *Archive) Get(_ context.Context, key string) (core.Info, io.ReadCloser, error) {
	a.mu.RLock()
	obj, ok := a.objs[key]
	a.mu.RUnlock()
	if !ok {
		return core.Info{}, nil, core.ErrNotFound
	}
	return obj.info, io.NopCloser(bytes.NewReader(obj.data)), nil
}

// List enumerates stored objects under prefix, sorted by key.
func (a *Archive) List(_ context.Context, prefix string) ([]core.Info, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]core.Info, 0, len(a.objs))
	for key, obj := range a.objs {
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			continue
		}
		out = append(out, obj.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Delete removes an object; deleting an absent key is an error.
func (a *Archive) Delete(_ context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.objs[key]; !ok {
		return core.ErrNotFound
	}
	delete(a.objs, key)
	return nil
}
