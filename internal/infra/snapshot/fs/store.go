// Package fs implements the snapshot archive on the local filesystem.
package fs

import (
	"context"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fluxcore/internal/infra/snapshot/core"
)

// Archive implements core.Archive using the local filesystem. Keys are mapped
// to relative file paths under the root. Intentionally simple; not safe for
// concurrent writers of the same key beyond per-file creation.
type Archive struct {
	root string
}

// New returns a filesystem-backed archive rooted at path, creating it if
// needed.
func New(root string) (*Archive, error) {
	if root == "" {
		root = "./snapshots"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Archive{root: root}, nil
}

// Driver returns the archive driver identifier.
func (a *Archive) Driver() core.Driver { return core.DriverFilesystem }

// sanitizeKey forbids path traversal and absolute paths.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key contains '..'")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key")
	}
	clean := filepath.ToSlash(filepath.Clean(key))
	if strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid key traversal")
	}
	return clean, nil
}

// Put writes a snapshot object.
func (a *Archive) Put(_ context.Context, key string, r io.Reader, contentType string) (core.Info, error) {
	clean, err := sanitizeKey(key)
	if err != nil {
		return core.Info{}, err
	}
	path := filepath.Join(a.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return core.Info{}, err
	}
	f, err := os.Create(path)
	if err != nil {
		return core.Info{}, err
	}
	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return core.Info{}, err
	}
	st, err := os.Stat(path)
	if err != nil {
		return core.Info{}, err
	}
	return core.Info{Key: clean, Size: size, ContentType: contentType, LastModified: st.ModTime().UTC()}, nil
}

// Get opens a snapshot object for reading.
func (a *Archive) Get(_ context.Context, key string) (core.Info, io.ReadCloser, error) {
	clean, err := sanitizeKey(key)
	if err != nil {
		return core.Info{}, nil, err
	}
	path := filepath.Join(a.root, filepath.FromSlash(clean))
	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return core.Info{}, nil, core.ErrNotFound
		}
		return core.Info{}, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return core.Info{}, nil, err
	}
	info := core.Info{Key: clean, Size: st.Size(), LastModified: st.ModTime().UTC()}
	return info, f, nil
}

// List enumerates snapshot objects under prefix, sorted by key.
func (a *Archive) List(_ context.Context, prefix string) ([]core.Info, error) {
	var out []core.Info
	err := filepath.WalkDir(a.root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(a.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			return nil
		}
		st, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, core.Info{Key: key, Size: st.Size(), LastModified: st.ModTime().UTC()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Delete removes a snapshot object; deleting an absent key is an error.
func (a *Archive) Delete(_ context.Context, key string) error {
	clean, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	path := filepath.Join(a.root, filepath.FromSlash(clean))
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return core.ErrNotFound
		}
		return err
	}
	return nil
}
