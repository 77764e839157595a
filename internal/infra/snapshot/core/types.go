// Package core defines the archive abstraction that snapshot backends
// implement.
package core

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver identifies a concrete snapshot archive implementation.
type Driver string

const (
	// DriverFilesystem represents the local filesystem implementation.
	DriverFilesystem Driver = "fs" // local filesystem (default, dev)
	// DriverS3 represents an S3 / MinIO compatible implementation.
	DriverS3 Driver = "s3" // S3 / MinIO compatible
	// DriverMemory represents an in-memory implementation typically used in tests.
	DriverMemory Driver = "memory" // in-memory (tests)
)

// Info describes an archived snapshot object.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size_bytes"`
	ContentType  string    `json:"content_type,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Archive stores serialized state-tree snapshots. Keys map directly to
// backend object keys.
type Archive interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Delete(ctx context.Context, key string) error
	Driver() Driver
}

// ErrNotFound is returned when a snapshot key does not exist.
var ErrNotFound = errors.New("snapshot not found")
