// Package storage defines the blob container abstraction backing file
// exchange. Containers hold named blobs; one container per third party.
package storage

import (
	"context"
	"io"
	"time"
)

// BlobInfo describes a stored blob without its content.
type BlobInfo struct {
	Name       string
	Size       int64
	ModifiedAt time.Time
	Tier       string
}

// BlobStore is the container-level storage contract. Put must be atomic
// with respect to its existence check so that concurrent uploads of the
// same name produce exactly one winner; the loser receives
// sentinel.ErrAlreadyUsed.
type BlobStore interface {
	// EnsureContainer creates the container if it does not exist yet.
	EnsureContainer(ctx context.Context, container string) error

	// ContainerExists reports whether the container has been created.
	ContainerExists(ctx context.Context, container string) (bool, error)

	// Containers lists container names with the given prefix, sorted.
	Containers(ctx context.Context, prefix string) ([]string, error)

	// ListBlobs lists blobs under the name prefix, sorted by name.
	ListBlobs(ctx context.Context, container, prefix string) ([]BlobInfo, error)

	// Put stores the blob. It fails with sentinel.ErrAlreadyUsed when a
	// blob of that name already exists, and sentinel.ErrNotFound when the
	// container does not exist.
	Put(ctx context.Context, container, name string, content io.Reader) (BlobInfo, error)

	// Get opens the blob for reading. The caller closes the reader.
	Get(ctx context.Context, container, name string) (io.ReadCloser, BlobInfo, error)

	// Delete removes the blob; sentinel.ErrNotFound when absent.
	Delete(ctx context.Context, container, name string) error

	// Exists reports whether the blob is present.
	Exists(ctx context.Context, container, name string) (bool, error)
}
