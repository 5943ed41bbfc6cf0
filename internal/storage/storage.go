// Package storage provides object storage for encoded partitions and
// their metadata sidecars.
package storage

import (
	"context"
	"errors"
)

// Common errors for storage operations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrUploadFailed   = errors.New("upload failed")
	ErrDownloadFailed = errors.New("download failed")
	ErrDeleteFailed   = errors.New("delete failed")
)

// ObjectStorage abstracts the object store partitions live in.
// Implementations include S3 and the local filesystem. Partitions are
// immutable buffers, so the surface is byte-oriented: writers upload
// the encoded buffer they just built, and the query path downloads
// whole objects for processing.
type ObjectStorage interface {
	// Upload writes data to objectPath, replacing any existing object.
	Upload(ctx context.Context, objectPath string, data []byte) error

	// Download returns the full content of objectPath. Missing objects
	// return ErrObjectNotFound.
	Download(ctx context.Context, objectPath string) ([]byte, error)

	// Delete removes an object. Deleting a missing object is not an
	// error.
	Delete(ctx context.Context, objectPath string) error

	// Exists reports whether an object is present.
	Exists(ctx context.Context, objectPath string) (bool, error)

	// ListObjects returns all object paths under the given prefix.
	ListObjects(ctx context.Context, prefix string) ([]string, error)
}
