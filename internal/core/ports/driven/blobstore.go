package driven

import "context"

// BlobStore holds extracted text blobs addressable by an opaque handle.
// Content is treated as UTF-8 text by readers.
type BlobStore interface {
	// Put stores data and returns its handle.
	Put(ctx context.Context, data []byte) (string, error)

	// Fetch returns the bytes for handle, or domain.ErrNotFound.
	Fetch(ctx context.Context, handle string) ([]byte, error)

	// Delete removes the blob. Deleting a missing handle is not an error.
	Delete(ctx context.Context, handle string) error
}
