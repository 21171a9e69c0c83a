package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/studyhall/internal/core/domain"
	"github.com/custodia-labs/studyhall/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore is an in-memory implementation of driven.BlobStore.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewBlobStore creates a new in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{
		blobs: make(map[string][]byte),
	}
}

// Put stores a copy of data under a new handle.
func (s *BlobStore) Put(_ context.Context, data []byte) (string, error) {
	handle := uuid.New().String()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[handle] = append([]byte(nil), data...)
	return handle, nil
}

// PutWithHandle stores data under a caller-chosen handle.
func (s *BlobStore) PutWithHandle(handle string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[handle] = append([]byte(nil), data...)
}

// Fetch returns a copy of the blob.
func (s *BlobStore) Fetch(_ context.Context, handle string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[handle]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Delete removes a blob.
func (s *BlobStore) Delete(_ context.Context, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, handle)
	return nil
}
