package main

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// BlobStore holds uploaded images for the lifetime of the process. Its refs
// are local handles, so loading them never touches the network.
type BlobStore struct {
	mu    sync.Mutex
	blobs map[uuid.UUID][]byte
	limit int
	used  int
}

// NewBlobStore returns a store that holds at most limit bytes in total.
func NewBlobStore(limit int) *BlobStore {
	return &BlobStore{
		blobs: make(map[uuid.UUID][]byte),
		limit: limit,
	}
}

func (s *BlobStore) Put(raw []byte) (SourceRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.used+len(raw) > s.limit {
		return "", fmt.Errorf("blob store full (%d of %d bytes used)", s.used, s.limit)
	}
	id := uuid.New()
	s.blobs[id] = raw
	s.used += len(raw)
	return blobRef(id), nil
}

func (s *BlobStore) Get(id uuid.UUID) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.blobs[id]
	return raw, ok
}

// Delete reports whether id was present.
func (s *BlobStore) Delete(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.blobs[id]
	if ok {
		delete(s.blobs, id)
		s.used -= len(raw)
	}
	return ok
}
