package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
)

// MemoryTransferImageStore keeps images in process memory.
// It backs the "memory" storage driver used in development and tests.
type MemoryTransferImageStore struct {
	keys    keyspace
	maxSize int64

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryTransferImageStore creates an empty in-memory store.
// maxSize <= 0 disables the size check.
func NewMemoryTransferImageStore(stagingPrefix, permanentPrefix string, maxSize int64) *MemoryTransferImageStore {
	return &MemoryTransferImageStore{
		keys:    newKeyspace(stagingPrefix, permanentPrefix),
		maxSize: maxSize,
		objects: make(map[string][]byte),
	}
}

// Stage stores the upload under a new staging key
func (s *MemoryTransferImageStore) Stage(_ context.Context, filename, contentType string, body io.Reader) (string, error) {
	key, err := s.keys.stagedKey(filename, contentType)
	if err != nil {
		return "", err
	}
	data, err := readLimited(body, s.maxSize)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
	return key, nil
}

// Promote moves a staged image under the order's permanent prefix.
// Keys outside the staging prefix are already permanent and returned unchanged.
func (s *MemoryTransferImageStore) Promote(_ context.Context, stagedKey string, orderID uuid.UUID) (string, error) {
	if !s.keys.isStaged(stagedKey) {
		return stagedKey, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[stagedKey]
	if !ok {
		return "", errStagedImageMissing(stagedKey)
	}
	dest := s.keys.permanentKey(stagedKey, orderID)
	s.objects[dest] = data
	delete(s.objects, stagedKey)
	return dest, nil
}

// Delete removes an image
func (s *MemoryTransferImageStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// Get returns a copy of the stored bytes
func (s *MemoryTransferImageStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, false
	}
	return bytes.Clone(data), true
}

func readLimited(body io.Reader, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		return io.ReadAll(body)
	}
	data, err := io.ReadAll(io.LimitReader(body, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read transfer image: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, errImageTooLarge(maxSize)
	}
	return data, nil
}
