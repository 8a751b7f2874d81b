package assets

import (
	"fmt"
	"sync"
)

// MemoryStore keeps assets in a map. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string][]byte
	names map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:  make(map[string][]byte),
		names: make(map[string]string),
	}
}

// Put copies data under a fresh id.
func (s *MemoryStore) Put(data []byte, name string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyData
	}

	id := NewID()
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	s.data[id] = buf
	s.names[id] = name
	s.mu.Unlock()
	return id, nil
}

// Get returns the bytes stored for id.
func (s *MemoryStore) Get(id string) ([]byte, error) {
	s.mu.RLock()
	data, ok := s.data[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return data, nil
}

// Name returns the suggested name recorded for id.
func (s *MemoryStore) Name(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.names[id]
}

// Len returns the number of stored assets.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
