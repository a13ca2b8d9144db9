package store

import (
	"context"
	"sync"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps values in process memory. It is the default driver and
// matches the no-persistence behavior of a freshly deployed backend.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func scopedKey(project, key string) string {
	return project + "\x00" + key
}

func (s *MemoryStore) Get(ctx context.Context, project, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[scopedKey(project, key)]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) Set(ctx context.Context, project, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[scopedKey(project, key)] = value
	return nil
}

func (s *MemoryStore) Close() error { return nil }
