package store

import (
	"context"
	"sync"
)

// MemoryStore is a process local store, values do not survive restarts
type MemoryStore struct {
	mu     sync.Mutex
	prefix string
	values map[string]string
}

var _ CounterStore = (*MemoryStore)(nil)

func NewMemoryStore(prefix string) *MemoryStore {
	return &MemoryStore{
		prefix: prefix,
		values: make(map[string]string),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[s.prefix+key]
	return value, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[s.prefix+key] = value
	return nil
}

func (s *MemoryStore) Ping(_ context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
