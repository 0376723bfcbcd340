package tokenstore

import (
	"context"
	"sync"

	"github.com/skillsenselab/authbridge/identity"
)

// MemoryStore is an in-memory Store for testing and ephemeral sessions.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Record
}

// NewMemoryStore creates an empty in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Record)}
}

// Load retrieves a provider's record. Returns (nil, nil) if absent.
func (s *MemoryStore) Load(_ context.Context, p identity.Provider) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.items[Key(p)]
	if !ok {
		return nil, nil
	}
	out := rec
	return &out, nil
}

// Save persists a provider's record.
func (s *MemoryStore) Save(_ context.Context, p identity.Provider, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[Key(p)] = *rec
	return nil
}

// Delete removes a provider's record.
func (s *MemoryStore) Delete(_ context.Context, p identity.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, Key(p))
	return nil
}

// Len returns the number of stored records. Useful for test assertions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// compile-time interface check
var _ Store = (*MemoryStore)(nil)
