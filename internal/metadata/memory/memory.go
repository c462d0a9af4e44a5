// Package memory is an in-memory metadata store for development and tests.
package memory

import (
	"fmt"
	"sync"

	"ragh/internal/domain"
)

// Store keeps passage metadata in a map guarded by a RWMutex.
type Store struct {
	mu    sync.RWMutex
	metas map[string]domain.PassageMeta
}

func NewStore() *Store {
	return &Store{metas: make(map[string]domain.PassageMeta)}
}

// Put stores meta under id, overwriting any previous record.
func (s *Store) Put(id string, meta domain.PassageMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metas[id] = meta
	return nil
}

// Get returns the metadata for id or ErrNotFound.
func (s *Store) Get(id string) (domain.PassageMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta, ok := s.metas[id]
	if !ok {
		return domain.PassageMeta{}, fmt.Errorf("%w: passage %q", domain.ErrNotFound, id)
	}
	return meta, nil
}

// GetMany resolves the given ids, omitting missing ones.
func (s *Store) GetMany(ids []string) (map[string]domain.PassageMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.PassageMeta, len(ids))
	for _, id := range ids {
		if meta, ok := s.metas[id]; ok {
			out[id] = meta
		}
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }
