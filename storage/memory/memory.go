// Package memory provides a thread-safe in-memory implementation of storage.Store.
package memory

import (
	"fmt"
	"sync"

	"github.com/salapa/vaultd/storage"
)

// Store is a thread-safe in-memory implementation of storage.Store.
// Suitable for testing, demos, and single-process use cases.
type Store struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
	keys map[string][]string // preserves insertion order per kind
}

var _ storage.Store = (*Store)(nil)

// NewStore creates a new empty in-memory Store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]map[string][]byte),
		keys: make(map[string][]string),
	}
}

func (s *Store) Put(kind, id string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLocked(kind, id, data)
	return nil
}

func (s *Store) Create(kind, id string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[kind][id]; ok {
		return fmt.Errorf("%s/%s: %w", kind, id, storage.ErrExists)
	}
	s.putLocked(kind, id, data)
	return nil
}

func (s *Store) putLocked(kind, id string, data []byte) {
	if _, ok := s.data[kind]; !ok {
		s.data[kind] = make(map[string][]byte)
	}
	if _, exists := s.data[kind][id]; !exists {
		s.keys[kind] = append(s.keys[kind], id)
	}
	s.data[kind][id] = append([]byte(nil), data...)
}

func (s *Store) Get(kind, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[kind][id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", kind, id, storage.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (s *Store) Delete(kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[kind][id]; !ok {
		return fmt.Errorf("%s/%s: %w", kind, id, storage.ErrNotFound)
	}
	delete(s.data[kind], id)
	ids := s.keys[kind]
	for i, k := range ids {
		if k == id {
			s.keys[kind] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// Close is a no-op; the store holds no external resources.
func (s *Store) Close() error {
	return nil
}

func (s *Store) List(kind string) ([]storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.keys[kind]
	records := make([]storage.Record, 0, len(ids))
	for _, id := range ids {
		records = append(records, storage.Record{
			ID:   id,
			Data: append([]byte(nil), s.data[kind][id]...),
		})
	}
	return records, nil
}
