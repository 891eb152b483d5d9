// Package memory provides an in-process KV, used for tests and for running
// without persistence.
package memory

import (
	"context"
	"sync"
)

type Store struct {
	mu     sync.RWMutex
	values map[string]string
	writes int
}

func New() *Store {
	return &Store{values: make(map[string]string)}
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.writes++
	return nil
}

// Swap writes value only while key still holds old.
func (s *Store) Swap(_ context.Context, key, old string, oldFound bool, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, found := s.values[key]
	if found != oldFound || current != old {
		return false, nil
	}
	s.values[key] = value
	s.writes++
	return true, nil
}

// Writes returns how many times Set was called.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
