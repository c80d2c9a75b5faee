// Package cache provides run-scoped key/value stores shared by the
// research resolvers. Stores are safe for concurrent use and are cleared
// explicitly when the orchestrator shuts down; nothing persists across runs.
package cache

import (
	"strings"
	"sync"
)

// Store maps normalized lookup keys to resolved values.
type Store[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
}

// New creates an empty Store.
func New[V any]() *Store[V] {
	return &Store[V]{entries: make(map[string]V)}
}

// NormalizeKey lower-cases a lookup term and collapses internal
// whitespace so that "Karnak  Temple" and "karnak temple" share an entry.
func NormalizeKey(key string) string {
	return strings.Join(strings.Fields(strings.ToLower(key)), " ")
}

// Get returns the cached value for key and whether it was present.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[NormalizeKey(key)]
	return v, ok
}

// Put stores value under the normalized key, overwriting any prior entry.
func (s *Store[V]) Put(key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[NormalizeKey(key)] = value
}

// Len reports the number of cached entries.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear drops every entry. Called at run end.
func (s *Store[V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]V)
}
