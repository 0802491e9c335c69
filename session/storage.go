package session

import (
	"context"
	"sync"
)

// Storage is the persistent key/value backing of a [Store]. Implementations
// must be safe for concurrent use.
type Storage interface {
	// Get returns the values present for keys. Missing keys are absent from
	// the result.
	Get(ctx context.Context, keys ...string) (map[string]string, error)
	// Set writes all values or none of them.
	Set(ctx context.Context, values map[string]string) error
	// Remove deletes keys. Removing an absent key is not an error.
	Remove(ctx context.Context, keys ...string) error
}

// MemoryStorage keeps values in process memory.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

// Get implements [Storage].
func (m *MemoryStorage) Get(_ context.Context, keys ...string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := m.values[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

// Set implements [Storage].
func (m *MemoryStorage) Set(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

// Remove implements [Storage].
func (m *MemoryStorage) Remove(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}
