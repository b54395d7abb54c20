package cart

import (
	"context"
	"slices"
	"sync"
)

// Storage persists serialized carts under named slots.
type Storage interface {
	// Get returns the data stored in slot, or nil when the slot is empty.
	Get(ctx context.Context, slot string) ([]byte, error)

	// Set replaces the data stored in slot.
	Set(ctx context.Context, slot string, data []byte) error
}

// MemoryStorage keeps carts in process memory. Used when Redis is disabled
// and in tests.
type MemoryStorage struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{slots: make(map[string][]byte)}
}

func (m *MemoryStorage) Get(_ context.Context, slot string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.slots[slot]
	if !ok {
		return nil, nil
	}
	return slices.Clone(data), nil
}

func (m *MemoryStorage) Set(_ context.Context, slot string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = slices.Clone(data)
	return nil
}
