package reccache

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// MemoryStore keeps entries for the life of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]json.RawMessage)}
}

func (m *MemoryStore) Get(_ context.Context, entityID string) ([]json.RawMessage, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records, ok := m.entries[entityID]
	if !ok {
		return nil, false, nil
	}
	return cloneRecords(records), true, nil
}

func (m *MemoryStore) Put(_ context.Context, entityID string, records []json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entityID] = cloneRecords(records)
	return nil
}

func (m *MemoryStore) Keys(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.entries))
	for key := range m.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStore) Delete(_ context.Context, entityID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[entityID]
	delete(m.entries, entityID)
	return ok, nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string][]json.RawMessage)
	return nil
}

func (m *MemoryStore) Location() string { return "memory" }

func (m *MemoryStore) Close() error { return nil }
