package storage

import (
	"context"
	"maps"
	"sync"
)

// Memory is an in-memory Backend, its zero value is ready to use.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemory creates a memory backend holding a copy of values.
func NewMemory(values map[string]string) *Memory {
	return &Memory{values: maps.Clone(values)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Snapshot returns a copy of all stored values.
func (m *Memory) Snapshot() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.values)
}
