package storage

import (
	"context"
	"sync"
)

// Memory keeps documents in process; used for tests and the "memory" driver.
type Memory struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{docs: map[string][]byte{}}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.docs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.docs[key] = append([]byte(nil), value...)
	m.mu.Unlock()
	return nil
}

func (m *Memory) PutMany(_ context.Context, entries []Entry) error {
	m.mu.Lock()
	for _, e := range entries {
		m.docs[e.Key] = append([]byte(nil), e.Value...)
	}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.docs, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }
