package repository

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process gateway. It is the default backend for tests and
// local runs, and supports injecting failures.
type Memory struct {
	mu     sync.RWMutex
	data   map[string][]byte
	fail   error
	writes int
}

// NewMemory creates an empty in-memory gateway.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// FailWith makes every later call return err until called with nil.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	m.fail = err
	m.mu.Unlock()
}

// Writes returns the number of successful writes.
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

func (m *Memory) Write(_ context.Context, entries map[string][]byte) error {
	defer observe(BackendMemory, "write", time.Now())
	for k := range entries {
		if k == "" {
			return ErrInvalidKey
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return backendErr(BackendMemory, "write", m.fail)
	}
	for k, v := range entries {
		m.data[k] = copyBytes(v)
	}
	m.writes++
	return nil
}

func (m *Memory) Read(_ context.Context, keys []string) (map[string][]byte, error) {
	defer observe(BackendMemory, "read", time.Now())
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.fail != nil {
		return nil, backendErr(BackendMemory, "read", m.fail)
	}
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := m.data[k]; ok {
			out[k] = copyBytes(v)
		}
	}
	return out, nil
}

func (m *Memory) Delete(_ context.Context, keys []string) error {
	defer observe(BackendMemory, "delete", time.Now())
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return backendErr(BackendMemory, "delete", m.fail)
	}
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}
