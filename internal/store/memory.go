package store

import (
	"context"
	"sync"
)

// Memory is an in-process store with the same Load/Save/LoadBackup
// contract as Store. Values are copied on the way in and out.
type Memory struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	backups map[string][]byte

	// FailSave, when set, is returned by every Save without writing.
	FailSave error
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		blobs:   make(map[string][]byte),
		backups: make(map[string][]byte),
	}
}

// Load returns a copy of the value stored under key.
func (m *Memory) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return clone(data), true, nil
}

// LoadBackup returns a copy of the value key held before its last Save.
func (m *Memory) LoadBackup(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.backups[key]
	if !ok {
		return nil, false, nil
	}
	return clone(data), true, nil
}

// Save stores a copy of data under key.
func (m *Memory) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSave != nil {
		return m.FailSave
	}
	if prev, ok := m.blobs[key]; ok {
		m.backups[key] = prev
	}
	m.blobs[key] = clone(data)
	return nil
}

// Delete removes key and its backup.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	delete(m.backups, key)
	return nil
}

// Put writes data under key without touching the backup. Tests use it
// to plant corrupt snapshots.
func (m *Memory) Put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = clone(data)
}

func clone(data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	return out
}
