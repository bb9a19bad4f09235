// Package storage persists taskdeck state as whole JSON snapshots.
//
// A Blob is a flat key/value byte store. Four backends implement it: a data
// directory of JSON files (the default), an in-process map, a SQL table
// (SQLite or PostgreSQL) and an S3 bucket. The Adapter sits on top of a Blob
// and owns the snapshot format: seeding on first read, dropping corrupt
// payloads, and overwriting the whole state on every write.
package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Blob.Get when no value is stored under a key.
var ErrNotFound = errors.New("blob not found")

// Blob is a key/value byte store.
type Blob interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put replaces the value for key.
	Put(ctx context.Context, key string, data []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

// MemoryBlob is a map-backed Blob. Errors can be injected per operation.
type MemoryBlob struct {
	mu     sync.Mutex
	values map[string][]byte
	getErr error
	putErr error
	puts   int
}

// NewMemoryBlob creates an empty MemoryBlob.
func NewMemoryBlob() *MemoryBlob {
	return &MemoryBlob{values: make(map[string][]byte)}
}

// Get returns a copy of the stored value.
func (m *MemoryBlob) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Put stores a copy of data.
func (m *MemoryBlob) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.putErr != nil {
		return m.putErr
	}
	m.values[key] = append([]byte(nil), data...)
	m.puts++
	return nil
}

// Delete removes key.
func (m *MemoryBlob) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Close is a no-op.
func (m *MemoryBlob) Close() error { return nil }

// FailGets makes every Get return err until called with nil.
func (m *MemoryBlob) FailGets(err error) {
	m.mu.Lock()
	m.getErr = err
	m.mu.Unlock()
}

// FailPuts makes every Put return err until called with nil.
func (m *MemoryBlob) FailPuts(err error) {
	m.mu.Lock()
	m.putErr = err
	m.mu.Unlock()
}

// PutCount returns the number of successful Puts.
func (m *MemoryBlob) PutCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

// Raw returns the stored bytes for key without error injection.
func (m *MemoryBlob) Raw(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}
