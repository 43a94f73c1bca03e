// Package memory is an in-process keyValueDb backend for tests and
// throwaway engines.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/LeJamon/goAMM/internal/storage/keyValueDb"
)

// DB keeps every entry in a map guarded by an RWMutex.
type DB struct {
	data     map[string][]byte
	mu       sync.RWMutex
	isClosed bool
}

func NewDB() *DB {
	return &DB{
		data: make(map[string][]byte),
	}
}

func (m *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.isClosed {
		return nil, keyValueDb.ErrDBClosed
	}
	value, ok := m.data[string(key)]
	if !ok {
		return nil, keyValueDb.ErrKeyNotFound
	}
	return clone(value), nil
}

func (m *DB) Write(ctx context.Context, key []byte, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.isClosed {
		return keyValueDb.ErrDBClosed
	}
	m.data[string(key)] = clone(value)
	return nil
}

func (m *DB) Delete(ctx context.Context, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.isClosed {
		return keyValueDb.ErrDBClosed
	}
	delete(m.data, string(key))
	return nil
}

func (m *DB) Batch(ctx context.Context, ops []keyValueDb.BatchOperation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.isClosed {
		return keyValueDb.ErrDBClosed
	}
	for _, op := range ops {
		if op.Type != keyValueDb.BatchPut && op.Type != keyValueDb.BatchDelete {
			return fmt.Errorf("%w: %d", keyValueDb.ErrUnknownBatchOp, op.Type)
		}
	}
	for _, op := range ops {
		switch op.Type {
		case keyValueDb.BatchPut:
			m.data[string(op.Key)] = clone(op.Value)
		case keyValueDb.BatchDelete:
			delete(m.data, string(op.Key))
		}
	}
	return nil
}

// Close marks the database closed; later calls fail with ErrDBClosed.
func (m *DB) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isClosed = true
	return nil
}

// Iterator snapshots the matching entries in key order.
type Iterator struct {
	keys     [][]byte
	values   [][]byte
	position int
}

func (m *DB) Iterator(ctx context.Context, start, end []byte) (keyValueDb.Iterator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.isClosed {
		return nil, keyValueDb.ErrDBClosed
	}

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		if keyValueDb.InRange([]byte(k), start, end) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	it := &Iterator{position: -1}
	for _, k := range keys {
		it.keys = append(it.keys, []byte(k))
		it.values = append(it.values, clone(m.data[k]))
	}
	return it, nil
}

func (it *Iterator) Next() bool {
	it.position++
	return it.position < len(it.keys)
}

func (it *Iterator) Key() []byte {
	if it.position >= 0 && it.position < len(it.keys) {
		return it.keys[it.position]
	}
	return nil
}

func (it *Iterator) Value() []byte {
	if it.position >= 0 && it.position < len(it.values) {
		return it.values[it.position]
	}
	return nil
}

func (it *Iterator) Error() error {
	return nil
}

func (it *Iterator) Close() error {
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
