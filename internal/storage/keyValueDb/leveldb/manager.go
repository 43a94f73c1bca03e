package leveldb

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/LeJamon/goAMM/internal/storage/keyValueDb"
	"github.com/syndtr/goleveldb/leveldb"
)

type Manager struct {
	dbs  map[string]*leveldb.DB
	path string
	mu   sync.Mutex
}

func NewManager(path string) *Manager {
	return &Manager{
		dbs:  make(map[string]*leveldb.DB),
		path: path,
	}
}

func (m *Manager) OpenDB(name string) (keyValueDb.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if db, exists := m.dbs[name]; exists {
		return NewDB(db), nil
	}

	db, err := leveldb.OpenFile(filepath.Join(m.path, name+".ldb"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyValueDb %s: %w", name, err)
	}

	m.dbs[name] = db
	return NewDB(db), nil
}

func (m *Manager) CloseDB(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	db, exists := m.dbs[name]
	if !exists {
		return fmt.Errorf("%w: %s", keyValueDb.ErrNamespaceNotFound, name)
	}
	if err := db.Close(); err != nil {
		return err
	}
	delete(m.dbs, name)
	return nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for name, db := range m.dbs {
		if err := db.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close keyValueDb %s: %w", name, err)
		}
		delete(m.dbs, name)
	}
	return lastErr
}
