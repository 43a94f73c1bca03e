package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/LeJamon/goAMM/internal/core/ledger/keylet"
	"github.com/LeJamon/goAMM/internal/storage/compression"
	"github.com/LeJamon/goAMM/internal/storage/keyValueDb"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of decoded entries kept in memory.
const DefaultCacheSize = 4096

type cached struct {
	data    []byte
	present bool
}

// Store is the committed view over a keyValueDb. Values are framed by the
// configured compressor and decoded entries (including misses) are cached.
type Store struct {
	db    keyValueDb.DB
	cache *lru.Cache[[32]byte, cached]
	codec compression.Compressor
}

// StoreOption configures a Store.
type StoreOption func(*storeOptions)

type storeOptions struct {
	cacheSize  int
	compressor string
}

// WithCacheSize sets the read cache capacity.
func WithCacheSize(n int) StoreOption {
	return func(o *storeOptions) { o.cacheSize = n }
}

// WithCompression selects the value codec by name ("none" or "lz4").
func WithCompression(name string) StoreOption {
	return func(o *storeOptions) { o.compressor = name }
}

// NewStore wraps db.
func NewStore(db keyValueDb.DB, opts ...StoreOption) (*Store, error) {
	o := storeOptions{cacheSize: DefaultCacheSize, compressor: "none"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cacheSize <= 0 {
		o.cacheSize = DefaultCacheSize
	}

	codec, err := compression.Get(o.compressor)
	if err != nil {
		return nil, err
	}
	cache, err := lru.New[[32]byte, cached](o.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create state cache: %w", err)
	}

	return &Store{db: db, cache: cache, codec: codec}, nil
}

// View binds the store to ctx for the duration of one operation.
func (s *Store) View(ctx context.Context) *Snapshot {
	return &Snapshot{store: s, ctx: ctx}
}

func (s *Store) read(ctx context.Context, key [32]byte) ([]byte, error) {
	if c, ok := s.cache.Get(key); ok {
		if !c.present {
			return nil, nil
		}
		return c.data, nil
	}

	raw, err := s.db.Read(ctx, key[:])
	if errors.Is(err, keyValueDb.ErrKeyNotFound) {
		s.cache.Add(key, cached{})
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state entry: %w", err)
	}

	data, err := s.codec.Decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode state entry: %w", err)
	}
	s.cache.Add(key, cached{data: data, present: true})
	return data, nil
}

func (s *Store) commit(ctx context.Context, changes []Change) error {
	if len(changes) == 0 {
		return nil
	}

	ops := make([]keyValueDb.BatchOperation, 0, len(changes))
	for _, ch := range changes {
		key := ch.Key
		if ch.Action == ActionErase {
			ops = append(ops, keyValueDb.BatchOperation{Type: keyValueDb.BatchDelete, Key: key[:]})
			continue
		}
		framed, err := s.codec.Compress(ch.Data)
		if err != nil {
			return fmt.Errorf("failed to encode state entry: %w", err)
		}
		ops = append(ops, keyValueDb.BatchOperation{Type: keyValueDb.BatchPut, Key: key[:], Value: framed})
	}

	if err := s.db.Batch(ctx, ops); err != nil {
		for _, ch := range changes {
			s.cache.Remove(ch.Key)
		}
		return fmt.Errorf("failed to commit state: %w", err)
	}

	for _, ch := range changes {
		if ch.Action == ActionErase {
			s.cache.Add(ch.Key, cached{})
		} else {
			s.cache.Add(ch.Key, cached{data: ch.Data, present: true})
		}
	}
	return nil
}

func (s *Store) scan(ctx context.Context, start, end [32]byte, fn func(key [32]byte, data []byte) error) error {
	it, err := s.db.Iterator(ctx, start[:], end[:])
	if err != nil {
		return fmt.Errorf("failed to open state iterator: %w", err)
	}
	defer it.Close()

	for it.Next() {
		raw := it.Key()
		if len(raw) != 32 {
			continue
		}
		var key [32]byte
		copy(key[:], raw)

		data, err := s.codec.Decompress(it.Value())
		if err != nil {
			return fmt.Errorf("failed to decode state entry: %w", err)
		}
		if err := fn(key, data); err != nil {
			return err
		}
	}
	return it.Error()
}

// Snapshot is a Store bound to a context. It implements View and Committer.
type Snapshot struct {
	store *Store
	ctx   context.Context
}

func (v *Snapshot) Read(k keylet.Keylet) ([]byte, error) {
	return v.store.read(v.ctx, k.Key)
}

func (v *Snapshot) Exists(k keylet.Keylet) (bool, error) {
	data, err := v.store.read(v.ctx, k.Key)
	return data != nil, err
}

func (v *Snapshot) Insert(k keylet.Keylet, data []byte) error {
	exists, err := v.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("insert %s: %w", k.Type, ErrEntryExists)
	}
	return v.store.commit(v.ctx, []Change{{Key: k.Key, Action: ActionInsert, Data: data}})
}

func (v *Snapshot) Update(k keylet.Keylet, data []byte) error {
	exists, err := v.Exists(k)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("update %s: %w", k.Type, ErrEntryNotFound)
	}
	return v.store.commit(v.ctx, []Change{{Key: k.Key, Action: ActionModify, Data: data}})
}

func (v *Snapshot) Erase(k keylet.Keylet) error {
	exists, err := v.Exists(k)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("erase %s: %w", k.Type, ErrEntryNotFound)
	}
	return v.store.commit(v.ctx, []Change{{Key: k.Key, Action: ActionErase}})
}

// Scan walks committed entries in [start, end).
func (v *Snapshot) Scan(start, end [32]byte, fn func(key [32]byte, data []byte) error) error {
	return v.store.scan(v.ctx, start, end, fn)
}

// Commit writes the change set as one keyValueDb batch.
func (v *Snapshot) Commit(changes []Change) error {
	return v.store.commit(v.ctx, changes)
}
