package state

import (
	"bytes"
	"context"
	"testing"

	"github.com/LeJamon/goAMM/internal/core/ledger/keylet"
	"github.com/LeJamon/goAMM/internal/storage/keyValueDb"
	"github.com/LeJamon/goAMM/internal/storage/keyValueDb/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, opts ...StoreOption) (*Store, *memory.DB) {
	t.Helper()
	db := memory.NewDB()
	s, err := NewStore(db, opts...)
	require.NoError(t, err)
	return s, db
}

func TestTable(t *testing.T) {
	store, _ := newStore(t)
	base := store.View(context.Background())
	require.NoError(t, base.Insert(keylet.Pool(1), []byte("one")))

	t.Run("reads fall through to base", func(t *testing.T) {
		tbl := NewTable(base)
		got, err := tbl.Read(keylet.Pool(1))
		require.NoError(t, err)
		assert.Equal(t, []byte("one"), got)

		got, err = tbl.Read(keylet.Pool(2))
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("insert over live entry fails", func(t *testing.T) {
		tbl := NewTable(base)
		assert.ErrorIs(t, tbl.Insert(keylet.Pool(1), []byte("x")), ErrEntryExists)
	})

	t.Run("update missing entry fails", func(t *testing.T) {
		tbl := NewTable(base)
		assert.ErrorIs(t, tbl.Update(keylet.Pool(9), []byte("x")), ErrEntryNotFound)
	})

	t.Run("insert then erase leaves no change", func(t *testing.T) {
		tbl := NewTable(base)
		require.NoError(t, tbl.Insert(keylet.Pool(3), []byte("three")))
		require.NoError(t, tbl.Erase(keylet.Pool(3)))
		assert.Empty(t, tbl.Changes())
	})

	t.Run("erase then insert becomes modify", func(t *testing.T) {
		tbl := NewTable(base)
		require.NoError(t, tbl.Erase(keylet.Pool(1)))
		exists, err := tbl.Exists(keylet.Pool(1))
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, tbl.Insert(keylet.Pool(1), []byte("uno")))
		changes := tbl.Changes()
		require.Len(t, changes, 1)
		assert.Equal(t, ActionModify, changes[0].Action)
	})

	t.Run("modify back to original is dropped", func(t *testing.T) {
		tbl := NewTable(base)
		require.NoError(t, tbl.Update(keylet.Pool(1), []byte("changed")))
		require.NoError(t, tbl.Update(keylet.Pool(1), []byte("one")))
		assert.Empty(t, tbl.Changes())
	})

	t.Run("discard leaves base untouched", func(t *testing.T) {
		tbl := NewTable(base)
		require.NoError(t, tbl.Update(keylet.Pool(1), []byte("changed")))
		require.NoError(t, tbl.Insert(keylet.Pool(4), []byte("four")))
		tbl.Discard()

		got, err := base.Read(keylet.Pool(1))
		require.NoError(t, err)
		assert.Equal(t, []byte("one"), got)
		exists, err := base.Exists(keylet.Pool(4))
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestTableApply(t *testing.T) {
	store, db := newStore(t)
	ctx := context.Background()
	base := store.View(ctx)
	require.NoError(t, base.Insert(keylet.Pool(1), []byte("one")))
	require.NoError(t, base.Insert(keylet.Pool(2), []byte("two")))

	tbl := NewTable(base)
	require.NoError(t, tbl.Update(keylet.Pool(1), []byte("uno")))
	require.NoError(t, tbl.Erase(keylet.Pool(2)))
	require.NoError(t, tbl.Insert(keylet.Pool(3), []byte("tres")))

	n, err := tbl.Apply()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Empty(t, tbl.Changes())

	// A fresh store over the same db sees the committed bytes
	fresh, err := NewStore(db)
	require.NoError(t, err)
	view := fresh.View(ctx)

	got, err := view.Read(keylet.Pool(1))
	require.NoError(t, err)
	assert.Equal(t, []byte("uno"), got)

	got, err = view.Read(keylet.Pool(2))
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = view.Read(keylet.Pool(3))
	require.NoError(t, err)
	assert.Equal(t, []byte("tres"), got)
}

func TestNestedTable(t *testing.T) {
	store, _ := newStore(t)
	outer := NewTable(store.View(context.Background()))
	require.NoError(t, outer.Insert(keylet.Pool(1), []byte("one")))

	inner := NewTable(outer)
	require.NoError(t, inner.Update(keylet.Pool(1), []byte("uno")))
	_, err := inner.Apply()
	require.NoError(t, err)

	got, err := outer.Read(keylet.Pool(1))
	require.NoError(t, err)
	assert.Equal(t, []byte("uno"), got)

	changes := outer.Changes()
	require.Len(t, changes, 1)
	assert.Equal(t, ActionInsert, changes[0].Action)
}

func TestStoreCompression(t *testing.T) {
	store, db := newStore(t, WithCompression("lz4"), WithCacheSize(8))
	ctx := context.Background()

	value := bytes.Repeat([]byte("pool"), 200)
	require.NoError(t, store.View(ctx).Insert(keylet.Reserves(1), value))

	k := keylet.Reserves(1)
	raw, err := db.Read(ctx, k.Key[:])
	require.NoError(t, err)
	assert.Less(t, len(raw), len(value))

	fresh, err := NewStore(db, WithCompression("none"))
	require.NoError(t, err)
	got, err := fresh.View(ctx).Read(k)
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestStoreUnknownCompression(t *testing.T) {
	_, err := NewStore(memory.NewDB(), WithCompression("brotli"))
	assert.Error(t, err)
}

func TestStoreCommitFailure(t *testing.T) {
	store, db := newStore(t)
	ctx := context.Background()
	require.NoError(t, db.Close())

	err := store.View(ctx).Commit([]Change{{Key: keylet.Pool(1).Key, Action: ActionInsert, Data: []byte("x")}})
	assert.ErrorIs(t, err, keyValueDb.ErrDBClosed)
}

func TestPut(t *testing.T) {
	store, _ := newStore(t)
	tbl := NewTable(store.View(context.Background()))

	require.NoError(t, Put(tbl, keylet.FeeTo(), []byte("a")))
	require.NoError(t, Put(tbl, keylet.FeeTo(), []byte("b")))

	got, err := tbl.Read(keylet.FeeTo())
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), got)
}

func TestScan(t *testing.T) {
	store, _ := newStore(t, WithCompression("lz4"))
	ctx := context.Background()
	base := store.View(ctx)
	for _, id := range []uint32{3, 1, 2} {
		require.NoError(t, base.Insert(keylet.Pool(id), []byte{byte(id)}))
	}
	require.NoError(t, base.Insert(keylet.BatchPool(1), []byte("batch")))
	require.NoError(t, base.Insert(keylet.Reserves(1), []byte("reserves")))

	r := keylet.PoolRange()
	collect := func(t *testing.T, s Scanner) []uint32 {
		t.Helper()
		var ids []uint32
		require.NoError(t, s.Scan(r.Start, r.End, func(key [32]byte, data []byte) error {
			id, ok := r.ID(key)
			require.True(t, ok)
			assert.Equal(t, []byte{byte(id)}, data)
			ids = append(ids, id)
			return nil
		}))
		return ids
	}

	assert.Equal(t, []uint32{1, 2, 3}, collect(t, base))

	t.Run("table overlays pending changes", func(t *testing.T) {
		tbl := NewTable(base)
		require.NoError(t, tbl.Erase(keylet.Pool(2)))
		require.NoError(t, tbl.Insert(keylet.Pool(4), []byte{4}))
		require.NoError(t, tbl.Update(keylet.Pool(1), []byte{1}))

		assert.Equal(t, []uint32{1, 3, 4}, collect(t, tbl))
		assert.Equal(t, []uint32{1, 2, 3}, collect(t, base))
	})

	t.Run("callback error stops the walk", func(t *testing.T) {
		calls := 0
		err := base.Scan(r.Start, r.End, func([32]byte, []byte) error {
			calls++
			return ErrEntryExists
		})
		assert.ErrorIs(t, err, ErrEntryExists)
		assert.Equal(t, 1, calls)
	})
}
