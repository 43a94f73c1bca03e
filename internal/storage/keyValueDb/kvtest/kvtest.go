// Package kvtest holds the behaviour every keyValueDb backend must share.
package kvtest

import (
	"context"
	"testing"

	"github.com/LeJamon/goAMM/internal/storage/keyValueDb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises db against the keyValueDb contract. db must start empty.
func Run(t *testing.T, db keyValueDb.DB) {
	ctx := context.Background()

	t.Run("Write and Read", func(t *testing.T) {
		require.NoError(t, db.Write(ctx, []byte("test-key"), []byte("test-value")))

		got, err := db.Read(ctx, []byte("test-key"))
		require.NoError(t, err)
		assert.Equal(t, "test-value", string(got))
	})

	t.Run("Read missing", func(t *testing.T) {
		_, err := db.Read(ctx, []byte("missing"))
		assert.ErrorIs(t, err, keyValueDb.ErrKeyNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, db.Delete(ctx, []byte("test-key")))

		_, err := db.Read(ctx, []byte("test-key"))
		assert.ErrorIs(t, err, keyValueDb.ErrKeyNotFound)
	})

	t.Run("Batch Operations", func(t *testing.T) {
		ops := []keyValueDb.BatchOperation{
			{Type: keyValueDb.BatchPut, Key: []byte("key1"), Value: []byte("value1")},
			{Type: keyValueDb.BatchPut, Key: []byte("key2"), Value: []byte("value2")},
			{Type: keyValueDb.BatchDelete, Key: []byte("key1")},
		}
		require.NoError(t, db.Batch(ctx, ops))

		_, err := db.Read(ctx, []byte("key1"))
		assert.ErrorIs(t, err, keyValueDb.ErrKeyNotFound)

		value, err := db.Read(ctx, []byte("key2"))
		require.NoError(t, err)
		assert.Equal(t, "value2", string(value))

		require.NoError(t, db.Delete(ctx, []byte("key2")))
	})

	t.Run("Iterator", func(t *testing.T) {
		testData := map[string]string{
			"a": "value-a",
			"b": "value-b",
			"c": "value-c",
			"d": "value-d",
		}
		for k, v := range testData {
			require.NoError(t, db.Write(ctx, []byte(k), []byte(v)))
		}

		iter, err := db.Iterator(ctx, []byte("a"), []byte("d"))
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, iter.Close())
		}()

		var keys []string
		for iter.Next() {
			key := string(iter.Key())
			assert.Equal(t, testData[key], string(iter.Value()))
			keys = append(keys, key)
		}
		require.NoError(t, iter.Error())
		assert.Equal(t, []string{"a", "b", "c"}, keys)
	})
}
