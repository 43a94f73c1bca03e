package keylet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPairIndexIsDirectionIndependent(t *testing.T) {
	assert.Equal(t, PairIndex(1, 2), PairIndex(2, 1))
	assert.NotEqual(t, PairIndex(1, 2), PairIndex(1, 3))
}

func TestKeyletsAreDistinct(t *testing.T) {
	var acct [20]byte
	acct[0] = 7

	keys := []Keylet{
		Pool(1),
		Reserves(1),
		KLast(1),
		BatchPool(1),
		BatchReserve(1, 1),
		Balance(1, acct),
		Supply(1),
		BatchBalance(1, 1, acct),
		BatchSupply(1, 1),
		Counter("pool"),
		FeeTo(),
		LiquidityID('a', 1),
		LiquidityID('c', 1),
	}

	seen := make(map[[32]byte]Type)
	for _, k := range keys {
		prev, dup := seen[k.Key]
		assert.False(t, dup, "%s collides with %s", k.Type, prev)
		seen[k.Key] = k.Type
	}
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "Pool", TypePool.String())
	assert.Equal(t, "Unknown", Type(999).String())
}

func TestPoolRange(t *testing.T) {
	r := PoolRange()

	id, ok := r.ID(Pool(7).Key)
	assert.True(t, ok)
	assert.Equal(t, uint32(7), id)

	_, ok = r.ID(BatchPool(7).Key)
	assert.False(t, ok)
	_, ok = r.ID(Reserves(7).Key)
	assert.False(t, ok)

	k1, k2 := Pool(1).Key, Pool(2).Key
	assert.Negative(t, bytes.Compare(k1[:], k2[:]))
	k255, k256 := Pool(255).Key, Pool(256).Key
	assert.Negative(t, bytes.Compare(k255[:], k256[:]))
	for _, id := range []uint32{0, 1, 1 << 31, ^uint32(0)} {
		k := Pool(id).Key
		assert.True(t, bytes.Compare(k[:], r.Start[:]) >= 0)
		assert.Negative(t, bytes.Compare(k[:], r.End[:]))
	}

	b := BatchPoolRange()
	id, ok = b.ID(BatchPool(3).Key)
	assert.True(t, ok)
	assert.Equal(t, uint32(3), id)
}
