package keylet

import (
	"encoding/binary"

	crypto "github.com/LeJamon/goAMM/internal/crypto/common"
)

// Type tags what kind of record lives under a key.
type Type uint16

const (
	TypePool Type = iota + 1
	TypePairIndex
	TypeReserves
	TypeKLast
	TypeCounter
	TypeFeeTo
	TypeBatchPool
	TypeBatchPairIndex
	TypeBatchReserve
	TypeBalance
	TypeSupply
	TypeBatchBalance
	TypeBatchSupply
	TypeLiquidityID
)

func (t Type) String() string {
	switch t {
	case TypePool:
		return "Pool"
	case TypePairIndex:
		return "PairIndex"
	case TypeReserves:
		return "Reserves"
	case TypeKLast:
		return "KLast"
	case TypeCounter:
		return "Counter"
	case TypeFeeTo:
		return "FeeTo"
	case TypeBatchPool:
		return "BatchPool"
	case TypeBatchPairIndex:
		return "BatchPairIndex"
	case TypeBatchReserve:
		return "BatchReserve"
	case TypeBalance:
		return "Balance"
	case TypeSupply:
		return "Supply"
	case TypeBatchBalance:
		return "BatchBalance"
	case TypeBatchSupply:
		return "BatchSupply"
	case TypeLiquidityID:
		return "LiquidityID"
	default:
		return "Unknown"
	}
}

// Space identifiers for keylet generation
const (
	spacePool           uint16 = 'P' // Pool definition
	spacePairIndex      uint16 = 'p' // Canonical asset pair -> pool id
	spaceReserves       uint16 = 'R' // Pool reserves
	spaceKLast          uint16 = 'k' // Protocol fee checkpoint
	spaceCounter        uint16 = 'c' // Id allocators
	spaceFeeTo          uint16 = 'f' // Protocol fee recipient (singleton)
	spaceBatchPool      uint16 = 'B' // Batch pool definition
	spaceBatchPairIndex uint16 = 'b' // (currency, collection) -> batch pool id
	spaceBatchReserve   uint16 = 'r' // Per token id currency reserve
	spaceBalance        uint16 = 'a' // Fungible balance
	spaceSupply         uint16 = 's' // Fungible total supply
	spaceBatchBalance   uint16 = 'm' // Multi-asset balance
	spaceBatchSupply    uint16 = 'n' // Multi-asset total supply
	spaceLiquidityID    uint16 = 'l' // Issued liquidity asset or collection id
)

// Keylet represents an addressable location in the engine state.
// It combines a type identifier with a 256-bit key.
type Keylet struct {
	Type Type
	Key  [32]byte
}

// indexHash computes a keylet key by hashing the space and provided data.
func indexHash(space uint16, data ...[]byte) [32]byte {
	spaceBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(spaceBytes, space)

	inputs := make([][]byte, 0, len(data)+1)
	inputs = append(inputs, spaceBytes)
	inputs = append(inputs, data...)

	return crypto.Sha512Half(inputs...)
}

func u32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func u64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// ordered builds a key that sorts by id within its space. The zero tail
// keeps it apart from hashed keys sharing the same leading bytes.
func ordered(space uint16, id uint32) [32]byte {
	var k [32]byte
	binary.BigEndian.PutUint16(k[0:2], space)
	binary.BigEndian.PutUint32(k[2:6], id)
	return k
}

// Range is the [Start, End) key span of an ordered keylet space.
type Range struct {
	Type  Type
	Start [32]byte
	End   [32]byte
	space uint16
}

func orderedRange(t Type, space uint16) Range {
	return Range{Type: t, Start: ordered(space, 0), End: ordered(space+1, 0), space: space}
}

// ID returns the id encoded in key when key belongs to the range.
func (r Range) ID(key [32]byte) (uint32, bool) {
	if binary.BigEndian.Uint16(key[0:2]) != r.space {
		return 0, false
	}
	for _, b := range key[6:] {
		if b != 0 {
			return 0, false
		}
	}
	return binary.BigEndian.Uint32(key[2:6]), true
}

// Pool returns the keylet for a pool definition. Pool keys sort by id.
func Pool(poolID uint32) Keylet {
	return Keylet{Type: TypePool, Key: ordered(spacePool, poolID)}
}

// PoolRange spans every pool definition.
func PoolRange() Range {
	return orderedRange(TypePool, spacePool)
}

// PairIndex returns the keylet mapping an unordered asset pair to its pool.
// The pair is canonicalised so (a, b) and (b, a) resolve to the same key.
func PairIndex(a, b uint64) Keylet {
	if a > b {
		a, b = b, a
	}
	return Keylet{Type: TypePairIndex, Key: indexHash(spacePairIndex, u64(a), u64(b))}
}

// Reserves returns the keylet for the cached reserves of a pool.
func Reserves(poolID uint32) Keylet {
	return Keylet{Type: TypeReserves, Key: indexHash(spaceReserves, u32(poolID))}
}

// KLast returns the keylet for the protocol fee checkpoint of a pool.
func KLast(poolID uint32) Keylet {
	return Keylet{Type: TypeKLast, Key: indexHash(spaceKLast, u32(poolID))}
}

// Counter returns the keylet for a named id allocator.
func Counter(name string) Keylet {
	return Keylet{Type: TypeCounter, Key: indexHash(spaceCounter, []byte(name))}
}

// FeeTo returns the keylet for the singleton protocol fee recipient.
func FeeTo() Keylet {
	return Keylet{Type: TypeFeeTo, Key: indexHash(spaceFeeTo)}
}

// BatchPool returns the keylet for a batch pool definition. Keys sort by id.
func BatchPool(poolID uint32) Keylet {
	return Keylet{Type: TypeBatchPool, Key: ordered(spaceBatchPool, poolID)}
}

// BatchPoolRange spans every batch pool definition.
func BatchPoolRange() Range {
	return orderedRange(TypeBatchPool, spaceBatchPool)
}

// BatchPairIndex returns the keylet mapping (currency, collection) to a batch pool.
func BatchPairIndex(currency, collection uint64) Keylet {
	return Keylet{Type: TypeBatchPairIndex, Key: indexHash(spaceBatchPairIndex, u64(currency), u64(collection))}
}

// BatchReserve returns the keylet for the currency reserve backing one token id.
func BatchReserve(poolID uint32, tokenID uint64) Keylet {
	return Keylet{Type: TypeBatchReserve, Key: indexHash(spaceBatchReserve, u32(poolID), u64(tokenID))}
}

// Balance returns the keylet for an account's balance of a fungible asset.
func Balance(asset uint64, account [20]byte) Keylet {
	return Keylet{Type: TypeBalance, Key: indexHash(spaceBalance, u64(asset), account[:])}
}

// Supply returns the keylet for the total supply of a fungible asset.
func Supply(asset uint64) Keylet {
	return Keylet{Type: TypeSupply, Key: indexHash(spaceSupply, u64(asset))}
}

// BatchBalance returns the keylet for an account's balance of one token id.
func BatchBalance(collection, tokenID uint64, account [20]byte) Keylet {
	return Keylet{Type: TypeBatchBalance, Key: indexHash(spaceBatchBalance, u64(collection), u64(tokenID), account[:])}
}

// BatchSupply returns the keylet for the total supply of one token id.
func BatchSupply(collection, tokenID uint64) Keylet {
	return Keylet{Type: TypeBatchSupply, Key: indexHash(spaceBatchSupply, u64(collection), u64(tokenID))}
}

// LiquidityID marks an asset (kind 'a') or collection (kind 'c') id as an
// issued liquidity token.
func LiquidityID(kind byte, id uint64) Keylet {
	return Keylet{Type: TypeLiquidityID, Key: indexHash(spaceLiquidityID, []byte{kind}, u64(id))}
}
