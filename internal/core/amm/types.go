package amm

import (
	"encoding/binary"
	"fmt"

	"github.com/LeJamon/goAMM/internal/core/ledger"
	"github.com/LeJamon/goAMM/internal/crypto"
	"github.com/ugorji/go/codec"
)

// PoolID identifies a pool. Two-asset and batch pools share one id space.
type PoolID uint32

// Pool is a two-asset constant-product pool. Asset0 < Asset1.
type Pool struct {
	ID             PoolID           `codec:"id"`
	Asset0         ledger.AssetID   `codec:"asset0"`
	Asset1         ledger.AssetID   `codec:"asset1"`
	LiquidityAsset ledger.AssetID   `codec:"lp"`
	Vault          ledger.AccountID `codec:"vault"`
	Creator        ledger.AccountID `codec:"creator"`
	FeeMultiplier  uint64           `codec:"fee"`
}

// Has reports whether asset is one side of the pool.
func (p Pool) Has(asset ledger.AssetID) bool {
	return asset == p.Asset0 || asset == p.Asset1
}

// Orient returns (x, y) for input asset a: unchanged when a is Asset0,
// swapped otherwise.
func (p Pool) Orient(a ledger.AssetID, x, y uint64) (uint64, uint64) {
	if a == p.Asset0 {
		return x, y
	}
	return y, x
}

// BatchPool prices every token id of a collection against one currency.
type BatchPool struct {
	ID                  PoolID              `codec:"id"`
	Currency            ledger.AssetID      `codec:"currency"`
	Collection          ledger.CollectionID `codec:"collection"`
	LiquidityCollection ledger.CollectionID `codec:"lp"`
	Vault               ledger.AccountID    `codec:"vault"`
	Creator             ledger.AccountID    `codec:"creator"`
	FeeMultiplier       uint64              `codec:"fee"`
}

// Reserves are the cached balances of a two-asset pool in canonical order.
type Reserves struct {
	Reserve0 uint64
	Reserve1 uint64
}

// BatchReserve is the pricing state of one token id in a batch pool.
type BatchReserve struct {
	TokenID  ledger.TokenID
	Currency uint64
	Tokens   uint64
	Supply   uint64
}

// payee returns to, or caller when to is the zero account.
func payee(to, caller ledger.AccountID) ledger.AccountID {
	if to.IsZero() {
		return caller
	}
	return to
}

// Canonical orders a pair numerically.
func Canonical(a, b ledger.AssetID) (ledger.AssetID, ledger.AssetID) {
	if a < b {
		return a, b
	}
	return b, a
}

const (
	vaultKindPool  byte = 'p'
	vaultKindBatch byte = 'b'
)

// vaultAccount derives the custody account of a pool. Nobody holds a key
// for it; only the engine moves funds out.
func vaultAccount(kind byte, id PoolID) ledger.AccountID {
	idBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(idBytes, uint32(id))
	return ledger.AccountID(crypto.DeriveAccountID([]byte("amm-vault"), []byte{kind}, idBytes))
}

var mh codec.MsgpackHandle

func encodeRecord(v any) ([]byte, error) {
	var out []byte
	if err := codec.NewEncoderBytes(&out, &mh).Encode(v); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return out, nil
}

func decodeRecord(data []byte, v any) error {
	if err := codec.NewDecoderBytes(data, &mh).Decode(v); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

func encodeReserves(r Reserves) []byte {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf[0:8], r.Reserve0)
	binary.BigEndian.PutUint64(buf[8:16], r.Reserve1)
	return buf
}

func decodeReserves(data []byte) (Reserves, error) {
	if len(data) != 16 {
		return Reserves{}, fmt.Errorf("corrupt reserves record: %d bytes", len(data))
	}
	return Reserves{
		Reserve0: binary.BigEndian.Uint64(data[0:8]),
		Reserve1: binary.BigEndian.Uint64(data[8:16]),
	}, nil
}

func encodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func decodeUint64(data []byte) (uint64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("corrupt counter record: %d bytes", len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}
