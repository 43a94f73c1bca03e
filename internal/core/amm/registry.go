package amm

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/LeJamon/goAMM/internal/core/events"
	"github.com/LeJamon/goAMM/internal/core/ledger"
	"github.com/LeJamon/goAMM/internal/core/ledger/keylet"
	"go.uber.org/zap"
)

// CreatePool registers a pool for the unordered pair (assetA, assetB).
func (e *Engine) CreatePool(ctx context.Context, creator ledger.AccountID, assetA, assetB ledger.AssetID) (PoolID, error) {
	var id PoolID
	err := e.apply(ctx, "create_pool", func(t *txn) error {
		p, err := t.createPool(creator, assetA, assetB)
		if err != nil {
			return err
		}
		id = p.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	e.logger.Info("pool created",
		zap.Uint32("pool", uint32(id)),
		zap.Uint64("asset_a", uint64(assetA)),
		zap.Uint64("asset_b", uint64(assetB)),
	)
	return id, nil
}

// Pool returns a two-asset pool by id.
func (e *Engine) Pool(ctx context.Context, id PoolID) (Pool, error) {
	var p Pool
	err := e.read(ctx, func(t *txn) error {
		var err error
		p, err = t.pool(id)
		return err
	})
	return p, err
}

// PoolByAssets returns the pool of an unordered pair.
func (e *Engine) PoolByAssets(ctx context.Context, a, b ledger.AssetID) (Pool, error) {
	var p Pool
	err := e.read(ctx, func(t *txn) error {
		var err error
		p, err = t.poolByAssets(a, b)
		return err
	})
	return p, err
}

// Pools lists every two-asset pool in id order.
func (e *Engine) Pools(ctx context.Context) ([]Pool, error) {
	var out []Pool
	err := e.read(ctx, func(t *txn) error {
		r := keylet.PoolRange()
		return t.view.Scan(r.Start, r.End, func(key [32]byte, data []byte) error {
			if _, ok := r.ID(key); !ok {
				return nil
			}
			var p Pool
			if err := decodeRecord(data, &p); err != nil {
				return err
			}
			out = append(out, p)
			return nil
		})
	})
	return out, err
}

func (t *txn) createPool(creator ledger.AccountID, assetA, assetB ledger.AssetID) (Pool, error) {
	if assetA == assetB {
		return Pool{}, ErrSameAsset
	}
	asset0, asset1 := Canonical(assetA, assetB)
	for _, a := range []ledger.AssetID{asset0, asset1} {
		if err := t.checkPoolAsset(a); err != nil {
			return Pool{}, err
		}
	}

	pairKey := keylet.PairIndex(uint64(asset0), uint64(asset1))
	exists, err := t.view.Exists(pairKey)
	if err != nil {
		return Pool{}, err
	}
	if exists {
		return Pool{}, ErrPoolAlreadyExists
	}

	id, err := t.ids.NextPoolID()
	if err != nil {
		return Pool{}, err
	}
	lp, err := t.freshLiquidityAsset()
	if err != nil {
		return Pool{}, err
	}

	p := Pool{
		ID:             id,
		Asset0:         asset0,
		Asset1:         asset1,
		LiquidityAsset: lp,
		Vault:          vaultAccount(vaultKindPool, id),
		Creator:        creator,
		FeeMultiplier:  t.cfg.FeeMultiplier,
	}

	data, err := encodeRecord(&p)
	if err != nil {
		return Pool{}, err
	}
	if err := t.view.Insert(keylet.Pool(uint32(id)), data); err != nil {
		return Pool{}, err
	}
	if err := t.view.Insert(pairKey, encodePoolID(id)); err != nil {
		return Pool{}, err
	}
	if err := t.view.Insert(keylet.Reserves(uint32(id)), encodeReserves(Reserves{})); err != nil {
		return Pool{}, err
	}

	t.emit(events.PoolCreated{
		PoolID:         uint32(id),
		Asset0:         asset0,
		Asset1:         asset1,
		LiquidityAsset: lp,
		Vault:          p.Vault,
		Creator:        creator,
		FeeMultiplier:  p.FeeMultiplier,
	})
	return p, nil
}

func (t *txn) pool(id PoolID) (Pool, error) {
	data, err := t.view.Read(keylet.Pool(uint32(id)))
	if err != nil {
		return Pool{}, err
	}
	if data == nil {
		return Pool{}, fmt.Errorf("%w: %d", ErrInvalidPoolID, id)
	}
	var p Pool
	if err := decodeRecord(data, &p); err != nil {
		return Pool{}, err
	}
	return p, nil
}

func (t *txn) poolByAssets(a, b ledger.AssetID) (Pool, error) {
	if a == b {
		return Pool{}, ErrSameAsset
	}
	data, err := t.view.Read(keylet.PairIndex(uint64(a), uint64(b)))
	if err != nil {
		return Pool{}, err
	}
	if data == nil {
		return Pool{}, fmt.Errorf("%w: no pool for %d/%d", ErrInvalidPoolID, a, b)
	}
	id, err := decodePoolID(data)
	if err != nil {
		return Pool{}, err
	}
	return t.pool(id)
}

func encodePoolID(id PoolID) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(id))
	return buf
}

func decodePoolID(data []byte) (PoolID, error) {
	if len(data) != 4 {
		return 0, fmt.Errorf("corrupt pool index: %d bytes", len(data))
	}
	return PoolID(binary.BigEndian.Uint32(data)), nil
}
