package amm

import (
	"fmt"
	"math"

	"github.com/LeJamon/goAMM/internal/core/ledger"
	"github.com/LeJamon/goAMM/internal/core/ledger/keylet"
	"github.com/LeJamon/goAMM/internal/core/state"
)

// IDAllocator hands out pool ids and fresh liquidity token ids.
type IDAllocator interface {
	NextPoolID() (PoolID, error)
	NextLiquidityAsset() (ledger.AssetID, error)
	NextLiquidityCollection() (ledger.CollectionID, error)
}

const (
	counterPool                = "pool"
	counterLiquidityAsset      = "liquidity_asset"
	counterLiquidityCollection = "liquidity_collection"
)

// StateAllocator keeps sequential counters in a state.View. Each counter
// stores the last value handed out.
type StateAllocator struct {
	view state.View
	cfg  Config
}

func NewStateAllocator(view state.View, cfg Config) *StateAllocator {
	return &StateAllocator{view: view, cfg: cfg}
}

func (a *StateAllocator) NextPoolID() (PoolID, error) {
	v, err := a.next(counterPool, 1, math.MaxUint32)
	return PoolID(v), err
}

func (a *StateAllocator) NextLiquidityAsset() (ledger.AssetID, error) {
	v, err := a.next(counterLiquidityAsset, uint64(a.cfg.LiquidityAssetBase), math.MaxUint64)
	return ledger.AssetID(v), err
}

func (a *StateAllocator) NextLiquidityCollection() (ledger.CollectionID, error) {
	v, err := a.next(counterLiquidityCollection, uint64(a.cfg.LiquidityCollectionBase), math.MaxUint64)
	return ledger.CollectionID(v), err
}

func (a *StateAllocator) last(name string) (uint64, bool, error) {
	data, err := a.view.Read(keylet.Counter(name))
	if err != nil || data == nil {
		return 0, false, err
	}
	v, err := decodeUint64(data)
	return v, err == nil, err
}

func (a *StateAllocator) next(name string, first, max uint64) (uint64, error) {
	last, ok, err := a.last(name)
	if err != nil {
		return 0, err
	}

	next := first
	if ok {
		if last >= max {
			return 0, ErrNoIDSpace
		}
		next = last + 1
	}

	if err := state.Put(a.view, keylet.Counter(name), encodeUint64(next)); err != nil {
		return 0, err
	}
	return next, nil
}

const (
	liquidityKindAsset      byte = 'a'
	liquidityKindCollection byte = 'c'

	// maxLiquidityDraws bounds how many held ids are skipped in one call.
	maxLiquidityDraws = 1024
)

// freshLiquidityAsset draws allocator ids until one is neither issued nor
// held by anyone, and records it as issued.
func (t *txn) freshLiquidityAsset() (ledger.AssetID, error) {
	for i := 0; i < maxLiquidityDraws; i++ {
		id, err := t.ids.NextLiquidityAsset()
		if err != nil {
			return 0, err
		}
		issued, err := t.view.Exists(keylet.LiquidityID(liquidityKindAsset, uint64(id)))
		if err != nil {
			return 0, err
		}
		if issued {
			continue
		}
		supply, err := t.fungible.TotalSupply(id)
		if err != nil {
			return 0, err
		}
		if supply > 0 {
			continue
		}
		if err := t.view.Insert(keylet.LiquidityID(liquidityKindAsset, uint64(id)), []byte{liquidityKindAsset}); err != nil {
			return 0, err
		}
		return id, nil
	}
	return 0, ErrNoIDSpace
}

// freshLiquidityCollection is freshLiquidityAsset for batch pools.
func (t *txn) freshLiquidityCollection() (ledger.CollectionID, error) {
	for i := 0; i < maxLiquidityDraws; i++ {
		id, err := t.ids.NextLiquidityCollection()
		if err != nil {
			return 0, err
		}
		k := keylet.LiquidityID(liquidityKindCollection, uint64(id))
		issued, err := t.view.Exists(k)
		if err != nil {
			return 0, err
		}
		if issued {
			continue
		}
		if err := t.view.Insert(k, []byte{liquidityKindCollection}); err != nil {
			return 0, err
		}
		return id, nil
	}
	return 0, ErrNoIDSpace
}

// checkPoolAsset rejects assets in the liquidity id range that were never
// issued as a liquidity token. Issued ones may back other pools.
func (t *txn) checkPoolAsset(asset ledger.AssetID) error {
	if asset < t.cfg.LiquidityAssetBase {
		return nil
	}
	issued, err := t.view.Exists(keylet.LiquidityID(liquidityKindAsset, uint64(asset)))
	if err != nil || issued {
		return err
	}
	return fmt.Errorf("%w: asset %d", ErrReservedID, asset)
}

func (t *txn) checkPoolCollection(collection ledger.CollectionID) error {
	if collection < t.cfg.LiquidityCollectionBase {
		return nil
	}
	issued, err := t.view.Exists(keylet.LiquidityID(liquidityKindCollection, uint64(collection)))
	if err != nil || issued {
		return err
	}
	return fmt.Errorf("%w: collection %d", ErrReservedID, collection)
}
