package amm

import (
	"context"
	"fmt"

	"github.com/LeJamon/goAMM/internal/core/ledger"
)

// Host-side ledger access. These run under the engine lock and commit
// through the same store as pool operations, so balances seen by pools and
// by callers never diverge.

// Fund mints amount of asset to an account. Liquidity token ids, issued or
// not, are minted only by pools.
func (e *Engine) Fund(ctx context.Context, asset ledger.AssetID, to ledger.AccountID, amount uint64) error {
	return e.apply(ctx, "fund", func(t *txn) error {
		if asset >= t.cfg.LiquidityAssetBase {
			return fmt.Errorf("%w: asset %d", ErrReservedID, asset)
		}
		return wrapLedger(t.fungible.Mint(asset, to, amount))
	})
}

// FundBatch mints amount of (collection, id) to an account.
func (e *Engine) FundBatch(ctx context.Context, collection ledger.CollectionID, id ledger.TokenID, to ledger.AccountID, amount uint64) error {
	return e.apply(ctx, "fund_batch", func(t *txn) error {
		if collection >= t.cfg.LiquidityCollectionBase {
			return fmt.Errorf("%w: collection %d", ErrReservedID, collection)
		}
		return wrapLedger(t.batch.Mint(collection, id, to, amount))
	})
}

// Transfer moves amount of asset between accounts.
func (e *Engine) Transfer(ctx context.Context, asset ledger.AssetID, from, to ledger.AccountID, amount uint64) error {
	return e.apply(ctx, "transfer", func(t *txn) error {
		return wrapLedger(t.fungible.Transfer(asset, from, to, amount))
	})
}

// BalanceOf returns an account's balance of asset.
func (e *Engine) BalanceOf(ctx context.Context, asset ledger.AssetID, account ledger.AccountID) (uint64, error) {
	var v uint64
	err := e.read(ctx, func(t *txn) error {
		var err error
		v, err = t.fungible.BalanceOf(asset, account)
		return err
	})
	return v, err
}

// TotalSupply returns the outstanding supply of asset.
func (e *Engine) TotalSupply(ctx context.Context, asset ledger.AssetID) (uint64, error) {
	var v uint64
	err := e.read(ctx, func(t *txn) error {
		var err error
		v, err = t.fungible.TotalSupply(asset)
		return err
	})
	return v, err
}

// BatchBalanceOf returns an account's balance of (collection, id).
func (e *Engine) BatchBalanceOf(ctx context.Context, collection ledger.CollectionID, id ledger.TokenID, account ledger.AccountID) (uint64, error) {
	var v uint64
	err := e.read(ctx, func(t *txn) error {
		var err error
		v, err = t.batch.BalanceOf(collection, id, account)
		return err
	})
	return v, err
}

// BatchTotalSupply returns the outstanding supply of (collection, id).
func (e *Engine) BatchTotalSupply(ctx context.Context, collection ledger.CollectionID, id ledger.TokenID) (uint64, error) {
	var v uint64
	err := e.read(ctx, func(t *txn) error {
		var err error
		v, err = t.batch.TotalSupply(collection, id)
		return err
	})
	return v, err
}
