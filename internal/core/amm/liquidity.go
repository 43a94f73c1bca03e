package amm

import (
	"context"
	"errors"
	"fmt"

	"github.com/LeJamon/goAMM/internal/core/arith"
	"github.com/LeJamon/goAMM/internal/core/events"
	"github.com/LeJamon/goAMM/internal/core/ledger"
)

// AddLiquidityParams describes a deposit into the (AssetA, AssetB) pool.
type AddLiquidityParams struct {
	AssetA         ledger.AssetID
	AssetB         ledger.AssetID
	AmountADesired uint64
	AmountBDesired uint64
	AmountAMin     uint64
	AmountBMin     uint64
}

// AddLiquidityResult reports what a deposit took and minted.
type AddLiquidityResult struct {
	AmountA   uint64
	AmountB   uint64
	Liquidity uint64
}

// RemoveLiquidityParams describes a withdrawal from the (AssetA, AssetB) pool.
// A zero To pays the provider.
type RemoveLiquidityParams struct {
	AssetA     ledger.AssetID
	AssetB     ledger.AssetID
	Liquidity  uint64
	AmountAMin uint64
	AmountBMin uint64
	To         ledger.AccountID
}

// AddLiquidity deposits into a pool at its current price and mints
// liquidity tokens to provider. An empty pool takes the desired amounts
// as-is and sets the initial price.
func (e *Engine) AddLiquidity(ctx context.Context, provider ledger.AccountID, params AddLiquidityParams) (AddLiquidityResult, error) {
	var res AddLiquidityResult
	err := e.apply(ctx, "add_liquidity", func(t *txn) error {
		var err error
		res, err = t.addLiquidity(provider, params)
		return err
	})
	return res, err
}

// RemoveLiquidity burns liquidity tokens for a pro-rata share of the vault.
func (e *Engine) RemoveLiquidity(ctx context.Context, provider ledger.AccountID, params RemoveLiquidityParams) (uint64, uint64, error) {
	var amountA, amountB uint64
	err := e.apply(ctx, "remove_liquidity", func(t *txn) error {
		var err error
		amountA, amountB, err = t.removeLiquidity(provider, params)
		return err
	})
	return amountA, amountB, err
}

// depositAmounts picks the amounts actually taken for a deposit.
func depositAmounts(reserveA, reserveB uint64, p AddLiquidityParams) (uint64, uint64, error) {
	if reserveA == 0 && reserveB == 0 {
		return p.AmountADesired, p.AmountBDesired, nil
	}

	amountBOptimal, err := Quote(p.AmountADesired, reserveA, reserveB)
	if err != nil {
		return 0, 0, err
	}
	if amountBOptimal <= p.AmountBDesired {
		if amountBOptimal < p.AmountBMin {
			return 0, 0, ErrInsufficientBAmount
		}
		return p.AmountADesired, amountBOptimal, nil
	}

	amountAOptimal, err := Quote(p.AmountBDesired, reserveB, reserveA)
	if err != nil {
		return 0, 0, err
	}
	if amountAOptimal > p.AmountADesired || amountAOptimal < p.AmountAMin {
		return 0, 0, ErrInsufficientAAmount
	}
	return amountAOptimal, p.AmountBDesired, nil
}

func (t *txn) addLiquidity(provider ledger.AccountID, params AddLiquidityParams) (AddLiquidityResult, error) {
	p, err := t.poolByAssets(params.AssetA, params.AssetB)
	if err != nil {
		return AddLiquidityResult{}, err
	}
	r, err := t.reserves(p.ID)
	if err != nil {
		return AddLiquidityResult{}, err
	}

	reserveA, reserveB := p.Orient(params.AssetA, r.Reserve0, r.Reserve1)
	amountA, amountB, err := depositAmounts(reserveA, reserveB, params)
	if err != nil {
		return AddLiquidityResult{}, err
	}

	if err := t.fungible.Transfer(params.AssetA, provider, p.Vault, amountA); err != nil {
		return AddLiquidityResult{}, wrapLedger(err)
	}
	if err := t.fungible.Transfer(params.AssetB, provider, p.Vault, amountB); err != nil {
		return AddLiquidityResult{}, wrapLedger(err)
	}

	liquidity, err := t.mint(p, r, provider)
	if err != nil {
		return AddLiquidityResult{}, err
	}

	amount0, amount1 := p.Orient(params.AssetA, amountA, amountB)
	t.emit(events.LiquidityAdded{
		PoolID:    uint32(p.ID),
		Provider:  provider,
		Amount0:   amount0,
		Amount1:   amount1,
		Liquidity: liquidity,
	})
	return AddLiquidityResult{AmountA: amountA, AmountB: amountB, Liquidity: liquidity}, nil
}

// mint issues liquidity for whatever the vault holds above the cached
// reserves, then syncs.
func (t *txn) mint(p Pool, r Reserves, to ledger.AccountID) (uint64, error) {
	balance0, balance1, err := t.balances(p)
	if err != nil {
		return 0, err
	}
	amount0, err := arith.Sub(balance0, r.Reserve0)
	if err != nil {
		return 0, ErrInsufficientLiquidityMinted
	}
	amount1, err := arith.Sub(balance1, r.Reserve1)
	if err != nil {
		return 0, ErrInsufficientLiquidityMinted
	}

	feeOn, err := t.mintProtocolFee(p, r)
	if err != nil {
		return 0, err
	}

	totalSupply, err := t.fungible.TotalSupply(p.LiquidityAsset)
	if err != nil {
		return 0, err
	}

	var liquidity uint64
	if totalSupply == 0 {
		root := arith.SqrtProduct(amount0, amount1)
		if root <= t.cfg.MinimumLiquidity {
			return 0, ErrInsufficientLiquidityMinted
		}
		liquidity = root - t.cfg.MinimumLiquidity
		if err := t.mintLiquidity(p, p.Vault, t.cfg.MinimumLiquidity); err != nil {
			return 0, err
		}
	} else {
		if r.Reserve0 == 0 || r.Reserve1 == 0 {
			return 0, ErrInsufficientLiquidity
		}
		l0, err := arith.MulDiv(amount0, totalSupply, r.Reserve0)
		if err != nil {
			return 0, mapArith(err)
		}
		l1, err := arith.MulDiv(amount1, totalSupply, r.Reserve1)
		if err != nil {
			return 0, mapArith(err)
		}
		liquidity = arith.Min(l0, l1)
	}
	if liquidity == 0 {
		return 0, ErrInsufficientLiquidityMinted
	}

	if err := t.mintLiquidity(p, to, liquidity); err != nil {
		return 0, err
	}

	synced, err := t.sync(p)
	if err != nil {
		return 0, err
	}
	if feeOn {
		if err := t.checkpoint(p, synced); err != nil {
			return 0, err
		}
	}
	return liquidity, nil
}

func (t *txn) removeLiquidity(provider ledger.AccountID, params RemoveLiquidityParams) (uint64, uint64, error) {
	params.To = payee(params.To, provider)
	p, err := t.poolByAssets(params.AssetA, params.AssetB)
	if err != nil {
		return 0, 0, err
	}
	if params.Liquidity == 0 {
		return 0, 0, ErrInsufficientLiquidityBurned
	}

	if err := t.fungible.Transfer(p.LiquidityAsset, provider, p.Vault, params.Liquidity); err != nil {
		return 0, 0, wrapLedger(err)
	}

	amount0, amount1, err := t.burn(p, params.Liquidity, params.To)
	if err != nil {
		return 0, 0, err
	}

	amountA, amountB := p.Orient(params.AssetA, amount0, amount1)
	if amountA < params.AmountAMin {
		return 0, 0, ErrInsufficientAAmount
	}
	if amountB < params.AmountBMin {
		return 0, 0, ErrInsufficientBAmount
	}

	t.emit(events.LiquidityRemoved{
		PoolID:    uint32(p.ID),
		Provider:  provider,
		To:        params.To,
		Amount0:   amount0,
		Amount1:   amount1,
		Liquidity: params.Liquidity,
	})
	return amountA, amountB, nil
}

// burn destroys liquidity already held by the vault and pays out the
// pro-rata share of the vault's current balances to to.
func (t *txn) burn(p Pool, liquidity uint64, to ledger.AccountID) (uint64, uint64, error) {
	r, err := t.reserves(p.ID)
	if err != nil {
		return 0, 0, err
	}
	balance0, balance1, err := t.balances(p)
	if err != nil {
		return 0, 0, err
	}

	feeOn, err := t.mintProtocolFee(p, r)
	if err != nil {
		return 0, 0, err
	}

	totalSupply, err := t.fungible.TotalSupply(p.LiquidityAsset)
	if err != nil {
		return 0, 0, err
	}
	if totalSupply == 0 {
		return 0, 0, ErrInsufficientLiquidityBurned
	}

	amount0, err := arith.MulDiv(liquidity, balance0, totalSupply)
	if err != nil {
		return 0, 0, mapArith(err)
	}
	amount1, err := arith.MulDiv(liquidity, balance1, totalSupply)
	if err != nil {
		return 0, 0, mapArith(err)
	}
	if amount0 == 0 || amount1 == 0 {
		return 0, 0, ErrInsufficientLiquidityBurned
	}

	if err := t.burnLiquidity(p, p.Vault, liquidity); err != nil {
		return 0, 0, err
	}
	if err := t.fungible.Transfer(p.Asset0, p.Vault, to, amount0); err != nil {
		return 0, 0, wrapLedger(err)
	}
	if err := t.fungible.Transfer(p.Asset1, p.Vault, to, amount1); err != nil {
		return 0, 0, wrapLedger(err)
	}

	synced, err := t.sync(p)
	if err != nil {
		return 0, 0, err
	}
	if feeOn {
		if err := t.checkpoint(p, synced); err != nil {
			return 0, 0, err
		}
	}
	return amount0, amount1, nil
}

// wrapLedger folds ledger overflow into the engine taxonomy and keeps every
// other ledger error matchable.
func wrapLedger(err error) error {
	if errors.Is(err, ledger.ErrSupplyOverflow) {
		return fmt.Errorf("%w: %v", ErrOverflow, err)
	}
	return err
}
