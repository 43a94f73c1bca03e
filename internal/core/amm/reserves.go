package amm

import (
	"context"
	"fmt"

	"github.com/LeJamon/goAMM/internal/core/arith"
	"github.com/LeJamon/goAMM/internal/core/events"
	"github.com/LeJamon/goAMM/internal/core/ledger"
	"github.com/LeJamon/goAMM/internal/core/ledger/keylet"
	"github.com/LeJamon/goAMM/internal/core/state"
	"github.com/holiman/uint256"
)

// Sync overwrites a pool's cached reserves with the vault's ledger balances.
func (e *Engine) Sync(ctx context.Context, id PoolID) error {
	return e.apply(ctx, "sync", func(t *txn) error {
		p, err := t.pool(id)
		if err != nil {
			return err
		}
		_, err = t.sync(p)
		return err
	})
}

// Reserves returns a pool's cached reserves in canonical order.
func (e *Engine) Reserves(ctx context.Context, id PoolID) (Reserves, error) {
	var r Reserves
	err := e.read(ctx, func(t *txn) error {
		if _, err := t.pool(id); err != nil {
			return err
		}
		var err error
		r, err = t.reserves(id)
		return err
	})
	return r, err
}

// GetReserves returns the reserves of the (assetA, assetB) pool ordered
// like the arguments.
func (e *Engine) GetReserves(ctx context.Context, assetA, assetB ledger.AssetID) (uint64, uint64, error) {
	var ra, rb uint64
	err := e.read(ctx, func(t *txn) error {
		p, err := t.poolByAssets(assetA, assetB)
		if err != nil {
			return err
		}
		r, err := t.reserves(p.ID)
		if err != nil {
			return err
		}
		ra, rb = p.Orient(assetA, r.Reserve0, r.Reserve1)
		return nil
	})
	return ra, rb, err
}

// KLast returns the protocol fee checkpoint of a pool.
func (e *Engine) KLast(ctx context.Context, id PoolID) (*uint256.Int, error) {
	var k *uint256.Int
	err := e.read(ctx, func(t *txn) error {
		var err error
		k, err = t.kLast(id)
		return err
	})
	return k, err
}

// SetFeeTo changes the protocol fee recipient. A nil recipient disables
// the protocol fee. Only the configured setter may call it.
func (e *Engine) SetFeeTo(ctx context.Context, caller ledger.AccountID, feeTo *ledger.AccountID) error {
	return e.apply(ctx, "set_fee_to", func(t *txn) error {
		if t.cfg.FeeToSetter.IsZero() || caller != t.cfg.FeeToSetter {
			return ErrPermissionDenied
		}

		ev := events.SetFeeTo{Setter: caller}
		if feeTo == nil {
			exists, err := t.view.Exists(keylet.FeeTo())
			if err != nil {
				return err
			}
			if exists {
				if err := t.view.Erase(keylet.FeeTo()); err != nil {
					return err
				}
			}
		} else {
			if err := state.Put(t.view, keylet.FeeTo(), feeTo[:]); err != nil {
				return err
			}
			ev.FeeTo = *feeTo
			ev.Enabled = true
		}

		t.emit(ev)
		return nil
	})
}

// FeeTo returns the protocol fee recipient, if any.
func (e *Engine) FeeTo(ctx context.Context) (ledger.AccountID, bool, error) {
	var (
		to ledger.AccountID
		ok bool
	)
	err := e.read(ctx, func(t *txn) error {
		var err error
		to, ok, err = t.feeTo()
		return err
	})
	return to, ok, err
}

func (t *txn) reserves(id PoolID) (Reserves, error) {
	data, err := t.view.Read(keylet.Reserves(uint32(id)))
	if err != nil {
		return Reserves{}, err
	}
	if data == nil {
		return Reserves{}, nil
	}
	return decodeReserves(data)
}

// balances reads the vault's ledger balances of both pool assets.
func (t *txn) balances(p Pool) (uint64, uint64, error) {
	b0, err := t.fungible.BalanceOf(p.Asset0, p.Vault)
	if err != nil {
		return 0, 0, err
	}
	b1, err := t.fungible.BalanceOf(p.Asset1, p.Vault)
	if err != nil {
		return 0, 0, err
	}
	return b0, b1, nil
}

// sync makes the reserve record equal the vault balances and emits Sync.
func (t *txn) sync(p Pool) (Reserves, error) {
	b0, b1, err := t.balances(p)
	if err != nil {
		return Reserves{}, err
	}
	r := Reserves{Reserve0: b0, Reserve1: b1}
	if err := state.Put(t.view, keylet.Reserves(uint32(p.ID)), encodeReserves(r)); err != nil {
		return Reserves{}, err
	}
	t.emit(events.Sync{PoolID: uint32(p.ID), Reserve0: b0, Reserve1: b1})
	return r, nil
}

func (t *txn) feeTo() (ledger.AccountID, bool, error) {
	data, err := t.view.Read(keylet.FeeTo())
	if err != nil || data == nil {
		return ledger.AccountID{}, false, err
	}
	if len(data) != len(ledger.AccountID{}) {
		return ledger.AccountID{}, false, fmt.Errorf("corrupt fee recipient record: %d bytes", len(data))
	}
	var to ledger.AccountID
	copy(to[:], data)
	return to, true, nil
}

func (t *txn) kLast(id PoolID) (*uint256.Int, error) {
	data, err := t.view.Read(keylet.KLast(uint32(id)))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return new(uint256.Int), nil
	}
	return new(uint256.Int).SetBytes(data), nil
}

func (t *txn) setKLast(id PoolID, k *uint256.Int) error {
	key := keylet.KLast(uint32(id))
	if k.IsZero() {
		exists, err := t.view.Exists(key)
		if err != nil || !exists {
			return err
		}
		return t.view.Erase(key)
	}
	b := k.Bytes32()
	return state.Put(t.view, key, b[:])
}

// mintProtocolFee mints the protocol's share of fee growth since the last
// checkpoint, measured on sqrt(k), to the fee recipient. It reports whether
// a recipient is configured; without one the checkpoint is cleared.
func (t *txn) mintProtocolFee(p Pool, r Reserves) (bool, error) {
	feeTo, on, err := t.feeTo()
	if err != nil {
		return false, err
	}
	kLast, err := t.kLast(p.ID)
	if err != nil {
		return false, err
	}

	if !on {
		if !kLast.IsZero() {
			return false, t.setKLast(p.ID, new(uint256.Int))
		}
		return false, nil
	}
	if kLast.IsZero() {
		return true, nil
	}

	rootK := arith.Sqrt(arith.Product(r.Reserve0, r.Reserve1))
	rootKLast := arith.Sqrt(kLast)
	if !rootK.Gt(rootKLast) {
		return true, nil
	}

	totalSupply, err := t.fungible.TotalSupply(p.LiquidityAsset)
	if err != nil {
		return false, err
	}

	numerator := new(uint256.Int).Mul(arith.U256(totalSupply), new(uint256.Int).Sub(rootK, rootKLast))
	denominator := new(uint256.Int).Add(new(uint256.Int).Mul(rootK, arith.U256(5)), rootKLast)
	liquidity, err := narrow(new(uint256.Int).Div(numerator, denominator))
	if err != nil {
		return false, err
	}

	if liquidity > 0 {
		if err := t.mintLiquidity(p, feeTo, liquidity); err != nil {
			return false, err
		}
	}
	return true, nil
}

// checkpoint refreshes kLast from the current reserves.
func (t *txn) checkpoint(p Pool, r Reserves) error {
	return t.setKLast(p.ID, arith.Product(r.Reserve0, r.Reserve1))
}

func (t *txn) mintLiquidity(p Pool, to ledger.AccountID, amount uint64) error {
	if err := t.fungible.Mint(p.LiquidityAsset, to, amount); err != nil {
		return wrapLedger(err)
	}
	t.emit(events.Mint{PoolID: uint32(p.ID), Asset: p.LiquidityAsset, To: to, Amount: amount})
	return nil
}

func (t *txn) burnLiquidity(p Pool, from ledger.AccountID, amount uint64) error {
	if err := t.fungible.Burn(p.LiquidityAsset, from, amount); err != nil {
		return wrapLedger(err)
	}
	t.emit(events.Burn{PoolID: uint32(p.ID), Asset: p.LiquidityAsset, From: from, Amount: amount})
	return nil
}
