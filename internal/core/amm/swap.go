package amm

import (
	"context"
	"fmt"

	"github.com/LeJamon/goAMM/internal/core/arith"
	"github.com/LeJamon/goAMM/internal/core/events"
	"github.com/LeJamon/goAMM/internal/core/ledger"
	"github.com/holiman/uint256"
)

// GetAmountsOut prices an exact input along path. amounts[0] is amountIn
// and amounts[i+1] is the output of hop i.
func (e *Engine) GetAmountsOut(ctx context.Context, amountIn uint64, path []ledger.AssetID) ([]uint64, error) {
	var amounts []uint64
	err := e.read(ctx, func(t *txn) error {
		var err error
		amounts, err = t.amountsOut(amountIn, path)
		return err
	})
	return amounts, err
}

// GetAmountsIn prices an exact output along path. The last element is
// amountOut and amounts[0] is the input required.
func (e *Engine) GetAmountsIn(ctx context.Context, amountOut uint64, path []ledger.AssetID) ([]uint64, error) {
	var amounts []uint64
	err := e.read(ctx, func(t *txn) error {
		var err error
		amounts, err = t.amountsIn(amountOut, path)
		return err
	})
	return amounts, err
}

// SwapExactIn sells exactly amountIn of path[0] for at least amountOutMin
// of the last asset, delivered to to.
func (e *Engine) SwapExactIn(ctx context.Context, sender ledger.AccountID, amountIn, amountOutMin uint64, path []ledger.AssetID, to ledger.AccountID) ([]uint64, error) {
	var amounts []uint64
	err := e.apply(ctx, "swap_exact_in", func(t *txn) error {
		var err error
		amounts, err = t.amountsOut(amountIn, path)
		if err != nil {
			return err
		}
		if amounts[len(amounts)-1] < amountOutMin {
			return ErrInsufficientOutputAmount
		}
		return t.route(sender, amounts, path, to)
	})
	return amounts, err
}

// SwapExactOut buys exactly amountOut of the last asset for at most
// amountInMax of path[0].
func (e *Engine) SwapExactOut(ctx context.Context, sender ledger.AccountID, amountOut, amountInMax uint64, path []ledger.AssetID, to ledger.AccountID) ([]uint64, error) {
	var amounts []uint64
	err := e.apply(ctx, "swap_exact_out", func(t *txn) error {
		var err error
		amounts, err = t.amountsIn(amountOut, path)
		if err != nil {
			return err
		}
		if amounts[0] > amountInMax {
			return ErrExcessiveInputAmount
		}
		return t.route(sender, amounts, path, to)
	})
	return amounts, err
}

// Swap is the low-level primitive: it pays out the requested amounts and
// then requires that whatever the vault received keeps the fee-adjusted
// product from decreasing. Inputs must already sit in the vault, for
// example from an earlier transfer.
func (e *Engine) Swap(ctx context.Context, sender ledger.AccountID, id PoolID, amount0Out, amount1Out uint64, to ledger.AccountID) error {
	return e.apply(ctx, "swap", func(t *txn) error {
		p, err := t.pool(id)
		if err != nil {
			return err
		}
		return t.swap(sender, p, amount0Out, amount1Out, payee(to, sender))
	})
}

type hop struct {
	pool   Pool
	input  ledger.AssetID
	output ledger.AssetID
}

func (t *txn) hops(path []ledger.AssetID) ([]hop, error) {
	if len(path) < 2 {
		return nil, ErrInvalidPath
	}
	out := make([]hop, 0, len(path)-1)
	for i := 0; i < len(path)-1; i++ {
		if path[i] == path[i+1] {
			return nil, fmt.Errorf("%w: hop %d repeats asset %d", ErrInvalidPath, i, path[i])
		}
		p, err := t.poolByAssets(path[i], path[i+1])
		if err != nil {
			return nil, fmt.Errorf("%w: hop %d: %v", ErrInvalidPath, i, err)
		}
		out = append(out, hop{pool: p, input: path[i], output: path[i+1]})
	}
	return out, nil
}

func (t *txn) hopReserves(h hop) (uint64, uint64, error) {
	r, err := t.reserves(h.pool.ID)
	if err != nil {
		return 0, 0, err
	}
	rIn, rOut := h.pool.Orient(h.input, r.Reserve0, r.Reserve1)
	return rIn, rOut, nil
}

func (t *txn) amountsOut(amountIn uint64, path []ledger.AssetID) ([]uint64, error) {
	hops, err := t.hops(path)
	if err != nil {
		return nil, err
	}
	amounts := make([]uint64, len(path))
	amounts[0] = amountIn
	for i, h := range hops {
		rIn, rOut, err := t.hopReserves(h)
		if err != nil {
			return nil, err
		}
		amounts[i+1], err = GetAmountOut(amounts[i], rIn, rOut, h.pool.FeeMultiplier)
		if err != nil {
			return nil, err
		}
	}
	return amounts, nil
}

func (t *txn) amountsIn(amountOut uint64, path []ledger.AssetID) ([]uint64, error) {
	hops, err := t.hops(path)
	if err != nil {
		return nil, err
	}
	amounts := make([]uint64, len(path))
	amounts[len(amounts)-1] = amountOut
	for i := len(hops) - 1; i >= 0; i-- {
		rIn, rOut, err := t.hopReserves(hops[i])
		if err != nil {
			return nil, err
		}
		amounts[i], err = GetAmountIn(amounts[i+1], rIn, rOut, hops[i].pool.FeeMultiplier)
		if err != nil {
			return nil, err
		}
	}
	return amounts, nil
}

// route moves amounts[0] into the first vault and runs the primitive on
// every hop, forwarding each output to the next vault.
func (t *txn) route(sender ledger.AccountID, amounts []uint64, path []ledger.AssetID, to ledger.AccountID) error {
	to = payee(to, sender)
	hops, err := t.hops(path)
	if err != nil {
		return err
	}

	if err := t.fungible.Transfer(path[0], sender, hops[0].pool.Vault, amounts[0]); err != nil {
		return wrapLedger(err)
	}

	for i, h := range hops {
		var amount0Out, amount1Out uint64
		if h.output == h.pool.Asset0 {
			amount0Out = amounts[i+1]
		} else {
			amount1Out = amounts[i+1]
		}

		recipient := to
		if i < len(hops)-1 {
			recipient = hops[i+1].pool.Vault
		}
		if err := t.swap(sender, h.pool, amount0Out, amount1Out, recipient); err != nil {
			return fmt.Errorf("hop %d: %w", i, err)
		}
	}
	return nil
}

func (t *txn) swap(sender ledger.AccountID, p Pool, amount0Out, amount1Out uint64, to ledger.AccountID) error {
	if amount0Out == 0 && amount1Out == 0 {
		return ErrInsufficientOutAmount
	}
	r, err := t.reserves(p.ID)
	if err != nil {
		return err
	}
	if amount0Out >= r.Reserve0 || amount1Out >= r.Reserve1 {
		return ErrInsufficientLiquidity
	}

	// Optimistic payout; the invariant check below undoes it by failing
	if err := t.fungible.Transfer(p.Asset0, p.Vault, to, amount0Out); err != nil {
		return wrapLedger(err)
	}
	if err := t.fungible.Transfer(p.Asset1, p.Vault, to, amount1Out); err != nil {
		return wrapLedger(err)
	}

	balance0, balance1, err := t.balances(p)
	if err != nil {
		return err
	}
	amount0In := arith.SaturatingSub(balance0, r.Reserve0-amount0Out)
	amount1In := arith.SaturatingSub(balance1, r.Reserve1-amount1Out)
	if amount0In == 0 && amount1In == 0 {
		return ErrInsufficientInputAmount
	}

	feeComplement := FeeDenominator - p.FeeMultiplier
	adjusted0 := new(uint256.Int).Sub(arith.Product(balance0, FeeDenominator), arith.Product(amount0In, feeComplement))
	adjusted1 := new(uint256.Int).Sub(arith.Product(balance1, FeeDenominator), arith.Product(amount1In, feeComplement))

	lhs := new(uint256.Int).Mul(adjusted0, adjusted1)
	rhs := new(uint256.Int).Mul(arith.Product(r.Reserve0, r.Reserve1), arith.U256(FeeDenominator*FeeDenominator))
	if lhs.Lt(rhs) {
		return ErrAdjusted
	}

	if _, err := t.sync(p); err != nil {
		return err
	}
	t.emit(events.Swap{
		PoolID:     uint32(p.ID),
		Sender:     sender,
		To:         to,
		Amount0In:  amount0In,
		Amount1In:  amount1In,
		Amount0Out: amount0Out,
		Amount1Out: amount1Out,
	})
	return nil
}
