// Package amm provides operation builders for two-asset pool tests.
package amm

import (
	"context"

	coreAmm "github.com/LeJamon/goAMM/internal/core/amm"
	"github.com/LeJamon/goAMM/internal/core/ledger"
	jtx "github.com/LeJamon/goAMM/internal/testing"
)

// CreateBuilder provides a fluent interface for building pool creations.
type CreateBuilder struct {
	account *jtx.Account
	assetA  ledger.AssetID
	assetB  ledger.AssetID
}

// Create creates a new CreateBuilder.
func Create(account *jtx.Account, assetA, assetB ledger.AssetID) *CreateBuilder {
	return &CreateBuilder{account: account, assetA: assetA, assetB: assetB}
}

// Build creates the operation. Its result value is the coreAmm.PoolID.
func (b *CreateBuilder) Build() jtx.Op {
	return jtx.OpFunc{Label: "CreatePool", Fn: func(ctx context.Context, e *coreAmm.Engine) (any, error) {
		return e.CreatePool(ctx, b.account.ID, b.assetA, b.assetB)
	}}
}

// DepositBuilder provides a fluent interface for building liquidity deposits.
type DepositBuilder struct {
	account *jtx.Account
	params  coreAmm.AddLiquidityParams
}

// Deposit creates a new DepositBuilder offering amountA and amountB.
func Deposit(account *jtx.Account, assetA, assetB ledger.AssetID, amountA, amountB uint64) *DepositBuilder {
	return &DepositBuilder{
		account: account,
		params: coreAmm.AddLiquidityParams{
			AssetA:         assetA,
			AssetB:         assetB,
			AmountADesired: amountA,
			AmountBDesired: amountB,
		},
	}
}

// Min sets the least amounts of each asset the deposit may take.
func (b *DepositBuilder) Min(amountA, amountB uint64) *DepositBuilder {
	b.params.AmountAMin = amountA
	b.params.AmountBMin = amountB
	return b
}

// Build creates the operation. Its result value is the coreAmm.AddLiquidityResult.
func (b *DepositBuilder) Build() jtx.Op {
	return jtx.OpFunc{Label: "AddLiquidity", Fn: func(ctx context.Context, e *coreAmm.Engine) (any, error) {
		return e.AddLiquidity(ctx, b.account.ID, b.params)
	}}
}

// WithdrawBuilder provides a fluent interface for building liquidity withdrawals.
type WithdrawBuilder struct {
	account *jtx.Account
	params  coreAmm.RemoveLiquidityParams
}

// Withdraw creates a new WithdrawBuilder burning liquidity. Proceeds go to
// the account unless To is set.
func Withdraw(account *jtx.Account, assetA, assetB ledger.AssetID, liquidity uint64) *WithdrawBuilder {
	return &WithdrawBuilder{
		account: account,
		params: coreAmm.RemoveLiquidityParams{
			AssetA:    assetA,
			AssetB:    assetB,
			Liquidity: liquidity,
			To:        account.ID,
		},
	}
}

// Min sets the least amounts of each asset that must be paid out.
func (b *WithdrawBuilder) Min(amountA, amountB uint64) *WithdrawBuilder {
	b.params.AmountAMin = amountA
	b.params.AmountBMin = amountB
	return b
}

// To sets the recipient of the withdrawn assets.
func (b *WithdrawBuilder) To(acc *jtx.Account) *WithdrawBuilder {
	b.params.To = acc.ID
	return b
}

// Build creates the operation. Its result value is [amountA, amountB].
func (b *WithdrawBuilder) Build() jtx.Op {
	return jtx.OpFunc{Label: "RemoveLiquidity", Fn: func(ctx context.Context, e *coreAmm.Engine) (any, error) {
		a, bAmt, err := e.RemoveLiquidity(ctx, b.account.ID, b.params)
		if err != nil {
			return nil, err
		}
		return []uint64{a, bAmt}, nil
	}}
}

// SwapBuilder provides a fluent interface for building routed swaps.
type SwapBuilder struct {
	account *jtx.Account
	to      *jtx.Account
	exactIn bool
	amount  uint64
	limit   uint64
	path    []ledger.AssetID
}

// SwapExactIn sells exactly amountIn along path for at least minOut.
func SwapExactIn(account *jtx.Account, amountIn, minOut uint64, path ...ledger.AssetID) *SwapBuilder {
	return &SwapBuilder{account: account, exactIn: true, amount: amountIn, limit: minOut, path: path}
}

// SwapExactOut buys exactly amountOut along path for at most maxIn.
func SwapExactOut(account *jtx.Account, amountOut, maxIn uint64, path ...ledger.AssetID) *SwapBuilder {
	return &SwapBuilder{account: account, amount: amountOut, limit: maxIn, path: path}
}

// To sets the recipient of the final output.
func (b *SwapBuilder) To(acc *jtx.Account) *SwapBuilder {
	b.to = acc
	return b
}

// Build creates the operation. Its result value is the per-hop amounts.
func (b *SwapBuilder) Build() jtx.Op {
	to := b.account.ID
	if b.to != nil {
		to = b.to.ID
	}
	if b.exactIn {
		return jtx.OpFunc{Label: "SwapExactIn", Fn: func(ctx context.Context, e *coreAmm.Engine) (any, error) {
			return e.SwapExactIn(ctx, b.account.ID, b.amount, b.limit, b.path, to)
		}}
	}
	return jtx.OpFunc{Label: "SwapExactOut", Fn: func(ctx context.Context, e *coreAmm.Engine) (any, error) {
		return e.SwapExactOut(ctx, b.account.ID, b.amount, b.limit, b.path, to)
	}}
}

// Sync builds an operation forcing a pool's reserves to its vault balances.
func Sync(id coreAmm.PoolID) jtx.Op {
	return jtx.OpFunc{Label: "Sync", Fn: func(ctx context.Context, e *coreAmm.Engine) (any, error) {
		return nil, e.Sync(ctx, id)
	}}
}

// FeeToBuilder provides a fluent interface for changing the protocol fee recipient.
type FeeToBuilder struct {
	caller    *jtx.Account
	recipient *jtx.Account
}

// SetFeeTo creates a new FeeToBuilder. Without Recipient it disables the fee.
func SetFeeTo(caller *jtx.Account) *FeeToBuilder {
	return &FeeToBuilder{caller: caller}
}

// Recipient sets the account that receives protocol fee liquidity.
func (b *FeeToBuilder) Recipient(acc *jtx.Account) *FeeToBuilder {
	b.recipient = acc
	return b
}

// Build creates the operation.
func (b *FeeToBuilder) Build() jtx.Op {
	return jtx.OpFunc{Label: "SetFeeTo", Fn: func(ctx context.Context, e *coreAmm.Engine) (any, error) {
		if b.recipient == nil {
			return nil, e.SetFeeTo(ctx, b.caller.ID, nil)
		}
		id := b.recipient.ID
		return nil, e.SetFeeTo(ctx, b.caller.ID, &id)
	}}
}
