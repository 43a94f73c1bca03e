// Package batch provides operation builders for batch pool tests.
package batch

import (
	"context"
	"testing"

	"github.com/LeJamon/goAMM/internal/core/amm"
	"github.com/LeJamon/goAMM/internal/core/ledger"
	jtx "github.com/LeJamon/goAMM/internal/testing"
)

// CreateBatchPool builds an operation creating a pool for collection
// priced in currency. Its result value is the amm.PoolID.
func CreateBatchPool(account *jtx.Account, currency ledger.AssetID, collection ledger.CollectionID) jtx.Op {
	return jtx.OpFunc{Label: "CreateBatchPool", Fn: func(ctx context.Context, e *amm.Engine) (any, error) {
		return e.CreateBatchPool(ctx, account.ID, currency, collection)
	}}
}

// TradeBuilder provides a fluent interface for building buys and sells.
// Tokens must be added in ascending id order.
type TradeBuilder struct {
	account *jtx.Account
	to      *jtx.Account
	pool    amm.PoolID
	buy     bool
	limit   uint64
	ids     []ledger.TokenID
	amounts []uint64
}

// Buy creates a TradeBuilder spending at most maxCurrency.
func Buy(account *jtx.Account, pool amm.PoolID, maxCurrency uint64) *TradeBuilder {
	return &TradeBuilder{account: account, pool: pool, buy: true, limit: maxCurrency}
}

// Sell creates a TradeBuilder receiving at least minCurrency.
func Sell(account *jtx.Account, pool amm.PoolID, minCurrency uint64) *TradeBuilder {
	return &TradeBuilder{account: account, pool: pool, limit: minCurrency}
}

// Token adds amount of id to the trade.
func (b *TradeBuilder) Token(id ledger.TokenID, amount uint64) *TradeBuilder {
	b.ids = append(b.ids, id)
	b.amounts = append(b.amounts, amount)
	return b
}

// To sets the recipient of the traded tokens or currency.
func (b *TradeBuilder) To(acc *jtx.Account) *TradeBuilder {
	b.to = acc
	return b
}

// Build creates the operation. Its result value is the amm.TradeResult.
func (b *TradeBuilder) Build() jtx.Op {
	to := b.account.ID
	if b.to != nil {
		to = b.to.ID
	}
	if b.buy {
		params := amm.BuyParams{PoolID: b.pool, TokenIDs: b.ids, Amounts: b.amounts, MaxCurrency: b.limit, To: to}
		return jtx.OpFunc{Label: "Buy", Fn: func(ctx context.Context, e *amm.Engine) (any, error) {
			return e.Buy(ctx, b.account.ID, params)
		}}
	}
	params := amm.SellParams{PoolID: b.pool, TokenIDs: b.ids, Amounts: b.amounts, MinCurrency: b.limit, To: to}
	return jtx.OpFunc{Label: "Sell", Fn: func(ctx context.Context, e *amm.Engine) (any, error) {
		return e.Sell(ctx, b.account.ID, params)
	}}
}

// DepositBuilder provides a fluent interface for building batch deposits.
type DepositBuilder struct {
	account *jtx.Account
	params  amm.BatchAddParams
}

// Deposit creates a new DepositBuilder.
func Deposit(account *jtx.Account, pool amm.PoolID) *DepositBuilder {
	return &DepositBuilder{account: account, params: amm.BatchAddParams{PoolID: pool}}
}

// Token deposits amount of id with at most maxCurrency of currency.
func (b *DepositBuilder) Token(id ledger.TokenID, amount, maxCurrency uint64) *DepositBuilder {
	b.params.TokenIDs = append(b.params.TokenIDs, id)
	b.params.TokenAmounts = append(b.params.TokenAmounts, amount)
	b.params.MaxCurrency = append(b.params.MaxCurrency, maxCurrency)
	return b
}

// Build creates the operation. Its result value is the amm.BatchLiquidityResult.
func (b *DepositBuilder) Build() jtx.Op {
	return jtx.OpFunc{Label: "AddLiquidityBatch", Fn: func(ctx context.Context, e *amm.Engine) (any, error) {
		return e.AddLiquidityBatch(ctx, b.account.ID, b.params)
	}}
}

// WithdrawBuilder provides a fluent interface for building batch withdrawals.
type WithdrawBuilder struct {
	account *jtx.Account
	params  amm.BatchRemoveParams
}

// Withdraw creates a new WithdrawBuilder paying out to account.
func Withdraw(account *jtx.Account, pool amm.PoolID) *WithdrawBuilder {
	return &WithdrawBuilder{account: account, params: amm.BatchRemoveParams{PoolID: pool, To: account.ID}}
}

// Token burns liquidity of id, requiring at least minCurrency and minTokens back.
func (b *WithdrawBuilder) Token(id ledger.TokenID, liquidity, minCurrency, minTokens uint64) *WithdrawBuilder {
	b.params.TokenIDs = append(b.params.TokenIDs, id)
	b.params.Liquidity = append(b.params.Liquidity, liquidity)
	b.params.MinCurrency = append(b.params.MinCurrency, minCurrency)
	b.params.MinTokens = append(b.params.MinTokens, minTokens)
	return b
}

// To sets the recipient of the withdrawn currency and tokens.
func (b *WithdrawBuilder) To(acc *jtx.Account) *WithdrawBuilder {
	b.params.To = acc.ID
	return b
}

// Build creates the operation. Its result value is the amm.BatchLiquidityResult.
func (b *WithdrawBuilder) Build() jtx.Op {
	return jtx.OpFunc{Label: "RemoveLiquidityBatch", Fn: func(ctx context.Context, e *amm.Engine) (any, error) {
		return e.RemoveLiquidityBatch(ctx, b.account.ID, b.params)
	}}
}

// TradeResult extracts the result of a successful buy or sell.
func TradeResult(t *testing.T, result jtx.Result) amm.TradeResult {
	t.Helper()
	jtx.RequireSuccess(t, result)
	res, ok := result.Value.(amm.TradeResult)
	if !ok {
		t.Fatalf("%s returned %T, not a TradeResult", result.Op, result.Value)
	}
	return res
}

// LiquidityResult extracts the result of a successful batch deposit or withdrawal.
func LiquidityResult(t *testing.T, result jtx.Result) amm.BatchLiquidityResult {
	t.Helper()
	jtx.RequireSuccess(t, result)
	res, ok := result.Value.(amm.BatchLiquidityResult)
	if !ok {
		t.Fatalf("%s returned %T, not a BatchLiquidityResult", result.Op, result.Value)
	}
	return res
}

// RequireTokenReserveMatchesVault asserts that the token reserve of id is
// exactly what the vault holds of it.
func RequireTokenReserveMatchesVault(t *testing.T, env *jtx.TestEnv, pool amm.PoolID, id ledger.TokenID) {
	t.Helper()
	bp := env.BatchPool(pool)
	r := env.BatchReserve(pool, id)
	vault, err := env.Engine().BatchBalanceOf(env.Context(), bp.Collection, id, bp.Vault)
	if err != nil {
		t.Fatal(err)
	}
	if vault != r.Tokens {
		t.Fatalf("token %d reserve %d, vault holds %d", id, r.Tokens, vault)
	}
}
