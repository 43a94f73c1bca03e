package amm_test

import (
	"testing"

	coreAmm "github.com/LeJamon/goAMM/internal/core/amm"
	"github.com/LeJamon/goAMM/internal/core/events"
	"github.com/LeJamon/goAMM/internal/core/ledger"
	jtx "github.com/LeJamon/goAMM/internal/testing"
	"github.com/LeJamon/goAMM/internal/testing/amm"
	"github.com/stretchr/testify/assert"
)

// setupPool creates a USD/EUR pool seeded by alice with 1000 of each.
func setupPool(t *testing.T) (*amm.AMMTestEnv, coreAmm.Pool) {
	t.Helper()
	env := amm.NewAMMTestEnv(t)
	env.FundAll(jtx.Tokens(10000))
	p := env.CreatePool(amm.USD, amm.EUR, jtx.Tokens(1000), jtx.Tokens(1000))
	env.ResetEvents()
	return env, p
}

func TestFirstDeposit(t *testing.T) {
	env := amm.NewAMMTestEnv(t)
	env.FundAll(jtx.Tokens(10000))
	jtx.RequireSuccess(t, env.Submit(amm.Create(env.Alice, amm.USD, amm.EUR).Build()))

	result := env.Submit(amm.Deposit(env.Alice, amm.USD, amm.EUR, jtx.Tokens(1000), jtx.Tokens(1000)).Build())
	res := amm.AddResult(t, result)
	jtx.RequireKinds(t, result, events.KindMint, events.KindMint, events.KindSync, events.KindLiquidityAdded)

	p := env.Pool(1)
	assert.Equal(t, uint64(999_999_000), res.Liquidity)
	assert.Equal(t, res.Liquidity, env.LiquidityOf(p, env.Alice))
	// the minimum liquidity stays locked with the vault
	assert.Equal(t, uint64(1000), env.BalanceOf(p.Vault, p.LiquidityAsset))
	assert.Equal(t, jtx.Tokens(1000), env.Supply(p.LiquidityAsset))
	jtx.RequireReserves(t, env.TestEnv, p.ID, jtx.Tokens(1000), jtx.Tokens(1000))
	jtx.RequireBalance(t, env.TestEnv, env.Alice, amm.USD, jtx.Tokens(9000))
}

func TestFirstDepositTooSmall(t *testing.T) {
	env := amm.NewAMMTestEnv(t)
	env.FundAll(jtx.Tokens(1))
	jtx.RequireSuccess(t, env.Submit(amm.Create(env.Alice, amm.USD, amm.EUR).Build()))

	// sqrt(1000*1000) does not exceed the locked minimum
	result := env.Submit(amm.Deposit(env.Alice, amm.USD, amm.EUR, 1000, 1000).Build())
	jtx.RequireFail(t, result, coreAmm.ErrInsufficientLiquidityMinted)
	jtx.RequireBalance(t, env.TestEnv, env.Alice, amm.USD, jtx.Tokens(1))
}

func TestDepositAtRatio(t *testing.T) {
	env, p := setupPool(t)

	res := amm.AddResult(t, env.Submit(amm.Deposit(env.Bob, amm.USD, amm.EUR, jtx.Tokens(100), jtx.Tokens(200)).Build()))
	assert.Equal(t, jtx.Tokens(100), res.AmountA)
	assert.Equal(t, jtx.Tokens(100), res.AmountB)
	assert.Equal(t, jtx.Tokens(100), res.Liquidity)
	jtx.RequireReserves(t, env.TestEnv, p.ID, jtx.Tokens(1100), jtx.Tokens(1100))
	jtx.RequireBalance(t, env.TestEnv, env.Bob, amm.EUR, jtx.Tokens(9900))
}

func TestDepositReversedAssets(t *testing.T) {
	env, p := setupPool(t)

	res := amm.AddResult(t, env.Submit(amm.Deposit(env.Bob, amm.EUR, amm.USD, jtx.Tokens(50), jtx.Tokens(50)).Build()))
	assert.Equal(t, jtx.Tokens(50), res.Liquidity)
	jtx.RequireReservesMatchVault(t, env.TestEnv, p.ID)
}

func TestDepositSlippage(t *testing.T) {
	t.Run("BelowMinB", func(t *testing.T) {
		env, p := setupPool(t)
		result := env.Submit(amm.Deposit(env.Bob, amm.USD, amm.EUR, jtx.Tokens(100), jtx.Tokens(200)).
			Min(0, jtx.Tokens(150)).Build())
		jtx.RequireFail(t, result, coreAmm.ErrInsufficientBAmount)
		jtx.RequireReserves(t, env.TestEnv, p.ID, jtx.Tokens(1000), jtx.Tokens(1000))
	})

	t.Run("BelowMinA", func(t *testing.T) {
		env, _ := setupPool(t)
		result := env.Submit(amm.Deposit(env.Bob, amm.USD, amm.EUR, jtx.Tokens(200), jtx.Tokens(100)).
			Min(jtx.Tokens(150), 0).Build())
		jtx.RequireFail(t, result, coreAmm.ErrInsufficientAAmount)
	})
}

func TestDepositUnfunded(t *testing.T) {
	env, _ := setupPool(t)
	dave := jtx.NewAccount("dave")
	env.Fund(amm.USD, jtx.Tokens(100), dave)

	jtx.AssertNoBalanceChange(t, env.TestEnv, dave, amm.USD, func() {
		result := env.Submit(amm.Deposit(dave, amm.USD, amm.EUR, jtx.Tokens(100), jtx.Tokens(100)).Build())
		jtx.RequireFail(t, result, ledger.ErrInsufficientBalance)
	})
}

func TestDepositUnknownPool(t *testing.T) {
	env := amm.NewAMMTestEnv(t)
	env.FundAll(jtx.Tokens(10))
	result := env.Submit(amm.Deposit(env.Alice, amm.USD, amm.BTC, jtx.Tokens(1), jtx.Tokens(1)).Build())
	jtx.RequireFail(t, result, coreAmm.ErrInvalidPoolID)
}
