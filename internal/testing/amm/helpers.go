package amm

import (
	"testing"

	coreAmm "github.com/LeJamon/goAMM/internal/core/amm"
	"github.com/LeJamon/goAMM/internal/core/ledger"
	jtx "github.com/LeJamon/goAMM/internal/testing"
)

// Standard test assets.
const (
	USD ledger.AssetID = 1
	EUR ledger.AssetID = 2
	BTC ledger.AssetID = 3
)

// AMMTestEnv wraps TestEnv with standard accounts and pool helpers.
type AMMTestEnv struct {
	*jtx.TestEnv
	T *testing.T

	Alice  *jtx.Account
	Bob    *jtx.Account
	Carol  *jtx.Account
	Setter *jtx.Account
}

// NewAMMTestEnv creates an environment with alice, bob and carol.
func NewAMMTestEnv(t *testing.T) *AMMTestEnv {
	t.Helper()
	return &AMMTestEnv{
		TestEnv: jtx.NewTestEnv(t),
		T:       t,
		Alice:   jtx.NewAccount("alice"),
		Bob:     jtx.NewAccount("bob"),
		Carol:   jtx.NewAccount("carol"),
		Setter:  jtx.SetterAccount(),
	}
}

// FundAll gives alice, bob and carol amount of each standard asset.
func (env *AMMTestEnv) FundAll(amount uint64) {
	env.T.Helper()
	for _, asset := range []ledger.AssetID{USD, EUR, BTC} {
		env.Fund(asset, amount, env.Alice, env.Bob, env.Carol)
	}
}

// CreatePool creates the (a, b) pool as alice and seeds it with her
// amountA and amountB. It returns the pool.
func (env *AMMTestEnv) CreatePool(a, b ledger.AssetID, amountA, amountB uint64) coreAmm.Pool {
	env.T.Helper()

	result := env.Submit(Create(env.Alice, a, b).Build())
	if !result.Success() {
		env.T.Fatalf("Failed to create pool %d/%d: %v", a, b, result.Err)
	}
	id := result.Value.(coreAmm.PoolID)

	result = env.Submit(Deposit(env.Alice, a, b, amountA, amountB).Build())
	if !result.Success() {
		env.T.Fatalf("Failed to seed pool %d: %v", id, result.Err)
	}
	return env.Pool(id)
}

// LiquidityOf returns acc's balance of the pool's liquidity asset.
func (env *AMMTestEnv) LiquidityOf(p coreAmm.Pool, acc *jtx.Account) uint64 {
	env.T.Helper()
	return env.Balance(acc, p.LiquidityAsset)
}

// AddResult extracts the deposit result of a successful AddLiquidity.
func AddResult(t *testing.T, result jtx.Result) coreAmm.AddLiquidityResult {
	t.Helper()
	jtx.RequireSuccess(t, result)
	res, ok := result.Value.(coreAmm.AddLiquidityResult)
	if !ok {
		t.Fatalf("%s returned %T, not an AddLiquidityResult", result.Op, result.Value)
	}
	return res
}
