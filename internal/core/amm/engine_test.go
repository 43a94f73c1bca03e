package amm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/LeJamon/goAMM/internal/core/amm"
	"github.com/LeJamon/goAMM/internal/core/events"
	"github.com/LeJamon/goAMM/internal/core/events/mock_events"
	"github.com/LeJamon/goAMM/internal/core/ledger"
	"github.com/LeJamon/goAMM/internal/core/state"
	"github.com/LeJamon/goAMM/internal/storage/keyValueDb/memory"
	"github.com/golang/mock/gomock"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	assetA ledger.AssetID = 1
	assetB ledger.AssetID = 2
	assetC ledger.AssetID = 3
)

var (
	alice  = ledger.AccountFromName("alice")
	bob    = ledger.AccountFromName("bob")
	setter = ledger.AccountFromName("setter")
	feeBox = ledger.AccountFromName("fee-recipient")
)

type fixture struct {
	ctx      context.Context
	engine   *amm.Engine
	recorder *events.Recorder
}

func newFixture(t *testing.T, opts ...amm.Option) *fixture {
	t.Helper()
	store, err := state.NewStore(memory.NewDB())
	require.NoError(t, err)

	cfg := amm.DefaultConfig()
	cfg.FeeToSetter = setter

	rec := events.NewRecorder()
	engine, err := amm.New(store, cfg, append([]amm.Option{amm.WithSink(rec)}, opts...)...)
	require.NoError(t, err)
	return &fixture{ctx: context.Background(), engine: engine, recorder: rec}
}

func (f *fixture) fund(t *testing.T, who ledger.AccountID, amounts map[ledger.AssetID]uint64) {
	t.Helper()
	for asset, amount := range amounts {
		require.NoError(t, f.engine.Fund(f.ctx, asset, who, amount))
	}
}

func (f *fixture) balance(t *testing.T, asset ledger.AssetID, who ledger.AccountID) uint64 {
	t.Helper()
	v, err := f.engine.BalanceOf(f.ctx, asset, who)
	require.NoError(t, err)
	return v
}

// seedPool creates the (a, b) pool and deposits ra/rb from alice.
func (f *fixture) seedPool(t *testing.T, a, b ledger.AssetID, ra, rb uint64) amm.Pool {
	t.Helper()
	f.fund(t, alice, map[ledger.AssetID]uint64{a: ra, b: rb})
	id, err := f.engine.CreatePool(f.ctx, alice, a, b)
	require.NoError(t, err)
	_, err = f.engine.AddLiquidity(f.ctx, alice, amm.AddLiquidityParams{
		AssetA: a, AssetB: b, AmountADesired: ra, AmountBDesired: rb,
	})
	require.NoError(t, err)
	p, err := f.engine.Pool(f.ctx, id)
	require.NoError(t, err)
	f.recorder.Reset()
	return p
}

func TestCreatePool(t *testing.T) {
	f := newFixture(t)

	id, err := f.engine.CreatePool(f.ctx, alice, assetB, assetA)
	require.NoError(t, err)
	assert.Equal(t, amm.PoolID(1), id)

	p, err := f.engine.Pool(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, assetA, p.Asset0)
	assert.Equal(t, assetB, p.Asset1)
	assert.Equal(t, ledger.AssetID(1<<32), p.LiquidityAsset)
	assert.Equal(t, uint64(997), p.FeeMultiplier)
	assert.Equal(t, alice, p.Creator)
	assert.False(t, p.Vault.IsZero())

	byAssets, err := f.engine.PoolByAssets(f.ctx, assetA, assetB)
	require.NoError(t, err)
	assert.Equal(t, p, byAssets)

	r, err := f.engine.Reserves(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, amm.Reserves{}, r)

	assert.Equal(t, []events.Kind{events.KindPoolCreated}, f.recorder.Kinds())

	_, err = f.engine.CreatePool(f.ctx, bob, assetA, assetB)
	assert.ErrorIs(t, err, amm.ErrPoolAlreadyExists)

	_, err = f.engine.CreatePool(f.ctx, bob, assetC, assetC)
	assert.ErrorIs(t, err, amm.ErrSameAsset)

	id2, err := f.engine.CreatePool(f.ctx, bob, assetC, assetA)
	require.NoError(t, err)
	assert.Equal(t, amm.PoolID(2), id2)

	p2, err := f.engine.Pool(f.ctx, id2)
	require.NoError(t, err)
	assert.Equal(t, ledger.AssetID(1<<32+1), p2.LiquidityAsset)
	assert.NotEqual(t, p.Vault, p2.Vault)

	pools, err := f.engine.Pools(f.ctx)
	require.NoError(t, err)
	assert.Len(t, pools, 2)

	_, err = f.engine.Pool(f.ctx, 99)
	assert.ErrorIs(t, err, amm.ErrInvalidPoolID)
}

func TestFirstDeposit(t *testing.T) {
	f := newFixture(t)
	f.fund(t, alice, map[ledger.AssetID]uint64{assetA: 1_000_000, assetB: 1_000_000})
	id, err := f.engine.CreatePool(f.ctx, alice, assetA, assetB)
	require.NoError(t, err)
	f.recorder.Reset()

	res, err := f.engine.AddLiquidity(f.ctx, alice, amm.AddLiquidityParams{
		AssetA: assetA, AssetB: assetB, AmountADesired: 1_000_000, AmountBDesired: 1_000_000,
	})
	require.NoError(t, err)
	assert.Equal(t, amm.AddLiquidityResult{AmountA: 1_000_000, AmountB: 1_000_000, Liquidity: 999_000}, res)

	p, err := f.engine.Pool(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(999_000), f.balance(t, p.LiquidityAsset, alice))
	assert.Equal(t, uint64(1000), f.balance(t, p.LiquidityAsset, p.Vault))

	supply, err := f.engine.TotalSupply(f.ctx, p.LiquidityAsset)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), supply)

	r, err := f.engine.Reserves(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, amm.Reserves{Reserve0: 1_000_000, Reserve1: 1_000_000}, r)

	assert.Equal(t, []events.Kind{
		events.KindMint, events.KindMint, events.KindSync, events.KindLiquidityAdded,
	}, f.recorder.Kinds())
}

func TestFirstDepositTooSmall(t *testing.T) {
	f := newFixture(t)
	f.fund(t, alice, map[ledger.AssetID]uint64{assetA: 1000, assetB: 1000})
	_, err := f.engine.CreatePool(f.ctx, alice, assetA, assetB)
	require.NoError(t, err)

	_, err = f.engine.AddLiquidity(f.ctx, alice, amm.AddLiquidityParams{
		AssetA: assetA, AssetB: assetB, AmountADesired: 1000, AmountBDesired: 1000,
	})
	assert.ErrorIs(t, err, amm.ErrInsufficientLiquidityMinted)
	assert.Equal(t, uint64(1000), f.balance(t, assetA, alice))
}

func TestAddLiquidityAtRatio(t *testing.T) {
	f := newFixture(t)
	p := f.seedPool(t, assetA, assetB, 1_000_000, 2_000_000)
	f.fund(t, bob, map[ledger.AssetID]uint64{assetA: 10_000, assetB: 10_000})

	res, err := f.engine.AddLiquidity(f.ctx, bob, amm.AddLiquidityParams{
		AssetA: assetA, AssetB: assetB, AmountADesired: 10_000, AmountBDesired: 10_000,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), res.AmountA)
	assert.Equal(t, uint64(10_000), res.AmountB)

	// supply is sqrt(2e12) = 1414213; 5000*1414213/1e6
	assert.Equal(t, uint64(7071), res.Liquidity)
	assert.Equal(t, uint64(7071), f.balance(t, p.LiquidityAsset, bob))
	assert.Equal(t, uint64(5000), f.balance(t, assetA, bob))

	ra, rb, err := f.engine.GetReserves(f.ctx, assetB, assetA)
	require.NoError(t, err)
	assert.Equal(t, uint64(2_010_000), ra)
	assert.Equal(t, uint64(1_005_000), rb)
}

func TestAddLiquiditySlippage(t *testing.T) {
	f := newFixture(t)
	p := f.seedPool(t, assetA, assetB, 1_000_000, 1_000_000)
	f.fund(t, bob, map[ledger.AssetID]uint64{assetA: 1000, assetB: 2000})

	_, err := f.engine.AddLiquidity(f.ctx, bob, amm.AddLiquidityParams{
		AssetA: assetA, AssetB: assetB,
		AmountADesired: 1000, AmountBDesired: 2000,
		AmountBMin: 1500,
	})
	assert.ErrorIs(t, err, amm.ErrInsufficientBAmount)

	_, err = f.engine.AddLiquidity(f.ctx, bob, amm.AddLiquidityParams{
		AssetA: assetA, AssetB: assetB,
		AmountADesired: 2000, AmountBDesired: 1000,
		AmountAMin: 1500,
	})
	assert.ErrorIs(t, err, amm.ErrInsufficientAAmount)

	assert.Equal(t, uint64(1000), f.balance(t, assetA, bob))
	assert.Equal(t, uint64(2000), f.balance(t, assetB, bob))
	assert.Zero(t, f.balance(t, p.LiquidityAsset, bob))
	assert.Empty(t, f.recorder.Events())

	r, err := f.engine.Reserves(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, amm.Reserves{Reserve0: 1_000_000, Reserve1: 1_000_000}, r)
}

func TestAddLiquidityInsufficientBalance(t *testing.T) {
	f := newFixture(t)
	f.seedPool(t, assetA, assetB, 1_000_000, 1_000_000)
	f.fund(t, bob, map[ledger.AssetID]uint64{assetA: 1000})

	_, err := f.engine.AddLiquidity(f.ctx, bob, amm.AddLiquidityParams{
		AssetA: assetA, AssetB: assetB, AmountADesired: 1000, AmountBDesired: 1000,
	})
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	assert.Equal(t, uint64(1000), f.balance(t, assetA, bob))
}

func TestRemoveLiquidityRoundTrip(t *testing.T) {
	f := newFixture(t)
	p := f.seedPool(t, assetA, assetB, 1_000_000, 1_000_000)

	amountA, amountB, err := f.engine.RemoveLiquidity(f.ctx, alice, amm.RemoveLiquidityParams{
		AssetA: assetA, AssetB: assetB, Liquidity: 999_000, To: bob,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(999_000), amountA)
	assert.Equal(t, uint64(999_000), amountB)
	assert.Equal(t, uint64(999_000), f.balance(t, assetA, bob))
	assert.Equal(t, uint64(999_000), f.balance(t, assetB, bob))
	assert.Zero(t, f.balance(t, p.LiquidityAsset, alice))

	supply, err := f.engine.TotalSupply(f.ctx, p.LiquidityAsset)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), supply)

	r, err := f.engine.Reserves(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, amm.Reserves{Reserve0: 1000, Reserve1: 1000}, r)

	assert.Equal(t, []events.Kind{events.KindBurn, events.KindSync, events.KindLiquidityRemoved}, f.recorder.Kinds())
}

func TestRemoveLiquidityMinimums(t *testing.T) {
	f := newFixture(t)
	p := f.seedPool(t, assetA, assetB, 1_000_000, 1_000_000)

	_, _, err := f.engine.RemoveLiquidity(f.ctx, alice, amm.RemoveLiquidityParams{
		AssetA: assetA, AssetB: assetB, Liquidity: 1000, AmountBMin: 1001, To: alice,
	})
	assert.ErrorIs(t, err, amm.ErrInsufficientBAmount)

	_, _, err = f.engine.RemoveLiquidity(f.ctx, alice, amm.RemoveLiquidityParams{
		AssetA: assetA, AssetB: assetB, Liquidity: 0, To: alice,
	})
	assert.ErrorIs(t, err, amm.ErrInsufficientLiquidityBurned)

	_, _, err = f.engine.RemoveLiquidity(f.ctx, bob, amm.RemoveLiquidityParams{
		AssetA: assetA, AssetB: assetB, Liquidity: 10, To: bob,
	})
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	assert.Equal(t, uint64(999_000), f.balance(t, p.LiquidityAsset, alice))
	assert.Empty(t, f.recorder.Events())
}

func TestSwapExactIn(t *testing.T) {
	f := newFixture(t)
	p := f.seedPool(t, assetA, assetB, 1_000_000, 1_000_000)
	f.fund(t, bob, map[ledger.AssetID]uint64{assetA: 1000})

	amounts, err := f.engine.SwapExactIn(f.ctx, bob, 1000, 996, []ledger.AssetID{assetA, assetB}, bob)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1000, 996}, amounts)
	assert.Zero(t, f.balance(t, assetA, bob))
	assert.Equal(t, uint64(996), f.balance(t, assetB, bob))

	r, err := f.engine.Reserves(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, amm.Reserves{Reserve0: 1_001_000, Reserve1: 999_004}, r)

	before := uint256.NewInt(1_000_000 * 1_000_000)
	after := new(uint256.Int).Mul(uint256.NewInt(r.Reserve0), uint256.NewInt(r.Reserve1))
	assert.False(t, after.Lt(before))

	evs := f.recorder.Events()
	require.Len(t, evs, 2)
	assert.Equal(t, events.Swap{
		PoolID: uint32(p.ID), Sender: bob, To: bob,
		Amount0In: 1000, Amount1Out: 996,
	}, evs[1])
}

func TestSwapExactInSlippage(t *testing.T) {
	f := newFixture(t)
	f.seedPool(t, assetA, assetB, 1_000_000, 1_000_000)
	f.fund(t, bob, map[ledger.AssetID]uint64{assetA: 1000})

	_, err := f.engine.SwapExactIn(f.ctx, bob, 1000, 997, []ledger.AssetID{assetA, assetB}, bob)
	assert.ErrorIs(t, err, amm.ErrInsufficientOutputAmount)
	assert.Equal(t, uint64(1000), f.balance(t, assetA, bob))
	assert.Empty(t, f.recorder.Events())
}

func TestSwapExactOut(t *testing.T) {
	f := newFixture(t)
	f.seedPool(t, assetA, assetB, 1_000_000, 1_000_000)
	f.fund(t, bob, map[ledger.AssetID]uint64{assetB: 5000})

	_, err := f.engine.SwapExactOut(f.ctx, bob, 996, 999, []ledger.AssetID{assetB, assetA}, alice)
	assert.ErrorIs(t, err, amm.ErrExcessiveInputAmount)

	amounts, err := f.engine.SwapExactOut(f.ctx, bob, 996, 1000, []ledger.AssetID{assetB, assetA}, alice)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1000, 996}, amounts)
	assert.Equal(t, uint64(4000), f.balance(t, assetB, bob))
	assert.Equal(t, uint64(996), f.balance(t, assetA, alice))
}

func TestSwapMultiHop(t *testing.T) {
	f := newFixture(t)
	ab := f.seedPool(t, assetA, assetB, 1_000_000, 1_000_000)
	bc := f.seedPool(t, assetB, assetC, 1_000_000, 1_000_000)
	f.fund(t, bob, map[ledger.AssetID]uint64{assetA: 1000})

	path := []ledger.AssetID{assetA, assetB, assetC}
	quoted, err := f.engine.GetAmountsOut(f.ctx, 1000, path)
	require.NoError(t, err)

	second, err := amm.GetAmountOut(996, 1_000_000, 1_000_000, 997)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1000, 996, second}, quoted)

	amounts, err := f.engine.SwapExactIn(f.ctx, bob, 1000, 0, path, bob)
	require.NoError(t, err)
	assert.Equal(t, quoted, amounts)
	assert.Equal(t, second, f.balance(t, assetC, bob))
	assert.Zero(t, f.balance(t, assetB, bob))

	r, err := f.engine.Reserves(f.ctx, ab.ID)
	require.NoError(t, err)
	assert.Equal(t, amm.Reserves{Reserve0: 1_001_000, Reserve1: 999_004}, r)

	r, err = f.engine.Reserves(f.ctx, bc.ID)
	require.NoError(t, err)
	assert.Equal(t, amm.Reserves{Reserve0: 1_000_996, Reserve1: 1_000_000 - second}, r)

	in, err := f.engine.GetAmountsIn(f.ctx, 500, []ledger.AssetID{assetC, assetB, assetA})
	require.NoError(t, err)
	require.Len(t, in, 3)
	assert.Equal(t, uint64(500), in[2])
}

func TestSwapInvalidPath(t *testing.T) {
	f := newFixture(t)
	f.seedPool(t, assetA, assetB, 1_000_000, 1_000_000)

	tests := []struct {
		name string
		path []ledger.AssetID
	}{
		{name: "single asset", path: []ledger.AssetID{assetA}},
		{name: "repeated asset", path: []ledger.AssetID{assetA, assetA}},
		{name: "missing pool", path: []ledger.AssetID{assetA, assetC}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.GetAmountsOut(f.ctx, 1000, tt.path)
			assert.ErrorIs(t, err, amm.ErrInvalidPath)
		})
	}
}

func TestSwapPrimitive(t *testing.T) {
	f := newFixture(t)
	p := f.seedPool(t, assetA, assetB, 1_000_000, 1_000_000)
	f.fund(t, bob, map[ledger.AssetID]uint64{assetA: 1000})

	err := f.engine.Swap(f.ctx, bob, p.ID, 0, 0, bob)
	assert.ErrorIs(t, err, amm.ErrInsufficientOutAmount)

	err = f.engine.Swap(f.ctx, bob, p.ID, 0, 1_000_000, bob)
	assert.ErrorIs(t, err, amm.ErrInsufficientLiquidity)

	err = f.engine.Swap(f.ctx, bob, p.ID, 0, 10, bob)
	assert.ErrorIs(t, err, amm.ErrInsufficientInputAmount)

	require.NoError(t, f.engine.Transfer(f.ctx, assetA, bob, p.Vault, 1000))

	err = f.engine.Swap(f.ctx, bob, p.ID, 0, 997, bob)
	assert.ErrorIs(t, err, amm.ErrAdjusted)
	assert.Zero(t, f.balance(t, assetB, bob))

	require.NoError(t, f.engine.Swap(f.ctx, bob, p.ID, 0, 996, bob))
	assert.Equal(t, uint64(996), f.balance(t, assetB, bob))
}

func TestSyncIdempotent(t *testing.T) {
	f := newFixture(t)
	p := f.seedPool(t, assetA, assetB, 1_000_000, 1_000_000)
	f.fund(t, bob, map[ledger.AssetID]uint64{assetA: 500})
	require.NoError(t, f.engine.Transfer(f.ctx, assetA, bob, p.Vault, 500))

	require.NoError(t, f.engine.Sync(f.ctx, p.ID))
	first, err := f.engine.Reserves(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, amm.Reserves{Reserve0: 1_000_500, Reserve1: 1_000_000}, first)

	require.NoError(t, f.engine.Sync(f.ctx, p.ID))
	second, err := f.engine.Reserves(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.ErrorIs(t, f.engine.Sync(f.ctx, 42), amm.ErrInvalidPoolID)
}

func TestSetFeeTo(t *testing.T) {
	f := newFixture(t)

	err := f.engine.SetFeeTo(f.ctx, bob, &feeBox)
	assert.ErrorIs(t, err, amm.ErrPermissionDenied)

	require.NoError(t, f.engine.SetFeeTo(f.ctx, setter, &feeBox))
	to, ok, err := f.engine.FeeTo(f.ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, feeBox, to)

	require.NoError(t, f.engine.SetFeeTo(f.ctx, setter, nil))
	_, ok, err = f.engine.FeeTo(f.ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []events.Event{
		events.SetFeeTo{Setter: setter, FeeTo: feeBox, Enabled: true},
		events.SetFeeTo{Setter: setter},
	}, f.recorder.Events())
}

func TestSetFeeToWithoutSetter(t *testing.T) {
	store, err := state.NewStore(memory.NewDB())
	require.NoError(t, err)
	engine, err := amm.New(store, amm.DefaultConfig())
	require.NoError(t, err)

	var zero ledger.AccountID
	assert.ErrorIs(t, engine.SetFeeTo(context.Background(), zero, &feeBox), amm.ErrPermissionDenied)
}

func TestProtocolFee(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.SetFeeTo(f.ctx, setter, &feeBox))
	p := f.seedPool(t, assetA, assetB, 1_000_000, 1_000_000)

	k, err := f.engine.KLast(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1_000_000_000_000), k)

	f.fund(t, bob, map[ledger.AssetID]uint64{assetA: 100_000})
	_, err = f.engine.SwapExactIn(f.ctx, bob, 100_000, 0, []ledger.AssetID{assetA, assetB}, bob)
	require.NoError(t, err)
	assert.Zero(t, f.balance(t, p.LiquidityAsset, feeBox))

	// reserves 1100000/909339: sqrt(k) grew 1000000 -> 1000136
	_, _, err = f.engine.RemoveLiquidity(f.ctx, alice, amm.RemoveLiquidityParams{
		AssetA: assetA, AssetB: assetB, Liquidity: 1000, To: alice,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(22), f.balance(t, p.LiquidityAsset, feeBox))

	r, err := f.engine.Reserves(f.ctx, p.ID)
	require.NoError(t, err)
	k, err = f.engine.KLast(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, new(uint256.Int).Mul(uint256.NewInt(r.Reserve0), uint256.NewInt(r.Reserve1)), k)

	// Turning the fee off clears the checkpoint on the next liquidity event
	require.NoError(t, f.engine.SetFeeTo(f.ctx, setter, nil))
	_, _, err = f.engine.RemoveLiquidity(f.ctx, alice, amm.RemoveLiquidityParams{
		AssetA: assetA, AssetB: assetB, Liquidity: 1000, To: alice,
	})
	require.NoError(t, err)
	k, err = f.engine.KLast(f.ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, k.IsZero())
	assert.Equal(t, uint64(22), f.balance(t, p.LiquidityAsset, feeBox))
}

func TestProtocolFeeOff(t *testing.T) {
	f := newFixture(t)
	p := f.seedPool(t, assetA, assetB, 1_000_000, 1_000_000)

	k, err := f.engine.KLast(f.ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, k.IsZero())
}

func TestSinkFailureKeepsState(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mock_events.NewMockSink(ctrl)
	sink.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("sink down")).Times(2)

	store, err := state.NewStore(memory.NewDB())
	require.NoError(t, err)
	engine, err := amm.New(store, amm.DefaultConfig(), amm.WithSink(sink))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, engine.Fund(ctx, assetA, alice, 10))
	id, err := engine.CreatePool(ctx, alice, assetA, assetB)
	require.NoError(t, err)
	_, err = engine.CreatePool(ctx, alice, assetA, assetC)
	require.NoError(t, err)

	p, err := engine.Pool(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)

	bal, err := engine.BalanceOf(ctx, assetA, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), bal)
}

func TestRejectedOperationEmitsNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mock_events.NewMockSink(ctrl)
	sink.EXPECT().Emit(gomock.Any(), gomock.Any()).Times(0)

	store, err := state.NewStore(memory.NewDB())
	require.NoError(t, err)
	engine, err := amm.New(store, amm.DefaultConfig(), amm.WithSink(sink))
	require.NoError(t, err)

	_, err = engine.CreatePool(context.Background(), alice, assetA, assetA)
	assert.ErrorIs(t, err, amm.ErrSameAsset)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	store, err := state.NewStore(memory.NewDB())
	require.NoError(t, err)

	cfg := amm.DefaultConfig()
	cfg.FeeMultiplier = 1001
	_, err = amm.New(store, cfg)
	assert.ErrorIs(t, err, amm.ErrInvalidConfig)
}

func TestCreatePoolRejectsReservedAsset(t *testing.T) {
	f := newFixture(t)
	reserved := ledger.AssetID(1 << 32)

	_, err := f.engine.CreatePool(f.ctx, alice, assetA, reserved)
	assert.ErrorIs(t, err, amm.ErrReservedID)
	assert.ErrorIs(t, f.engine.Fund(f.ctx, reserved, alice, 1), amm.ErrReservedID)
	assert.Empty(t, f.recorder.Events())

	p := f.seedPool(t, assetA, assetB, 1_000_000, 1_000_000)
	assert.Equal(t, reserved, p.LiquidityAsset)

	// An issued liquidity token may back another pool
	f.fund(t, alice, map[ledger.AssetID]uint64{assetC: 1_000_000})
	id, err := f.engine.CreatePool(f.ctx, alice, assetC, p.LiquidityAsset)
	require.NoError(t, err)
	nested, err := f.engine.Pool(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, ledger.AssetID(1<<32+1), nested.LiquidityAsset)

	res, err := f.engine.AddLiquidity(f.ctx, alice, amm.AddLiquidityParams{
		AssetA: assetC, AssetB: p.LiquidityAsset, AmountADesired: 1_000_000, AmountBDesired: 999_000,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(998_499), res.Liquidity)
}

func TestLiquidityAssetSkipsHeldIDs(t *testing.T) {
	ctx := context.Background()
	store, err := state.NewStore(memory.NewDB())
	require.NoError(t, err)
	require.NoError(t, ledger.NewFungible(store.View(ctx)).Mint(1<<32, bob, 5))

	engine, err := amm.New(store, amm.DefaultConfig())
	require.NoError(t, err)
	f := &fixture{ctx: ctx, engine: engine, recorder: events.NewRecorder()}

	p := f.seedPool(t, assetA, assetB, 1_000_000, 1_000_000)
	assert.Equal(t, ledger.AssetID(1<<32+1), p.LiquidityAsset)
	assert.Equal(t, uint64(999_000), f.balance(t, p.LiquidityAsset, alice))
	assert.Equal(t, uint64(5), f.balance(t, 1<<32, bob))

	r, err := f.engine.Reserves(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, amm.Reserves{Reserve0: 1_000_000, Reserve1: 1_000_000}, r)
}

func TestRemoveLiquidityDefaultsRecipient(t *testing.T) {
	f := newFixture(t)
	f.seedPool(t, assetA, assetB, 1_000_000, 1_000_000)

	_, _, err := f.engine.RemoveLiquidity(f.ctx, alice, amm.RemoveLiquidityParams{
		AssetA: assetA, AssetB: assetB, Liquidity: 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), f.balance(t, assetA, alice))
	assert.Equal(t, uint64(1000), f.balance(t, assetB, alice))
	assert.Zero(t, f.balance(t, assetA, ledger.AccountID{}))
}
