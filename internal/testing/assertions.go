package testing

import (
	"testing"

	"github.com/LeJamon/goAMM/internal/core/amm"
	"github.com/LeJamon/goAMM/internal/core/events"
	"github.com/LeJamon/goAMM/internal/core/ledger"
	"github.com/stretchr/testify/require"
)

// RequireBalance asserts that an account holds the expected amount of asset.
func RequireBalance(t *testing.T, env *TestEnv, acc *Account, asset ledger.AssetID, expected uint64) {
	t.Helper()
	actual := env.Balance(acc, asset)
	require.Equal(t, expected, actual,
		"Account %s balance of asset %d mismatch: expected %s, got %s",
		acc.Name, asset, FormatTokens(expected), FormatTokens(actual))
}

// RequireBatchBalance asserts an account's balance of a collection token.
func RequireBatchBalance(t *testing.T, env *TestEnv, acc *Account, collection ledger.CollectionID, id ledger.TokenID, expected uint64) {
	t.Helper()
	actual := env.BatchBalance(acc, collection, id)
	require.Equal(t, expected, actual,
		"Account %s balance of token %d/%d mismatch", acc.Name, collection, id)
}

// RequireReserves asserts the cached reserves of a two-asset pool.
func RequireReserves(t *testing.T, env *TestEnv, id amm.PoolID, reserve0, reserve1 uint64) {
	t.Helper()
	require.Equal(t, amm.Reserves{Reserve0: reserve0, Reserve1: reserve1}, env.Reserves(id),
		"Pool %d reserves mismatch", id)
}

// RequireReservesMatchVault asserts that a pool's cached reserves equal
// the balances its vault actually holds.
func RequireReservesMatchVault(t *testing.T, env *TestEnv, id amm.PoolID) {
	t.Helper()
	p := env.Pool(id)
	r := env.Reserves(id)
	require.Equal(t, env.BalanceOf(p.Vault, p.Asset0), r.Reserve0, "Pool %d reserve0 drifted from vault", id)
	require.Equal(t, env.BalanceOf(p.Vault, p.Asset1), r.Reserve1, "Pool %d reserve1 drifted from vault", id)
}

// RequireSuccess asserts that an operation committed.
func RequireSuccess(t *testing.T, result Result) {
	t.Helper()
	require.NoError(t, result.Err, "Expected %s to succeed", result.Op)
}

// RequireFail asserts that an operation was rejected with target and
// published nothing.
func RequireFail(t *testing.T, result Result, target error) {
	t.Helper()
	require.Error(t, result.Err, "Expected %s to fail with %v, but it succeeded", result.Op, target)
	require.ErrorIs(t, result.Err, target, "Expected %s to fail with %v, got %v", result.Op, target, result.Err)
	require.Empty(t, result.Events, "Rejected %s published events", result.Op)
}

// RequireKinds asserts the kinds of the events an operation published.
func RequireKinds(t *testing.T, result Result, kinds ...events.Kind) {
	t.Helper()
	require.Equal(t, kinds, result.Kinds(), "Unexpected events from %s", result.Op)
}

// AssertBalanceChange asserts that fn changes an account's balance of
// asset by expectedChange.
func AssertBalanceChange(t *testing.T, env *TestEnv, acc *Account, asset ledger.AssetID, expectedChange int64, fn func()) {
	t.Helper()
	before := env.Balance(acc, asset)
	fn()
	after := env.Balance(acc, asset)
	actualChange := int64(after) - int64(before)
	require.Equal(t, expectedChange, actualChange,
		"Account %s balance change mismatch: expected %d, got %d (before: %d, after: %d)",
		acc.Name, expectedChange, actualChange, before, after)
}

// AssertNoBalanceChange asserts that fn leaves an account's balance unchanged.
func AssertNoBalanceChange(t *testing.T, env *TestEnv, acc *Account, asset ledger.AssetID, fn func()) {
	t.Helper()
	AssertBalanceChange(t, env, acc, asset, 0, fn)
}
