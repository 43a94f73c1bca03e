package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/LeJamon/goAMM/internal/core/amm"
	"github.com/LeJamon/goAMM/internal/core/events"
	"github.com/LeJamon/goAMM/internal/core/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// persistentEnv points every command of a test at one bbolt store and one
// sqlite events table so state carries across invocations.
func persistentEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AMMD_STORAGE_BACKEND", "bbolt")
	t.Setenv("AMMD_STORAGE_PATH", filepath.Join(dir, "state"))
	t.Setenv("AMMD_EVENTS_SINK", "sqlite")
	t.Setenv("AMMD_EVENTS_PATH", filepath.Join(dir, "events.db"))
	t.Setenv("AMMD_LOG_LEVEL", "error")
	t.Setenv("AMMD_ENGINE_FEE_TO_SETTER", ledger.AccountFromName("setter").String())
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, v any, args ...string) {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, out)
	if v != nil {
		require.NoError(t, json.Unmarshal([]byte(out), v), out)
	}
}

func TestParseAccount(t *testing.T) {
	alice := ledger.AccountFromName("alice")

	got, err := parseAccount(alice.String())
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	got, err = parseAccount("0x" + alice.String())
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	got, err = parseAccount("alice")
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	_, err = parseAccount("")
	assert.Error(t, err)
}

func TestParseLists(t *testing.T) {
	ids, err := parseTokenIDs([]string{"1", "5"})
	require.NoError(t, err)
	assert.Equal(t, []ledger.TokenID{1, 5}, ids)

	_, err = parseUints("amount", []string{"1", "-2"})
	assert.Error(t, err)

	_, err = parsePoolID("4294967296")
	assert.Error(t, err)
}

func TestPoolLifecycle(t *testing.T) {
	persistentEnv(t)

	mustRun(t, nil, "ledger", "mint", "1", "1000000", "--to", "alice")
	mustRun(t, nil, "ledger", "mint", "2", "1000000", "--to", "alice")

	var pool amm.Pool
	mustRun(t, &pool, "pool", "create", "2", "1", "--creator", "alice")
	assert.Equal(t, amm.PoolID(1), pool.ID)
	assert.Equal(t, ledger.AssetID(1), pool.Asset0)

	var added amm.AddLiquidityResult
	mustRun(t, &added, "liquidity", "add", "1", "2", "1000000", "1000000", "--provider", "alice")
	assert.Equal(t, uint64(999000), added.Liquidity)

	var quote struct{ Amounts []uint64 }
	mustRun(t, &quote, "quote", "out", "1000", "1", "2")
	assert.Equal(t, []uint64{1000, 996}, quote.Amounts)

	mustRun(t, nil, "ledger", "mint", "1", "1000", "--to", "bob")
	var swapped struct{ Amounts []uint64 }
	mustRun(t, &swapped, "swap", "exact-in", "1000", "996", "1", "2", "--sender", "bob")
	assert.Equal(t, []uint64{1000, 996}, swapped.Amounts)

	var bal balanceView
	mustRun(t, &bal, "ledger", "balance", "2", "--account", "bob")
	assert.Equal(t, uint64(996), bal.Balance)

	var shown struct {
		Reserves amm.Reserves
		KLast    string
	}
	mustRun(t, &shown, "pool", "show", "1")
	assert.Equal(t, amm.Reserves{Reserve0: 1001000, Reserve1: 999004}, shown.Reserves)
	assert.Equal(t, "0", shown.KLast)

	var recent []events.StoredEvent
	mustRun(t, &recent, "events", "list", "--pool", "1", "--limit", "1")
	require.Len(t, recent, 1)
	assert.Equal(t, events.KindSwap, recent[0].Kind)
}

func TestSwapSlippageFails(t *testing.T) {
	persistentEnv(t)

	mustRun(t, nil, "ledger", "mint", "1", "1000000", "--to", "alice")
	mustRun(t, nil, "ledger", "mint", "2", "1000000", "--to", "alice")
	mustRun(t, nil, "pool", "create", "1", "2", "--creator", "alice")
	mustRun(t, nil, "liquidity", "add", "1", "2", "1000000", "1000000", "--provider", "alice")

	_, err := run(t, "swap", "exact-in", "1000", "997", "1", "2", "--sender", "alice")
	assert.ErrorIs(t, err, amm.ErrInsufficientOutputAmount)
}

func TestFeeCommands(t *testing.T) {
	persistentEnv(t)

	var view struct{ Enabled bool }
	mustRun(t, &view, "fee", "show")
	assert.False(t, view.Enabled)

	_, err := run(t, "fee", "set-to", "carol", "--caller", "mallory")
	assert.ErrorIs(t, err, amm.ErrPermissionDenied)

	_, err = run(t, "fee", "set-to", "--caller", "setter")
	assert.Error(t, err)

	mustRun(t, &view, "fee", "set-to", "carol", "--caller", "setter")
	assert.True(t, view.Enabled)

	mustRun(t, &view, "fee", "set-to", "--disable", "--caller", "setter")
	assert.False(t, view.Enabled)
}

func TestBatchCommands(t *testing.T) {
	persistentEnv(t)

	mustRun(t, nil, "ledger", "mint", "10", "5000000", "--to", "alice")
	mustRun(t, nil, "ledger", "mint-batch", "1", "100", "--to", "alice", "--collection", "7")

	var bp amm.BatchPool
	mustRun(t, &bp, "batch", "create", "10", "7", "--account", "alice")
	assert.Equal(t, ledger.CollectionID(7), bp.Collection)

	var added amm.BatchLiquidityResult
	mustRun(t, &added, "batch", "add", "1", "--account", "alice",
		"--ids", "1", "--amounts", "100", "--currencies", "1000000")
	assert.Equal(t, []uint64{9000}, added.Liquidity)

	var rs []amm.BatchReserve
	mustRun(t, &rs, "batch", "reserves", "1", "--ids", "1")
	require.Len(t, rs, 1)
	assert.Equal(t, uint64(1000000), rs[0].Currency)
	assert.Equal(t, uint64(100), rs[0].Tokens)

	mustRun(t, nil, "ledger", "mint", "10", "200000", "--to", "bob")
	_, err := run(t, "batch", "buy", "1", "--account", "bob",
		"--ids", "1", "--amounts", "10", "--max-currency", "100000")
	assert.ErrorIs(t, err, amm.ErrInsufficientCurrencyAmount)

	var trade amm.TradeResult
	mustRun(t, &trade, "batch", "buy", "1", "--account", "bob",
		"--ids", "1", "--amounts", "10", "--max-currency", "200000")
	assert.Equal(t, uint64(111670), trade.Total)

	var bal balanceView
	mustRun(t, &bal, "ledger", "batch-balance", "1", "--account", "bob", "--collection", "7")
	assert.Equal(t, uint64(10), bal.Balance)
}

func TestEventsListNeedsSQLSink(t *testing.T) {
	t.Setenv("AMMD_EVENTS_SINK", "none")
	_, err := run(t, "events", "list")
	assert.Error(t, err)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ammd.toml")
	_, err := run(t, "config", "init", path)
	require.NoError(t, err)

	_, err = run(t, "--conf", path, "version")
	assert.NoError(t, err)
}

func TestRootHelpLeavesFeeToConfig(t *testing.T) {
	root := NewRootCommand()
	assert.NotContains(t, root.Long, "%")
	assert.Contains(t, root.Long, "[engine]")
}
