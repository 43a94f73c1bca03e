package testing

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/LeJamon/goAMM/internal/core/amm"
	"github.com/LeJamon/goAMM/internal/core/events"
	"github.com/LeJamon/goAMM/internal/core/ledger"
	"github.com/LeJamon/goAMM/internal/core/state"
	"github.com/LeJamon/goAMM/internal/storage/keyValueDb"
	"github.com/LeJamon/goAMM/internal/storage/keyValueDb/bbolt"
	"github.com/LeJamon/goAMM/internal/storage/keyValueDb/leveldb"
	"github.com/LeJamon/goAMM/internal/storage/keyValueDb/memory"
	"github.com/LeJamon/goAMM/internal/storage/keyValueDb/pebble"
)

// Op is an engine operation prepared by a builder.
type Op interface {
	// Name identifies the operation in failure messages.
	Name() string

	// Apply runs the operation and returns its non-error result.
	Apply(ctx context.Context, e *amm.Engine) (any, error)
}

// OpFunc adapts a function to Op.
type OpFunc struct {
	Label string
	Fn    func(ctx context.Context, e *amm.Engine) (any, error)
}

func (o OpFunc) Name() string { return o.Label }

func (o OpFunc) Apply(ctx context.Context, e *amm.Engine) (any, error) {
	return o.Fn(ctx, e)
}

// TestEnv manages an engine over a fresh state store for scenario tests.
type TestEnv struct {
	t        *testing.T
	ctx      context.Context
	engine   *amm.Engine
	store    *state.Store
	recorder *events.Recorder
	config   amm.Config

	// events already attached to a Result
	seen int
}

// NewTestEnv creates an environment over an in-memory store with the
// default engine constants and SetterAccount as fee setter.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	return NewTestEnvWithConfig(t, testConfig())
}

// NewTestEnvWithConfig creates an in-memory environment with cfg.
func NewTestEnvWithConfig(t *testing.T, cfg amm.Config) *TestEnv {
	t.Helper()
	return newEnv(t, memory.NewDB(), cfg)
}

// NewTestEnvBacked creates an environment whose store lives on disk in the
// named backend under t.TempDir(). Memory falls back to NewTestEnv.
func NewTestEnvBacked(t *testing.T, backend string) *TestEnv {
	t.Helper()

	dir := filepath.Join(t.TempDir(), backend)
	var manager keyValueDb.Manager
	switch backend {
	case keyValueDb.BackendMemory:
		return NewTestEnv(t)
	case keyValueDb.BackendPebble:
		manager = pebble.NewManager(dir)
	case keyValueDb.BackendBBolt:
		manager = bbolt.NewBBoltManager(dir)
	case keyValueDb.BackendLevelDB:
		manager = leveldb.NewManager(dir)
	default:
		t.Fatalf("unknown backend %q", backend)
	}

	db, err := manager.OpenDB("state")
	if err != nil {
		t.Fatalf("Failed to open %s store: %v", backend, err)
	}
	t.Cleanup(func() {
		if err := manager.Close(); err != nil {
			t.Errorf("Failed to close %s store: %v", backend, err)
		}
	})
	return newEnv(t, db, testConfig())
}

func testConfig() amm.Config {
	cfg := amm.DefaultConfig()
	cfg.FeeToSetter = SetterAccount().ID
	return cfg
}

func newEnv(t *testing.T, db keyValueDb.DB, cfg amm.Config) *TestEnv {
	t.Helper()

	store, err := state.NewStore(db)
	if err != nil {
		t.Fatalf("Failed to create state store: %v", err)
	}
	recorder := events.NewRecorder()
	engine, err := amm.New(store, cfg, amm.WithSink(recorder))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	return &TestEnv{
		t:        t,
		ctx:      context.Background(),
		engine:   engine,
		store:    store,
		recorder: recorder,
		config:   cfg,
	}
}

// Engine returns the engine under test.
func (e *TestEnv) Engine() *amm.Engine { return e.engine }

// Context returns the context operations run with.
func (e *TestEnv) Context() context.Context { return e.ctx }

// Config returns the engine constants.
func (e *TestEnv) Config() amm.Config { return e.config }

// Fund mints amount of asset to every account.
func (e *TestEnv) Fund(asset ledger.AssetID, amount uint64, accounts ...*Account) {
	e.t.Helper()
	for _, acc := range accounts {
		if err := e.engine.Fund(e.ctx, asset, acc.ID, amount); err != nil {
			e.t.Fatalf("Failed to fund %s with %d of asset %d: %v", acc.Name, amount, asset, err)
		}
	}
}

// FundBatch mints amount of (collection, id) to every account.
func (e *TestEnv) FundBatch(collection ledger.CollectionID, id ledger.TokenID, amount uint64, accounts ...*Account) {
	e.t.Helper()
	for _, acc := range accounts {
		if err := e.engine.FundBatch(e.ctx, collection, id, acc.ID, amount); err != nil {
			e.t.Fatalf("Failed to fund %s with %d of token %d/%d: %v", acc.Name, amount, collection, id, err)
		}
	}
}

// Pay moves amount of asset between accounts and fails the test on error.
func (e *TestEnv) Pay(from, to *Account, asset ledger.AssetID, amount uint64) {
	e.t.Helper()
	if err := e.engine.Transfer(e.ctx, asset, from.ID, to.ID, amount); err != nil {
		e.t.Fatalf("Failed to pay %d of asset %d from %s to %s: %v", amount, asset, from.Name, to.Name, err)
	}
}

// Submit applies op and collects the events it published.
func (e *TestEnv) Submit(op Op) Result {
	e.t.Helper()

	value, err := op.Apply(e.ctx, e.engine)
	all := e.recorder.Events()
	res := Result{Op: op.Name(), Value: value, Err: err}
	if len(all) > e.seen {
		res.Events = all[e.seen:]
		e.seen = len(all)
	}
	return res
}

// Balance returns the fungible balance of acc.
func (e *TestEnv) Balance(acc *Account, asset ledger.AssetID) uint64 {
	e.t.Helper()
	bal, err := e.engine.BalanceOf(e.ctx, asset, acc.ID)
	if err != nil {
		e.t.Fatalf("Failed to read balance of %s: %v", acc.Name, err)
	}
	return bal
}

// BalanceOf returns the fungible balance of a raw account, such as a vault.
func (e *TestEnv) BalanceOf(id ledger.AccountID, asset ledger.AssetID) uint64 {
	e.t.Helper()
	bal, err := e.engine.BalanceOf(e.ctx, asset, id)
	if err != nil {
		e.t.Fatalf("Failed to read balance of %s: %v", id, err)
	}
	return bal
}

// BatchBalance returns the batch ledger balance of acc.
func (e *TestEnv) BatchBalance(acc *Account, collection ledger.CollectionID, id ledger.TokenID) uint64 {
	e.t.Helper()
	bal, err := e.engine.BatchBalanceOf(e.ctx, collection, id, acc.ID)
	if err != nil {
		e.t.Fatalf("Failed to read batch balance of %s: %v", acc.Name, err)
	}
	return bal
}

// Supply returns the total supply of a fungible asset.
func (e *TestEnv) Supply(asset ledger.AssetID) uint64 {
	e.t.Helper()
	supply, err := e.engine.TotalSupply(e.ctx, asset)
	if err != nil {
		e.t.Fatalf("Failed to read supply of asset %d: %v", asset, err)
	}
	return supply
}

// BatchSupply returns the total supply of a collection token.
func (e *TestEnv) BatchSupply(collection ledger.CollectionID, id ledger.TokenID) uint64 {
	e.t.Helper()
	supply, err := e.engine.BatchTotalSupply(e.ctx, collection, id)
	if err != nil {
		e.t.Fatalf("Failed to read supply of token %d/%d: %v", collection, id, err)
	}
	return supply
}

// Pool returns a two-asset pool.
func (e *TestEnv) Pool(id amm.PoolID) amm.Pool {
	e.t.Helper()
	p, err := e.engine.Pool(e.ctx, id)
	if err != nil {
		e.t.Fatalf("Failed to read pool %d: %v", id, err)
	}
	return p
}

// Reserves returns the cached reserves of a two-asset pool.
func (e *TestEnv) Reserves(id amm.PoolID) amm.Reserves {
	e.t.Helper()
	r, err := e.engine.Reserves(e.ctx, id)
	if err != nil {
		e.t.Fatalf("Failed to read reserves of pool %d: %v", id, err)
	}
	return r
}

// BatchPool returns a batch pool.
func (e *TestEnv) BatchPool(id amm.PoolID) amm.BatchPool {
	e.t.Helper()
	bp, err := e.engine.BatchPool(e.ctx, id)
	if err != nil {
		e.t.Fatalf("Failed to read batch pool %d: %v", id, err)
	}
	return bp
}

// BatchReserve returns the pricing state of one token id.
func (e *TestEnv) BatchReserve(id amm.PoolID, tokenID ledger.TokenID) amm.BatchReserve {
	e.t.Helper()
	rs, err := e.engine.BatchReserves(e.ctx, id, []ledger.TokenID{tokenID})
	if err != nil {
		e.t.Fatalf("Failed to read batch reserve %d of pool %d: %v", tokenID, id, err)
	}
	return rs[0]
}

// Events returns everything recorded since the last ResetEvents.
func (e *TestEnv) Events() []events.Event {
	return e.recorder.Events()
}

// ResetEvents drops recorded events.
func (e *TestEnv) ResetEvents() {
	e.recorder.Reset()
	e.seen = 0
}
