// Package amm implements a constant-product pool engine: the pool registry,
// reserve and protocol fee accounting, liquidity provisioning, single and
// multi-hop swaps, and a batch variant that prices many token ids of one
// collection against a shared currency reserve.
//
// Every mutating call runs inside its own state.Table. On error the table is
// dropped, so a failed call leaves no trace in state and emits no events.
package amm

import (
	"context"
	"fmt"
	"sync"

	"github.com/LeJamon/goAMM/internal/core/events"
	"github.com/LeJamon/goAMM/internal/core/ledger"
	"github.com/LeJamon/goAMM/internal/core/state"
	"go.uber.org/zap"
)

// Config holds the engine constants.
type Config struct {
	// FeeMultiplier is applied to new two-asset pools (997 = 0.3% fee).
	FeeMultiplier uint64
	// BatchFeeMultiplier is applied to new batch pools (995 = 0.5% fee).
	BatchFeeMultiplier uint64
	// MinimumLiquidity is locked in the vault on a pool's first deposit.
	MinimumLiquidity uint64
	// LiquidityAssetBase is the first asset id handed out for liquidity tokens.
	LiquidityAssetBase ledger.AssetID
	// LiquidityCollectionBase is the first collection id handed out for batch
	// liquidity tokens.
	LiquidityCollectionBase ledger.CollectionID
	// FeeToSetter may change the protocol fee recipient.
	FeeToSetter ledger.AccountID
}

// DefaultConfig returns the standard constants.
func DefaultConfig() Config {
	return Config{
		FeeMultiplier:           997,
		BatchFeeMultiplier:      995,
		MinimumLiquidity:        1000,
		LiquidityAssetBase:      1 << 32,
		LiquidityCollectionBase: 1 << 32,
	}
}

// Validate checks the constants are usable.
func (c Config) Validate() error {
	if c.FeeMultiplier == 0 || c.FeeMultiplier > FeeDenominator {
		return fmt.Errorf("%w: fee multiplier %d not in (0, %d]", ErrInvalidConfig, c.FeeMultiplier, FeeDenominator)
	}
	if c.BatchFeeMultiplier == 0 || c.BatchFeeMultiplier > FeeDenominator {
		return fmt.Errorf("%w: batch fee multiplier %d not in (0, %d]", ErrInvalidConfig, c.BatchFeeMultiplier, FeeDenominator)
	}
	if c.LiquidityAssetBase == 0 || c.LiquidityCollectionBase == 0 {
		return fmt.Errorf("%w: liquidity id bases must be positive", ErrInvalidConfig)
	}
	return nil
}

// FungibleFactory builds the fungible ledger an operation runs against.
type FungibleFactory func(view state.View) ledger.Fungible

// BatchFactory builds the multi-asset ledger an operation runs against.
type BatchFactory func(view state.View) ledger.Batch

// AllocatorFactory builds the id allocator an operation runs against.
type AllocatorFactory func(view state.View, cfg Config) IDAllocator

// Engine runs pool operations one at a time against a state.Store.
type Engine struct {
	mu        sync.Mutex
	cfg       Config
	store     *state.Store
	fungible  FungibleFactory
	batch     BatchFactory
	allocator AllocatorFactory
	sink      events.Sink
	logger    *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSink sets where committed events are delivered.
func WithSink(sink events.Sink) Option {
	return func(e *Engine) { e.sink = sink }
}

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithFungibleLedger replaces the state-backed fungible ledger.
func WithFungibleLedger(f FungibleFactory) Option {
	return func(e *Engine) { e.fungible = f }
}

// WithBatchLedger replaces the state-backed multi-asset ledger.
func WithBatchLedger(f BatchFactory) Option {
	return func(e *Engine) { e.batch = f }
}

// WithAllocator replaces the state-backed id allocator.
func WithAllocator(f AllocatorFactory) Option {
	return func(e *Engine) { e.allocator = f }
}

// New creates an engine over store.
func New(store *state.Store, cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:   cfg,
		store: store,
		fungible: func(v state.View) ledger.Fungible {
			return ledger.NewFungible(v)
		},
		batch: func(v state.View) ledger.Batch {
			return ledger.NewBatch(v)
		},
		allocator: func(v state.View, cfg Config) IDAllocator {
			return NewStateAllocator(v, cfg)
		},
		sink:   events.Nop{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.Named("amm")
	return e, nil
}

// Config returns the engine constants.
func (e *Engine) Config() Config {
	return e.cfg
}

// txn is the working set of one operation.
type txn struct {
	ctx      context.Context
	cfg      *Config
	view     *state.Table
	fungible ledger.Fungible
	batch    ledger.Batch
	ids      IDAllocator
	events   []events.Event
}

func (t *txn) emit(evs ...events.Event) {
	t.events = append(t.events, evs...)
}

func (e *Engine) begin(ctx context.Context) *txn {
	table := state.NewTable(e.store.View(ctx))
	return &txn{
		ctx:      ctx,
		cfg:      &e.cfg,
		view:     table,
		fungible: e.fungible(table),
		batch:    e.batch(table),
		ids:      e.allocator(table, e.cfg),
	}
}

// apply runs fn as one atomic operation. State and events are published
// only when fn succeeds.
func (e *Engine) apply(ctx context.Context, op string, fn func(t *txn) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.begin(ctx)
	if err := fn(t); err != nil {
		t.view.Discard()
		e.logger.Debug("operation rejected", zap.String("op", op), zap.Error(err))
		return err
	}

	changed, err := t.view.Apply()
	if err != nil {
		e.logger.Error("commit failed", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("commit %s: %w", op, err)
	}
	e.logger.Debug("operation committed",
		zap.String("op", op),
		zap.Int("entries", changed),
		zap.Int("events", len(t.events)),
	)

	if len(t.events) > 0 {
		// State is already committed; a sink failure is reported, not rolled back
		if err := e.sink.Emit(ctx, t.events); err != nil {
			e.logger.Error("event delivery failed", zap.String("op", op), zap.Error(err))
		}
	}
	return nil
}

// read runs fn against a throwaway table.
func (e *Engine) read(ctx context.Context, fn func(t *txn) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.begin(ctx)
	defer t.view.Discard()
	return fn(t)
}
