package di

import (
	"context"
	"fmt"
	"os"

	"github.com/LeJamon/goAMM/internal/config"
	"github.com/LeJamon/goAMM/internal/core/amm"
	"github.com/LeJamon/goAMM/internal/core/events"
	"github.com/LeJamon/goAMM/internal/core/ledger"
	"github.com/LeJamon/goAMM/internal/core/state"
	"github.com/LeJamon/goAMM/internal/logging"
	"github.com/LeJamon/goAMM/internal/storage/keyValueDb"
	"github.com/LeJamon/goAMM/internal/storage/keyValueDb/bbolt"
	"github.com/LeJamon/goAMM/internal/storage/keyValueDb/leveldb"
	"github.com/LeJamon/goAMM/internal/storage/keyValueDb/memory"
	"github.com/LeJamon/goAMM/internal/storage/keyValueDb/pebble"
	"go.uber.org/zap"
)

// StateDBName is the key-value database holding engine state.
const StateDBName = "state"

// Provider configures and registers services in the container.
type Provider struct {
	container *Container
	config    *config.Config
	ctx       context.Context
}

// NewProvider creates a new service provider.
func NewProvider(ctx context.Context, container *Container, cfg *config.Config) *Provider {
	return &Provider{
		container: container,
		config:    cfg,
		ctx:       ctx,
	}
}

// RegisterAll registers all services.
func (p *Provider) RegisterAll() error {
	p.container.Register(ServiceConfig, p.config)

	p.registerLogger()
	p.registerStorageBuilders()
	p.registerEventBuilders()
	p.registerEngineBuilder()
	return nil
}

func (p *Provider) registerLogger() {
	p.container.RegisterBuilder(ServiceLogger, func(c *Container) (interface{}, error) {
		return logging.New(p.config.Log.Level)
	})
}

// registerStorageBuilders registers the key-value manager and state store.
func (p *Provider) registerStorageBuilders() {
	p.container.RegisterBuilder(ServiceKVManager, func(c *Container) (interface{}, error) {
		return NewManager(p.config.Storage)
	})

	p.container.RegisterBuilder(ServiceStore, func(c *Container) (interface{}, error) {
		manager, err := Resolve[keyValueDb.Manager](c, ServiceKVManager)
		if err != nil {
			return nil, err
		}
		db, err := manager.OpenDB(StateDBName)
		if err != nil {
			return nil, err
		}
		return state.NewStore(db,
			state.WithCacheSize(p.config.Storage.CacheSize),
			state.WithCompression(p.config.Storage.Compression),
		)
	})
}

// NewManager builds the key-value manager for the configured backend.
func NewManager(cfg config.StorageConfig) (keyValueDb.Manager, error) {
	if cfg.IsPersistent() {
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	switch cfg.Backend {
	case keyValueDb.BackendMemory:
		return memory.NewManager(), nil
	case keyValueDb.BackendPebble:
		return pebble.NewManager(cfg.Path), nil
	case keyValueDb.BackendBBolt:
		return bbolt.NewBBoltManager(cfg.Path), nil
	case keyValueDb.BackendLevelDB:
		return leveldb.NewManager(cfg.Path), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// registerEventBuilders registers the committed-event sink.
func (p *Provider) registerEventBuilders() {
	p.container.RegisterBuilder(ServiceSink, func(c *Container) (interface{}, error) {
		logger, err := Resolve[*zap.Logger](c, ServiceLogger)
		if err != nil {
			return nil, err
		}

		sink, err := NewSink(p.ctx, p.config.Events, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("event sink ready",
			zap.String("sink", p.config.Events.Sink),
			zap.String("dsn", logging.RedactDSN(p.config.Events.DSN)),
			zap.Bool("mirror_log", p.config.Events.MirrorLog),
		)
		return sink, nil
	})
}

// NewSink builds the configured event sink.
func NewSink(ctx context.Context, cfg config.EventsConfig, logger *zap.Logger) (events.Sink, error) {
	var primary events.Sink
	switch cfg.Sink {
	case config.SinkNone:
		return events.Nop{}, nil
	case config.SinkLog:
		return events.NewLogSink(logger), nil
	case config.SinkJSONL:
		primary = events.NewJSONLSink(cfg.Path)
	case config.SinkSQLite:
		sink, err := events.NewSQLSink(ctx, events.DriverSQLite, cfg.Path)
		if err != nil {
			return nil, err
		}
		primary = sink
	case config.SinkPostgres:
		sink, err := events.NewSQLSink(ctx, events.DriverPostgres, cfg.DSN)
		if err != nil {
			return nil, err
		}
		primary = sink
	default:
		return nil, fmt.Errorf("unknown event sink %q", cfg.Sink)
	}

	if cfg.MirrorLog {
		return events.NewMulti(primary, events.NewLogSink(logger)), nil
	}
	return primary, nil
}

// registerEngineBuilder registers the pool engine.
func (p *Provider) registerEngineBuilder() {
	p.container.RegisterBuilder(ServiceEngine, func(c *Container) (interface{}, error) {
		store, err := Resolve[*state.Store](c, ServiceStore)
		if err != nil {
			return nil, err
		}
		sink, err := Resolve[events.Sink](c, ServiceSink)
		if err != nil {
			return nil, err
		}
		logger, err := Resolve[*zap.Logger](c, ServiceLogger)
		if err != nil {
			return nil, err
		}

		cfg, err := EngineConfig(p.config.Engine)
		if err != nil {
			return nil, err
		}
		return amm.New(store, cfg, amm.WithSink(sink), amm.WithLogger(logger))
	})
}

// EngineConfig converts the file configuration into engine constants.
func EngineConfig(cfg config.EngineConfig) (amm.Config, error) {
	setter, err := cfg.FeeToSetterAccount()
	if err != nil {
		return amm.Config{}, err
	}
	return amm.Config{
		FeeMultiplier:           cfg.FeeMultiplier,
		BatchFeeMultiplier:      cfg.BatchFeeMultiplier,
		MinimumLiquidity:        cfg.MinimumLiquidity,
		LiquidityAssetBase:      ledger.AssetID(cfg.LiquidityAssetBase),
		LiquidityCollectionBase: ledger.CollectionID(cfg.LiquidityCollectionBase),
		FeeToSetter:             setter,
	}, nil
}

// Build registers every service and resolves the engine.
func Build(ctx context.Context, cfg *config.Config) (*Container, *amm.Engine, error) {
	c := New()
	if err := NewProvider(ctx, c, cfg).RegisterAll(); err != nil {
		return nil, nil, err
	}
	engine, err := Resolve[*amm.Engine](c, ServiceEngine)
	if err != nil {
		_ = c.Close()
		return nil, nil, err
	}
	return c, engine, nil
}
