package config

import (
	"fmt"
	"strings"

	"github.com/LeJamon/goAMM/internal/storage/compression"
	"github.com/LeJamon/goAMM/internal/storage/keyValueDb"
	"go.uber.org/zap/zapcore"
)

// feeDenominator bounds the fee multipliers
const feeDenominator = 1000

// ValidateConfig performs validation on the complete configuration
func ValidateConfig(config *Config) error {
	if err := config.Engine.Validate(); err != nil {
		return fmt.Errorf("engine validation failed: %w", err)
	}
	if err := config.Storage.Validate(); err != nil {
		return fmt.Errorf("storage validation failed: %w", err)
	}
	if err := config.Events.Validate(); err != nil {
		return fmt.Errorf("events validation failed: %w", err)
	}
	if err := config.Log.Validate(); err != nil {
		return fmt.Errorf("log validation failed: %w", err)
	}
	return nil
}

// Validate checks the engine constants
func (e EngineConfig) Validate() error {
	if e.FeeMultiplier == 0 || e.FeeMultiplier > feeDenominator {
		return fmt.Errorf("fee_multiplier must be in 1..%d, got %d", feeDenominator, e.FeeMultiplier)
	}
	if e.BatchFeeMultiplier == 0 || e.BatchFeeMultiplier > feeDenominator {
		return fmt.Errorf("batch_fee_multiplier must be in 1..%d, got %d", feeDenominator, e.BatchFeeMultiplier)
	}
	if e.LiquidityAssetBase == 0 {
		return fmt.Errorf("liquidity_asset_base must be positive")
	}
	if e.LiquidityCollectionBase == 0 {
		return fmt.Errorf("liquidity_collection_base must be positive")
	}
	if _, err := e.FeeToSetterAccount(); err != nil {
		return err
	}
	return nil
}

// Validate checks the storage backend settings
func (s StorageConfig) Validate() error {
	if !keyValueDb.IsBackend(s.Backend) {
		return fmt.Errorf("unknown backend %q (supported: %s)", s.Backend, strings.Join(keyValueDb.Backends(), ", "))
	}
	if s.IsPersistent() && s.Path == "" {
		return fmt.Errorf("path is required for backend %s", s.Backend)
	}
	if s.CacheSize < 0 {
		return fmt.Errorf("cache_size cannot be negative")
	}
	if !compression.IsAvailable(s.Compression) {
		return fmt.Errorf("unknown compression %q (supported: %s)", s.Compression, strings.Join(compression.Available(), ", "))
	}
	return nil
}

// Validate checks the event sink settings
func (e EventsConfig) Validate() error {
	switch e.Sink {
	case SinkLog, SinkNone:
	case SinkJSONL, SinkSQLite:
		if e.Path == "" {
			return fmt.Errorf("path is required for sink %s", e.Sink)
		}
	case SinkPostgres:
		if e.DSN == "" {
			return fmt.Errorf("dsn is required for sink %s", e.Sink)
		}
	default:
		return fmt.Errorf("unknown sink %q (supported: %s)", e.Sink, strings.Join(Sinks(), ", "))
	}
	return nil
}

// Validate checks the log level parses
func (l LogConfig) Validate() error {
	if _, err := zapcore.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("invalid level %q: %w", l.Level, err)
	}
	return nil
}
