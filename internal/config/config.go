package config

import (
	"fmt"
	"path/filepath"

	"github.com/LeJamon/goAMM/internal/core/ledger"
	"github.com/LeJamon/goAMM/internal/storage/keyValueDb"
)

// Config represents the complete ammd configuration
type Config struct {
	Engine  EngineConfig  `toml:"engine" mapstructure:"engine"`
	Storage StorageConfig `toml:"storage" mapstructure:"storage"`
	Events  EventsConfig  `toml:"events" mapstructure:"events"`
	Log     LogConfig     `toml:"log" mapstructure:"log"`

	// Internal fields for configuration management
	configPath string `toml:"-" mapstructure:"-"`
}

// EngineConfig holds the pool engine constants
type EngineConfig struct {
	FeeMultiplier           uint64 `toml:"fee_multiplier" mapstructure:"fee_multiplier"`
	BatchFeeMultiplier      uint64 `toml:"batch_fee_multiplier" mapstructure:"batch_fee_multiplier"`
	MinimumLiquidity        uint64 `toml:"minimum_liquidity" mapstructure:"minimum_liquidity"`
	LiquidityAssetBase      uint64 `toml:"liquidity_asset_base" mapstructure:"liquidity_asset_base"`
	LiquidityCollectionBase uint64 `toml:"liquidity_collection_base" mapstructure:"liquidity_collection_base"`

	// FeeToSetter is the hex account allowed to change the protocol fee
	// recipient. Empty disables SetFeeTo entirely.
	FeeToSetter string `toml:"fee_to_setter" mapstructure:"fee_to_setter"`
}

// StorageConfig selects the key-value backend behind the state store
type StorageConfig struct {
	Backend     string `toml:"backend" mapstructure:"backend"`
	Path        string `toml:"path" mapstructure:"path"`
	CacheSize   int    `toml:"cache_size" mapstructure:"cache_size"`
	Compression string `toml:"compression" mapstructure:"compression"`
}

// EventsConfig selects where committed events are delivered
type EventsConfig struct {
	Sink string `toml:"sink" mapstructure:"sink"`
	Path string `toml:"path" mapstructure:"path"`
	DSN  string `toml:"dsn" mapstructure:"dsn"`

	// MirrorLog also writes every event to the process log
	MirrorLog bool `toml:"mirror_log" mapstructure:"mirror_log"`
}

// LogConfig configures the process logger
type LogConfig struct {
	Level string `toml:"level" mapstructure:"level"`
}

// Event sink names
const (
	SinkLog      = "log"
	SinkJSONL    = "jsonl"
	SinkSQLite   = "sqlite"
	SinkPostgres = "postgres"
	SinkNone     = "none"
)

// Sinks lists every supported event sink name
func Sinks() []string {
	return []string{SinkLog, SinkJSONL, SinkSQLite, SinkPostgres, SinkNone}
}

// DefaultConfigPath is the config file looked up when --conf is not given
const DefaultConfigPath = "ammd.toml"

// ConfigPathFromDir returns the config file path inside configDir
func ConfigPathFromDir(configDir string) string {
	return filepath.Join(configDir, DefaultConfigPath)
}

// GetConfigPath returns the path the configuration was loaded from
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// FeeToSetterAccount parses the configured fee setter. The zero account
// is returned when none is configured.
func (e EngineConfig) FeeToSetterAccount() (ledger.AccountID, error) {
	if e.FeeToSetter == "" {
		return ledger.AccountID{}, nil
	}
	id, err := ledger.ParseAccountID(e.FeeToSetter)
	if err != nil {
		return ledger.AccountID{}, fmt.Errorf("fee_to_setter: %w", err)
	}
	return id, nil
}

// IsPersistent reports whether the storage backend writes to disk
func (s StorageConfig) IsPersistent() bool {
	return s.Backend != "" && s.Backend != keyValueDb.BackendMemory
}
