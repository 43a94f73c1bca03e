package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/LeJamon/goAMM/internal/core/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()

	mainConfigContent := `
[engine]
fee_multiplier = 996
fee_to_setter = "0x00112233445566778899aabbccddeeff00112233"

[storage]
backend = "Pebble"
path = "/tmp/test/state"
compression = "lz4"

[events]
sink = "jsonl"
path = "/tmp/test/events.jsonl"

[log]
level = "debug"
`
	mainConfigPath := filepath.Join(tempDir, "ammd.toml")
	require.NoError(t, os.WriteFile(mainConfigPath, []byte(mainConfigContent), 0644))

	config, err := LoadConfig(mainConfigPath)
	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, uint64(996), config.Engine.FeeMultiplier)
	assert.Equal(t, uint64(995), config.Engine.BatchFeeMultiplier)
	assert.Equal(t, uint64(1000), config.Engine.MinimumLiquidity)
	assert.Equal(t, uint64(1)<<32, config.Engine.LiquidityAssetBase)
	assert.Equal(t, "pebble", config.Storage.Backend)
	assert.Equal(t, "/tmp/test/state", config.Storage.Path)
	assert.Equal(t, 4096, config.Storage.CacheSize)
	assert.Equal(t, "lz4", config.Storage.Compression)
	assert.Equal(t, SinkJSONL, config.Events.Sink)
	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, mainConfigPath, config.GetConfigPath())

	setter, err := config.Engine.FeeToSetterAccount()
	require.NoError(t, err)
	assert.Equal(t, "00112233445566778899aabbccddeeff00112233", setter.String())

	reloaded, err := ReloadConfig(config)
	require.NoError(t, err)
	assert.Equal(t, config, reloaded)
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, Default(), config)
	assert.Equal(t, "memory", config.Storage.Backend)
	assert.Equal(t, SinkLog, config.Events.Sink)
	assert.Equal(t, "info", config.Log.Level)

	setter, err := config.Engine.FeeToSetterAccount()
	require.NoError(t, err)
	assert.Equal(t, ledger.AccountID{}, setter)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("AMMD_STORAGE_BACKEND", "bbolt")
	t.Setenv("AMMD_STORAGE_PATH", "/tmp/ammd.bolt")
	t.Setenv("AMMD_ENGINE_FEE_MULTIPLIER", "990")

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "bbolt", config.Storage.Backend)
	assert.Equal(t, "/tmp/ammd.bolt", config.Storage.Path)
	assert.Equal(t, uint64(990), config.Engine.FeeMultiplier)
}

func TestLoadConfigFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(ConfigPathFromDir(dir), []byte("[log]\nlevel = \"warn\"\n"), 0644))

	config, err := LoadConfigFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "warn", config.Log.Level)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "zero fee multiplier", mutate: func(c *Config) { c.Engine.FeeMultiplier = 0 }, wantErr: true},
		{name: "fee multiplier above denominator", mutate: func(c *Config) { c.Engine.BatchFeeMultiplier = 1001 }, wantErr: true},
		{name: "zero asset base", mutate: func(c *Config) { c.Engine.LiquidityAssetBase = 0 }, wantErr: true},
		{name: "bad fee setter", mutate: func(c *Config) { c.Engine.FeeToSetter = "nothex" }, wantErr: true},
		{name: "unknown backend", mutate: func(c *Config) { c.Storage.Backend = "nudb" }, wantErr: true},
		{name: "persistent without path", mutate: func(c *Config) { c.Storage.Backend = "leveldb" }, wantErr: true},
		{name: "persistent with path", mutate: func(c *Config) { c.Storage.Backend = "leveldb"; c.Storage.Path = "/tmp/x" }},
		{name: "negative cache", mutate: func(c *Config) { c.Storage.CacheSize = -1 }, wantErr: true},
		{name: "unknown compression", mutate: func(c *Config) { c.Storage.Compression = "zstd" }, wantErr: true},
		{name: "unknown sink", mutate: func(c *Config) { c.Events.Sink = "kafka" }, wantErr: true},
		{name: "sqlite without path", mutate: func(c *Config) { c.Events.Sink = SinkSQLite }, wantErr: true},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Events.Sink = SinkPostgres }, wantErr: true},
		{name: "postgres with dsn", mutate: func(c *Config) { c.Events.Sink = SinkPostgres; c.Events.DSN = "postgres://localhost/amm" }},
		{name: "no sink", mutate: func(c *Config) { c.Events.Sink = SinkNone }},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			err := ValidateConfig(config)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveExampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.toml")
	require.NoError(t, SaveExampleConfig(path))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "pebble", config.Storage.Backend)
	assert.Equal(t, SinkSQLite, config.Events.Sink)
	assert.Equal(t, "lz4", config.Storage.Compression)
}
