package config

import "github.com/spf13/viper"

// setDefaults sets the default value of every key
func setDefaults(v *viper.Viper) {
	// Engine defaults: Uniswap v2 fee, 0.5% batch fee
	v.SetDefault("engine.fee_multiplier", 997)
	v.SetDefault("engine.batch_fee_multiplier", 995)
	v.SetDefault("engine.minimum_liquidity", 1000)
	v.SetDefault("engine.liquidity_asset_base", uint64(1)<<32)
	v.SetDefault("engine.liquidity_collection_base", uint64(1)<<32)
	v.SetDefault("engine.fee_to_setter", "")

	// Storage defaults
	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.cache_size", 4096)
	v.SetDefault("storage.compression", "none")

	// Events defaults
	v.SetDefault("events.sink", SinkLog)
	v.SetDefault("events.path", "")
	v.SetDefault("events.dsn", "")
	v.SetDefault("events.mirror_log", false)

	v.SetDefault("log.level", "info")
}

// Default returns the configuration built from defaults alone
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// Defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}
