package main

import (
	"github.com/spf13/cobra"

	"github.com/meverselabs/stoclient/cmd/config"
	"github.com/meverselabs/stoclient/contract"
)

// environment variables overriding the config file
const (
	EnvRPCURL         = "STO_RPC_URL"
	EnvPrivateKey     = "STO_PRIVATE_KEY"
	EnvModuleRegistry = "STO_MODULE_REGISTRY"
)

// Config is the config of the cli
type Config struct {
	RPCURL          string `toml:"rpc_url" yaml:"rpc_url"`
	ChainID         int64  `toml:"chain_id" yaml:"chain_id"`
	PrivateKey      string `toml:"private_key" yaml:"private_key"`
	ModuleRegistry  string `toml:"module_registry" yaml:"module_registry"`
	GasLimit        uint64 `toml:"gas_limit" yaml:"gas_limit"`
	LogLevel        string `toml:"log_level" yaml:"log_level"`
	LogJSON         bool   `toml:"log_json" yaml:"log_json"`
	SymbolCacheSize int    `toml:"symbol_cache_size" yaml:"symbol_cache_size"`
	Concurrency     int    `toml:"concurrency" yaml:"concurrency"`
	NativeSymbol    string `toml:"native_symbol" yaml:"native_symbol"`
	MetricsAddr     string `toml:"metrics_addr" yaml:"metrics_addr"`
}

// DefaultConfig returns the config used when nothing is set
func DefaultConfig() *Config {
	return &Config{
		RPCURL:          "http://localhost:8545",
		LogLevel:        "info",
		SymbolCacheSize: 256,
		Concurrency:     contract.DefaultConcurrency,
		NativeSymbol:    contract.DefaultNativeSymbol,
	}
}

// loadConfig layers the defaults, the file of the path and the environment
func loadConfig(path string, getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()
	if len(path) > 0 {
		if err := config.LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if v := getenv(EnvRPCURL); len(v) > 0 {
		cfg.RPCURL = v
	}
	if v := getenv(EnvPrivateKey); len(v) > 0 {
		cfg.PrivateKey = v
	}
	if v := getenv(EnvModuleRegistry); len(v) > 0 {
		cfg.ModuleRegistry = v
	}
	return cfg, nil
}

type flags struct {
	configPath  string
	rpcURL      string
	privateKey  string
	chainID     int64
	logLevel    string
	metricsAddr string
}

// apply overrides cfg with the flags set on the command line
func (f *flags) apply(cmd *cobra.Command, cfg *Config) {
	fs := cmd.Flags()
	if fs.Changed("rpc") {
		cfg.RPCURL = f.rpcURL
	}
	if fs.Changed("key") {
		cfg.PrivateKey = f.privateKey
	}
	if fs.Changed("chain-id") {
		cfg.ChainID = f.chainID
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if fs.Changed("metrics-addr") {
		cfg.MetricsAddr = f.metricsAddr
	}
}
