// Package config loads the node's environment-driven configuration via
// github.com/spf13/viper, binding env vars directly rather than requiring a
// config file.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the node's chain and runtime parameters, plus ambient
// knobs (KV backend, log level) that don't change ledger semantics.
type Config struct {
	DataDir          string
	ChainID          string
	GenesisFile      string
	BlockIntervalMS  int
	EmptyBlocks      bool
	BlockMaxTx       int
	WSEnabled        bool
	MaxTxBody        int
	FrontendOrigin   string
	AIOraclePubkey   string // base64
	BridgeValidators string // raw JSON array
	RuntimeMocks     bool

	KVBackend string
	LogLevel  string

	ListenAddr string
}

// Load reads configuration from the process environment, applying
// defaults for anything unset.
func Load() *Config {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("DYT_DATA_DIR", "./data")
	v.SetDefault("DYT_CHAIN_ID", "dyt-local-1")
	v.SetDefault("DYT_GENESIS_FILE", "genesisBlock.json")
	v.SetDefault("DYT_BLOCK_INTERVAL_MS", 2000)
	v.SetDefault("DYT_EMPTY_BLOCKS", true)
	v.SetDefault("BLOCK_MAX_TX", 100)
	v.SetDefault("DYT_WS_ENABLED", true)
	v.SetDefault("MAX_TX_BODY", 8192)
	v.SetDefault("FRONTEND_ORIGIN", "")
	v.SetDefault("AI_ORACLE_PUBKEY", "")
	v.SetDefault("BRIDGE_VALIDATORS", "[]")
	v.SetDefault("RUNTIME_MOCKS", false)
	v.SetDefault("DYT_KV_BACKEND", "goleveldb")
	v.SetDefault("DYT_LOG_LEVEL", "info")
	v.SetDefault("DYT_LISTEN_ADDR", ":3030")

	return &Config{
		DataDir:          v.GetString("DYT_DATA_DIR"),
		ChainID:          v.GetString("DYT_CHAIN_ID"),
		GenesisFile:      v.GetString("DYT_GENESIS_FILE"),
		BlockIntervalMS:  v.GetInt("DYT_BLOCK_INTERVAL_MS"),
		EmptyBlocks:      v.GetBool("DYT_EMPTY_BLOCKS"),
		BlockMaxTx:       v.GetInt("BLOCK_MAX_TX"),
		WSEnabled:        v.GetBool("DYT_WS_ENABLED"),
		MaxTxBody:        v.GetInt("MAX_TX_BODY"),
		FrontendOrigin:   v.GetString("FRONTEND_ORIGIN"),
		AIOraclePubkey:   v.GetString("AI_ORACLE_PUBKEY"),
		BridgeValidators: v.GetString("BRIDGE_VALIDATORS"),
		RuntimeMocks:     v.GetBool("RUNTIME_MOCKS"),
		KVBackend:        v.GetString("DYT_KV_BACKEND"),
		LogLevel:         v.GetString("DYT_LOG_LEVEL"),
		ListenAddr:       v.GetString("DYT_LISTEN_ADDR"),
	}
}

// BlockInterval returns BlockIntervalMS as a time.Duration.
func (c *Config) BlockInterval() time.Duration {
	return time.Duration(c.BlockIntervalMS) * time.Millisecond
}
