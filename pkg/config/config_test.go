package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadAppliesSpecDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "dyt-local-1", cfg.ChainID)
	assert.Equal(t, 2000, cfg.BlockIntervalMS)
	assert.True(t, cfg.EmptyBlocks)
	assert.Equal(t, 100, cfg.BlockMaxTx)
	assert.True(t, cfg.WSEnabled)
	assert.Equal(t, 8192, cfg.MaxTxBody)
	assert.Equal(t, "", cfg.FrontendOrigin)
	assert.False(t, cfg.RuntimeMocks)
}

func TestLoadHonorsEnvOverride(t *testing.T) {
	t.Setenv("DYT_CHAIN_ID", "dyt-custom-7")
	t.Setenv("BLOCK_MAX_TX", "5")

	cfg := Load()
	assert.Equal(t, "dyt-custom-7", cfg.ChainID)
	assert.Equal(t, 5, cfg.BlockMaxTx)
}

func TestBlockIntervalConvertsMillisecondsToDuration(t *testing.T) {
	t.Setenv("DYT_BLOCK_INTERVAL_MS", "500")
	cfg := Load()
	assert.Equal(t, int64(500_000_000), cfg.BlockInterval().Nanoseconds())
}
