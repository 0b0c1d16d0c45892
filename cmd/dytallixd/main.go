// Command dytallixd runs a single-producer Dytallix ledger node: it
// boots the KV store, applies genesis, starts the block-production
// loop, and serves the RPC surface until told to stop. Collaborators
// are built and wired together explicitly in main, behind a cobra root
// command.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/DytallixHQ/dytallix-node/pkg/bridgestore"
	"github.com/DytallixHQ/dytallix-node/pkg/config"
	"github.com/DytallixHQ/dytallix-node/pkg/eventbus"
	"github.com/DytallixHQ/dytallix-node/pkg/genesis"
	"github.com/DytallixHQ/dytallix-node/pkg/kv"
	"github.com/DytallixHQ/dytallix-node/pkg/ledger"
	"github.com/DytallixHQ/dytallix-node/pkg/mempool"
	"github.com/DytallixHQ/dytallix-node/pkg/oraclestore"
	"github.com/DytallixHQ/dytallix-node/pkg/rpc"
	"github.com/DytallixHQ/dytallix-node/pkg/state"
	"github.com/DytallixHQ/dytallix-node/pkg/types"
	"github.com/DytallixHQ/dytallix-node/pkg/verifier"
)

func main() {
	root := &cobra.Command{
		Use:          "dytallixd",
		Short:        "Dytallix single-producer ledger node",
		RunE:         runNode,
		SilenceUsage: true,
	}
	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("dytallixd exited")
	}
}

func runNode(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	configureLogging(cfg.LogLevel)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return err
	}

	store, err := kv.Open(cfg.DataDir, kv.Backend(cfg.KVBackend))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := bootstrapGenesis(store, cfg); err != nil {
		return err
	}
	if err := bootstrapBridgeValidators(store, cfg); err != nil {
		return err
	}

	ledgerStore := ledger.New(store)
	st := state.New()
	accounts, err := ledgerStore.LoadAccounts()
	if err != nil {
		return err
	}
	st.Load(accounts)

	mp := mempool.New(0)
	bus := eventbus.New(eventbus.DefaultBufferSize)
	oracle := oraclestore.New(store)
	bridge := bridgestore.New(store)
	if cfg.RuntimeMocks {
		log.Warn().Msg("RUNTIME_MOCKS enabled: transaction signature checks are relaxed")
	}
	v := verifier.New(st, store, mp, types.DefaultHRP, cfg.RuntimeMocks)

	proposerID := uuid.NewString()
	producer := ledger.NewProducer(ledgerStore, store, st, mp, bus, cfg.ChainID, proposerID,
		cfg.BlockMaxTx, cfg.EmptyBlocks, cfg.BlockInterval())

	server := rpc.New(v, mp, st, ledgerStore, oracle, bridge, bus, store, rpc.Config{
		ChainID:         cfg.ChainID,
		MaxTxBody:       int64(cfg.MaxTxBody),
		FrontendOrigin:  cfg.FrontendOrigin,
		WSEnabled:       cfg.WSEnabled,
		OraclePubkeyB64: cfg.AIOraclePubkey,
	})

	heartbeat, err := ledger.NewHeartbeat("@every 30s", ledgerStore, mp)
	if err != nil {
		return err
	}
	heartbeat.Start()
	defer heartbeat.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go producer.Run(ctx)

	// No WriteTimeout: /ws connections are long-lived and enforce their
	// own per-message write deadline instead.
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("rpc server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("rpc server stopped")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	log.Info().Msg("shutting down")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}

func configureLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// bootstrapGenesis loads the genesis file (if present) and applies the
// chain-id guard. A missing genesis file is tolerated only when the
// data directory already has a chain id
// recorded; a brand-new data directory with no genesis file cannot
// allocate any initial balances and is almost certainly a
// misconfiguration, so it still aborts boot.
func bootstrapGenesis(store kv.Store, cfg *config.Config) error {
	f, err := genesis.Load(cfg.GenesisFile)
	if err != nil {
		if os.IsNotExist(err) {
			if _, metaErr := store.Get(kv.MetaChainID); metaErr == nil {
				return genesis.Apply(store, &genesis.File{}, cfg.ChainID)
			}
			return err
		}
		return err
	}
	return genesis.Apply(store, f, cfg.ChainID)
}

// bootstrapBridgeValidators seeds the bridge validator set from
// BRIDGE_VALIDATORS on a fresh data directory; an already-initialized
// validator set is left untouched so a runtime-applied rotation
// survives a restart.
func bootstrapBridgeValidators(store kv.Store, cfg *config.Config) error {
	bs := bridgestore.New(store)
	existing, err := bs.Validators()
	if err != nil {
		return err
	}
	if len(existing) > 0 || cfg.BridgeValidators == "" || cfg.BridgeValidators == "[]" {
		return nil
	}
	var validators []types.BridgeValidator
	if err := json.Unmarshal([]byte(cfg.BridgeValidators), &validators); err != nil {
		return err
	}
	return bs.SetValidators(validators)
}
