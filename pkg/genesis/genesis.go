// Package genesis loads the genesis allocation file and enforces the
// chain-id guard: a node must refuse to boot against a data directory
// stamped with a different chain id than the one it was configured
// with, rather than silently continuing on the wrong chain.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/DytallixHQ/dytallix-node/pkg/codec"
	"github.com/DytallixHQ/dytallix-node/pkg/kv"
	"github.com/DytallixHQ/dytallix-node/pkg/types"
)

// Allocation is one initial-balance entry in the array form of the
// genesis document.
type Allocation struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

// File is the on-disk genesis document named by DYT_GENESIS_FILE. Both
// allocation shapes in the wild are recognized: a plain address->amount
// map under "allocations" and the array form under "dgt_allocations".
type File struct {
	ChainID        string            `json:"chain_id"`
	Allocations    map[string]string `json:"allocations"`
	DGTAllocations []Allocation      `json:"dgt_allocations"`
}

// allocationPairs merges both allocation shapes into one address->amount
// map; an address present in both gets the dgt_allocations value.
func (f *File) allocationPairs() map[string]string {
	out := make(map[string]string, len(f.Allocations)+len(f.DGTAllocations))
	for addr, amount := range f.Allocations {
		out[addr] = amount
	}
	for _, a := range f.DGTAllocations {
		out[a.Address] = a.Amount
	}
	return out
}

// ErrChainIDMismatch is returned when the data directory's persisted
// chain id differs from the configured one; the caller must abort boot.
type ErrChainIDMismatch struct {
	Persisted  string
	Configured string
}

func (e *ErrChainIDMismatch) Error() string {
	return fmt.Sprintf("genesis: data dir chain id %q does not match configured chain id %q", e.Persisted, e.Configured)
}

// Load reads and parses the genesis file at path.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Apply enforces the chain-id guard and, on a fresh data directory,
// writes the initial chain-meta pointer and account allocations in one
// batch. On a data directory that already has a chain id recorded,
// Apply only checks the guard and otherwise does nothing: allocations
// in the genesis file are a one-time bootstrap, not replayed on every
// boot.
func Apply(store kv.Store, f *File, configuredChainID string) error {
	existing, err := store.Get(kv.MetaChainID)
	if err == nil {
		if string(existing) != configuredChainID {
			return &ErrChainIDMismatch{Persisted: string(existing), Configured: configuredChainID}
		}
		log.Info().Str("chain_id", configuredChainID).Msg("resuming existing chain")
		return nil
	}
	if err != kv.ErrNotFound {
		return err
	}

	if f.ChainID != "" && f.ChainID != configuredChainID {
		return &ErrChainIDMismatch{Persisted: f.ChainID, Configured: configuredChainID}
	}

	batch := []kv.Op{
		{Key: kv.MetaChainID, Value: []byte(configuredChainID)},
		{Key: kv.MetaHeight, Value: []byte("0")},
		{Key: kv.MetaBestHash, Value: []byte(types.Hash{}.String())},
		{Key: kv.MetaLastTimestamp, Value: []byte("0")},
	}
	allocations := f.allocationPairs()
	for addrStr, amountStr := range allocations {
		amount, err := types.ParseAmount(amountStr)
		if err != nil {
			return fmt.Errorf("genesis: allocation for %s: %w", addrStr, err)
		}
		acct := types.Account{Balance: amount, Nonce: 0}
		raw, err := codec.EncodeAccount(&acct)
		if err != nil {
			return err
		}
		batch = append(batch, kv.Op{Key: kv.AccountKey(addrStr), Value: raw})
	}

	log.Info().Str("chain_id", configuredChainID).Int("allocations", len(allocations)).Msg("initializing new chain from genesis")
	return store.WriteBatch(batch)
}
