// Package ledger provides durable access to blocks, transactions and
// receipts over the KV store, and the chain-meta pointer read by both
// the producer and RPC readers: a single writer, read-only KV-backed
// queries shape.
package ledger

import (
	"strconv"

	"github.com/DytallixHQ/dytallix-node/pkg/codec"
	"github.com/DytallixHQ/dytallix-node/pkg/kv"
	"github.com/DytallixHQ/dytallix-node/pkg/types"
)

// ErrNotFound is returned by every lookup method for a missing record.
var ErrNotFound = kv.ErrNotFound

// Store provides read access to chain data; the producer persists a
// committed block by calling WriteBatch on the underlying kv.Store.
//
// CONCURRENCY: block writes only ever happen from the producer's single
// goroutine; Store itself holds no mutable state beyond
// the KV handle, so concurrent reads from RPC handlers need no
// additional locking.
type Store struct {
	kv kv.Store
}

// New wraps a KV store with chain-data accessors.
func New(store kv.Store) *Store { return &Store{kv: store} }

// GetAccount returns the persisted account for addr, or ErrNotFound.
func (s *Store) GetAccount(addr types.Address) (*types.Account, error) {
	raw, err := s.kv.Get(kv.AccountKey(string(addr)))
	if err != nil {
		return nil, err
	}
	return codec.DecodeAccount(raw)
}

// GetTransaction returns the persisted transaction for hash.
func (s *Store) GetTransaction(hash types.Hash) (*types.Transaction, error) {
	raw, err := s.kv.Get(kv.TxKey(hash.HexKey()))
	if err != nil {
		return nil, err
	}
	return codec.DecodeTransaction(raw)
}

// GetReceipt returns the persisted receipt for hash.
func (s *Store) GetReceipt(hash types.Hash) (*types.Receipt, error) {
	raw, err := s.kv.Get(kv.ReceiptKey(hash.HexKey()))
	if err != nil {
		return nil, err
	}
	return codec.DecodeReceipt(raw)
}

// GetBlockByHash returns the persisted block with the given hash.
func (s *Store) GetBlockByHash(hash types.Hash) (*types.Block, error) {
	raw, err := s.kv.Get(kv.BlockHashKey(hash.HexKey()))
	if err != nil {
		return nil, err
	}
	return codec.DecodeBlock(raw)
}

// GetBlockByHeight returns the persisted block at height, following the
// blk_num: -> hex hash -> blk_hash: indirection.
func (s *Store) GetBlockByHeight(height uint64) (*types.Block, error) {
	hexHash, err := s.kv.Get(kv.BlockHeightKey(height))
	if err != nil {
		return nil, err
	}
	hash, err := types.ParseHash(string(hexHash))
	if err != nil {
		return nil, err
	}
	return s.GetBlockByHash(hash)
}

// LoadAccounts scans every persisted account into a map, for seeding
// state.State at boot once genesis has run.
func (s *Store) LoadAccounts() (map[types.Address]types.Account, error) {
	pairs, err := s.kv.Scan(kv.PrefixAccount, nil, 0)
	if err != nil {
		return nil, err
	}
	out := make(map[types.Address]types.Account, len(pairs))
	for _, p := range pairs {
		addr := types.Address(p.Key[len(kv.PrefixAccount):])
		acct, err := codec.DecodeAccount(p.Value)
		if err != nil {
			return nil, err
		}
		out[addr] = *acct
	}
	return out, nil
}

// GetChainMeta returns the current chain-id/height/best-hash pointer.
func (s *Store) GetChainMeta() (*types.ChainMeta, error) {
	chainID, err := s.kv.Get(kv.MetaChainID)
	if err != nil {
		return nil, err
	}
	heightRaw, err := s.kv.Get(kv.MetaHeight)
	if err != nil {
		return nil, err
	}
	height, err := strconv.ParseUint(string(heightRaw), 10, 64)
	if err != nil {
		return nil, err
	}
	bestHashRaw, err := s.kv.Get(kv.MetaBestHash)
	if err != nil {
		return nil, err
	}
	bestHash, err := types.ParseHash(string(bestHashRaw))
	if err != nil {
		return nil, err
	}
	var lastTimestamp int64
	if tsRaw, err := s.kv.Get(kv.MetaLastTimestamp); err == nil {
		lastTimestamp, err = strconv.ParseInt(string(tsRaw), 10, 64)
		if err != nil {
			return nil, err
		}
	} else if err != kv.ErrNotFound {
		return nil, err
	}
	return &types.ChainMeta{ChainID: string(chainID), Height: height, BestHash: bestHash, LastTimestamp: lastTimestamp}, nil
}

// ListBlocksDescending returns up to limit blocks starting at the most
// recent, skipping offset, for GET /blocks.
func (s *Store) ListBlocksDescending(latestHeight uint64, offset, limit int) ([]*types.Block, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	out := make([]*types.Block, 0, limit)
	if int64(latestHeight)-int64(offset) < 1 {
		return out, nil
	}
	start := latestHeight - uint64(offset)
	for h := start; h >= 1 && len(out) < limit; h-- {
		blk, err := s.GetBlockByHeight(h)
		if err != nil {
			if err == ErrNotFound {
				break
			}
			return nil, err
		}
		out = append(out, blk)
		if h == 1 {
			break
		}
	}
	return out, nil
}
