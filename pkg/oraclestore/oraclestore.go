// Package oraclestore persists AI risk-score posts keyed by the
// transaction hash they annotate, mirroring the shape of pkg/ledger's
// account/tx accessors one level down: a thin typed wrapper over
// kv.Store with no logic of its own beyond key construction and JSON
// codec calls.
package oraclestore

import (
	"encoding/json"

	"github.com/DytallixHQ/dytallix-node/pkg/kv"
	"github.com/DytallixHQ/dytallix-node/pkg/types"
)

// ErrNotFound is returned when no risk score has been posted for a hash.
var ErrNotFound = kv.ErrNotFound

// Store persists oracle risk-score records.
type Store struct {
	kv kv.Store
}

// New wraps a KV store with oracle-record accessors.
func New(store kv.Store) *Store { return &Store{kv: store} }

// Put persists rec under its transaction hash, overwriting any prior
// post for the same hash: last write wins, there is no append-only
// history of risk scores.
func (s *Store) Put(rec *types.OracleRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.kv.Put(kv.OracleKey(rec.TxHash.HexKey()), raw)
}

// Get returns the risk-score record posted for hash, or ErrNotFound.
func (s *Store) Get(hash types.Hash) (*types.OracleRecord, error) {
	raw, err := s.kv.Get(kv.OracleKey(hash.HexKey()))
	if err != nil {
		return nil, err
	}
	var rec types.OracleRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
