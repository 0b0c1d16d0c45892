// Package bridgestore persists bridge validator set, halt flag, asset
// custody balances, and pending/applied message idempotence records,
// the same thin-wrapper-over-kv.Store shape as pkg/oraclestore one
// package over.
package bridgestore

import (
	"encoding/json"
	"errors"

	"github.com/DytallixHQ/dytallix-node/pkg/codec"
	"github.com/DytallixHQ/dytallix-node/pkg/kv"
	"github.com/DytallixHQ/dytallix-node/pkg/types"
)

// ErrNotFound is returned by lookups with no matching record.
var ErrNotFound = kv.ErrNotFound

// ErrAlreadyApplied is returned by Apply when a message id has already
// been committed, making bridge ingest idempotent.
var ErrAlreadyApplied = errors.New("bridge message already applied")

// Store persists bridge validator/halt/custody/message state.
type Store struct {
	kv kv.Store
}

// New wraps a KV store with bridge-state accessors.
func New(store kv.Store) *Store { return &Store{kv: store} }

// Validators returns the configured validator set, or an empty slice if
// none has ever been written. The set is stored as a JSON array so it
// can be inspected and seeded by hand against a stopped node.
func (s *Store) Validators() ([]types.BridgeValidator, error) {
	raw, err := s.kv.Get(kv.KeyBridgeValidators)
	if err != nil {
		if err == kv.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	var validators []types.BridgeValidator
	if err := json.Unmarshal(raw, &validators); err != nil {
		return nil, err
	}
	return validators, nil
}

// SetValidators overwrites the validator set.
func (s *Store) SetValidators(validators []types.BridgeValidator) error {
	raw, err := json.Marshal(validators)
	if err != nil {
		return err
	}
	return s.kv.Put(kv.KeyBridgeValidators, raw)
}

// Halted reports whether bridge ingest is currently halted.
func (s *Store) Halted() (bool, error) {
	raw, err := s.kv.Get(kv.KeyBridgeHalted)
	if err != nil {
		if err == kv.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return len(raw) == 1 && raw[0] == 1, nil
}

// SetHalted flips the halt flag, toggled by POST /bridge/halt.
func (s *Store) SetHalted(halted bool) error {
	v := byte(0)
	if halted {
		v = 1
	}
	return s.kv.Put(kv.KeyBridgeHalted, []byte{v})
}

// IsApplied reports whether a bridge message id has already been
// committed, so ingest can be checked for idempotence before spending
// any verification effort on it.
func (s *Store) IsApplied(id types.Hash) (bool, error) {
	_, err := s.kv.Get(kv.BridgeAppliedKey(id.HexKey()))
	if err == nil {
		return true, nil
	}
	if err == kv.ErrNotFound {
		return false, nil
	}
	return false, err
}

// Stage persists msg under the pending key space, ahead of quorum
// verification, so an ingested message that does not (yet) clear quorum
// is still durably recorded rather than dropped on the floor.
func (s *Store) Stage(msg *types.BridgeMessage) error {
	msgRaw, err := codec.EncodeBridgeMessage(msg)
	if err != nil {
		return err
	}
	return s.kv.Put(kv.BridgePendingKey(msg.ID.HexKey()), msgRaw)
}

// Apply persists msg as applied, crediting the destination custody
// balance for its asset and removing any staged pending record for the
// same id, in one atomic batch. Returns ErrAlreadyApplied if msg.ID was
// already committed.
func (s *Store) Apply(msg *types.BridgeMessage, newCustodyBalance types.Amount) error {
	applied, err := s.IsApplied(msg.ID)
	if err != nil {
		return err
	}
	if applied {
		return ErrAlreadyApplied
	}

	msgRaw, err := codec.EncodeBridgeMessage(msg)
	if err != nil {
		return err
	}
	return s.kv.WriteBatch([]kv.Op{
		{Key: kv.BridgeAppliedKey(msg.ID.HexKey()), Value: msgRaw},
		{Key: kv.BridgeCustodyKey(msg.Asset), Value: []byte(newCustodyBalance.String())},
		{Key: kv.BridgePendingKey(msg.ID.HexKey()), Value: nil},
	})
}

// CustodyBalance returns the tracked custody balance for asset, or zero
// if no custody record has been written yet.
func (s *Store) CustodyBalance(asset string) (types.Amount, error) {
	raw, err := s.kv.Get(kv.BridgeCustodyKey(asset))
	if err != nil {
		if err == kv.ErrNotFound {
			return types.ZeroAmount(), nil
		}
		return types.Amount{}, err
	}
	return types.ParseAmount(string(raw))
}
