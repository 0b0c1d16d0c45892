// Package state holds the in-memory hot view of account balances and
// nonces. It is mutated only by the block producer's goroutine; RPC
// readers only ever read through Snapshot-free accessor methods, which
// take the same mutex, so no Account value ever escapes to a caller
// that could mutate it out of band.
package state

import (
	"sync"

	"github.com/DytallixHQ/dytallix-node/pkg/types"
)

// Error is the typed result of an apply attempt.
type Error string

func (e Error) Error() string { return string(e) }

const ErrInsufficientBalance Error = "InsufficientBalance"

// State is the authoritative in-memory account map, write-through to the
// KV store by the caller at block commit (State itself does no I/O).
type State struct {
	mu       sync.Mutex
	accounts map[types.Address]types.Account
}

// New builds an empty State; callers populate it from the KV store at
// boot via Load.
func New() *State {
	return &State{accounts: make(map[types.Address]types.Account)}
}

// Load seeds the state from a snapshot of persisted accounts (called once
// at boot after genesis has run).
func (s *State) Load(accounts map[types.Address]types.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = make(map[types.Address]types.Account, len(accounts))
	for addr, acct := range accounts {
		s.accounts[addr] = acct
	}
}

// Get returns the account for addr, defaulting to the zero value
// ({0, 0}) for an address never seen before.
func (s *State) Get(addr types.Address) types.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[addr]
}

// ApplyTransfer debits amount+fee from from and credits amount to to.
// Fees are burned at the engine level, with no credit destination in
// the core. It does not touch nonces; call IncrNonce
// separately once the caller has decided the transaction is fully valid.
func (s *State) ApplyTransfer(from, to types.Address, amount, fee types.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	debit := amount.Add(fee)
	sender := s.accounts[from]
	if sender.Balance.Cmp(debit) < 0 {
		return ErrInsufficientBalance
	}
	sender.Balance = sender.Balance.Sub(debit)
	s.accounts[from] = sender

	recipient := s.accounts[to]
	recipient.Balance = recipient.Balance.Add(amount)
	s.accounts[to] = recipient
	return nil
}

// IncrNonce advances the sender's nonce by exactly 1.
func (s *State) IncrNonce(from types.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.accounts[from]
	acct.Nonce++
	s.accounts[from] = acct
}

// CreditGenesis sets an initial balance at boot; it must only be called
// by the genesis loader before the producer starts.
func (s *State) CreditGenesis(addr types.Address, amount types.Amount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.accounts[addr]
	acct.Balance = acct.Balance.Add(amount)
	s.accounts[addr] = acct
}

// Snapshot returns a shallow copy of the whole account map, to bracket a
// block's tentative mutations so a failed batch commit can be undone via
// Restore without ever becoming observable to a reader.
func (s *State) Snapshot() map[types.Address]types.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[types.Address]types.Account, len(s.accounts))
	for addr, acct := range s.accounts {
		out[addr] = acct
	}
	return out
}

// Restore replaces the account map wholesale with a prior Snapshot,
// discarding any mutations made since, used when a block's KV batch
// commit fails.
func (s *State) Restore(snapshot map[types.Address]types.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = snapshot
}

// Touched returns the current (address, account) pairs for exactly the
// addresses named, so a caller can persist just those accounts without
// serializing the entire account map.
func (s *State) Touched(addrs []types.Address) map[types.Address]types.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[types.Address]types.Account, len(addrs))
	for _, addr := range addrs {
		out[addr] = s.accounts[addr]
	}
	return out
}
