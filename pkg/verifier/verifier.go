// Package verifier implements admission checks for transactions,
// AI-risk oracle posts, and bridge ingest.
package verifier

import (
	"github.com/DytallixHQ/dytallix-node/pkg/codec"
	"github.com/DytallixHQ/dytallix-node/pkg/crypto"
	"github.com/DytallixHQ/dytallix-node/pkg/crypto/pqc"
	"github.com/DytallixHQ/dytallix-node/pkg/kv"
	"github.com/DytallixHQ/dytallix-node/pkg/mempool"
	"github.com/DytallixHQ/dytallix-node/pkg/state"
	"github.com/DytallixHQ/dytallix-node/pkg/types"
)

// Error is a typed admission-rejection reason.
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrMalformed           Error = "Malformed"
	ErrUnknownAlgorithm    Error = "UnknownAlgorithm"
	ErrInvalidPublicKey    Error = "InvalidPublicKey"
	ErrInvalidSignature    Error = "InvalidSignature"
	ErrAddressMismatch     Error = "AddressMismatch"
	ErrDuplicate           Error = "Duplicate"
	ErrInsufficientBalance Error = "InsufficientBalance"
	ErrFeatureNotCompiled  Error = "FeatureNotCompiled"
)

// InvalidNonceError carries the expected/got pair so a client can
// resync.
type InvalidNonceError struct {
	Expected uint64
	Got      uint64
}

func (e *InvalidNonceError) Error() string { return "InvalidNonce" }

// Verifier holds the read-only collaborators needed to admit a
// transaction: the hot account state, the KV store (for hash-uniqueness
// lookups), and the mempool (for dedup against already-queued hashes).
type Verifier struct {
	state   *state.State
	kv      kv.Store
	mempool *mempool.Mempool
	hrp     string
	relaxed bool
}

// New builds a Verifier. hrp is the bech32 human-readable part addresses
// must derive against. relaxed skips the address-derivation and
// signature checks (RUNTIME_MOCKS, dev only); hash, duplicate, nonce
// and balance checks still apply so the ledger stays consistent.
func New(st *state.State, store kv.Store, mp *mempool.Mempool, hrp string, relaxed bool) *Verifier {
	if hrp == "" {
		hrp = types.DefaultHRP
	}
	return &Verifier{state: st, kv: store, mempool: mp, hrp: hrp, relaxed: relaxed}
}

// VerifyTransaction runs the admission checks in order: well-formed
// body, address derives from the public key, signature over the
// canonical body bytes, hash correctness and uniqueness, nonce equals
// the sender's current nonce, and a best-effort balance precheck.
// Wire-level nonce omission is the transport's concern: the RPC layer
// resolves an omitted nonce to the sender's current nonce before
// calling, so tx.Nonce is always concrete here. The canonical bytes
// cover the nonce, which means an omitted-nonce submission only
// verifies when the client signed over that same current value.
func (v *Verifier) VerifyTransaction(tx *types.Transaction) error {
	if err := checkWellFormed(tx); err != nil {
		return err
	}

	if !v.relaxed {
		if err := v.checkSignature(tx); err != nil {
			return err
		}
	}

	hash := codec.TxHash(tx)
	if tx.Hash != hash {
		return ErrMalformed
	}
	if v.mempool.Has(hash) {
		return ErrDuplicate
	}
	if _, err := v.kv.Get(kv.TxKey(hash.HexKey())); err == nil {
		return ErrDuplicate
	}

	sender := v.state.Get(tx.From)
	if tx.Nonce != sender.Nonce {
		return &InvalidNonceError{Expected: sender.Nonce, Got: tx.Nonce}
	}

	debit := tx.Amount.Add(tx.Fee)
	if sender.Balance.Cmp(debit) < 0 {
		return ErrInsufficientBalance
	}
	return nil
}

func (v *Verifier) checkSignature(tx *types.Transaction) error {
	derived, err := crypto.AddressFromPubkey(tx.PublicKey, v.hrp)
	if err != nil || derived != tx.From {
		return ErrAddressMismatch
	}

	body := codec.TxCanonicalBytes(tx)
	if err := pqc.Verify(tx.Algorithm, tx.PublicKey, body, tx.Signature); err != nil {
		switch err {
		case pqc.ErrInvalidPublicKey:
			return ErrInvalidPublicKey
		case pqc.ErrInvalidAlgorithm:
			return ErrUnknownAlgorithm
		case pqc.ErrFeatureNotCompiled:
			// Never collapse an unavailable algorithm into a plain
			// signature failure: the caller must be able to tell the
			// difference.
			return ErrFeatureNotCompiled
		default:
			return ErrInvalidSignature
		}
	}
	return nil
}

func checkWellFormed(tx *types.Transaction) error {
	if !tx.From.HasValidPrefix() || !tx.To.HasValidPrefix() {
		return ErrMalformed
	}
	if !tx.Algorithm.Known() {
		return ErrUnknownAlgorithm
	}
	return nil
}
