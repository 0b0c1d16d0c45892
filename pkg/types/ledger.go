package types

// Denom enumerates the transferable asset denominations the engine knows
// about. The core treats these as opaque tags; conversion/pricing between
// them is out of scope.
type Denom string

const (
	DenomDGT    Denom = "DGT"
	DenomDRT    Denom = "DRT"
	DenomNative Denom = "native"
)

// Account is the per-address ledger record. A non-existent account behaves
// as the zero value: balance 0, nonce 0.
type Account struct {
	Balance Amount `json:"balance"`
	Nonce   uint64 `json:"nonce"`
}

// Transaction is a signed value-transfer. Hash is derived deterministically
// from the canonical encoding of every field except Hash, PublicKey and
// Signature (see pkg/codec).
type Transaction struct {
	Hash      Hash      `json:"hash"`
	From      Address   `json:"from"`
	To        Address   `json:"to"`
	Denom     Denom     `json:"denom"`
	Amount    Amount    `json:"amount"`
	Fee       Amount    `json:"fee"`
	Nonce     uint64    `json:"nonce"`
	Algorithm PqcAlgo   `json:"algorithm"`
	PublicKey []byte    `json:"public_key"`
	Signature []byte    `json:"signature"`
	Memo      string    `json:"memo,omitempty"`
}

// ReceiptStatus is the terminal or intermediate status of a transaction.
type ReceiptStatus string

const (
	ReceiptPending ReceiptStatus = "pending"
	ReceiptSuccess ReceiptStatus = "success"
	ReceiptFailed  ReceiptStatus = "failed"
)

// Receipt is the lifecycle record of a transaction, keyed by its hash.
// It is created pending at admission and rewritten with a terminal status
// at inclusion; it is never deleted.
type Receipt struct {
	Hash         Hash          `json:"hash"`
	Status       ReceiptStatus `json:"status"`
	BlockHeight  uint64        `json:"block_height,omitempty"`
	Index        uint32        `json:"index,omitempty"`
	Fee          Amount        `json:"fee"`
	From         Address       `json:"from"`
	To           Address       `json:"to"`
	Amount       Amount        `json:"amount"`
	Nonce        uint64        `json:"nonce"`
	Error        string        `json:"error,omitempty"`
	AIRiskScore  *float64      `json:"ai_risk_score,omitempty"`
}

// Block is one slot of the linear, single-producer chain.
type Block struct {
	Height    uint64  `json:"height"`
	Hash      Hash    `json:"hash"`
	Parent    string  `json:"parent"` // hex hash, or "genesis" for height 1
	Timestamp int64   `json:"timestamp"`
	Proposer  Address `json:"proposer"` // "single" when no distinct proposer identity is configured
	TxHashes  []Hash  `json:"tx_hashes"`
	TxCount   uint32  `json:"tx_count"`
}

// ChainMeta is the small, frequently-read pointer into chain head state.
type ChainMeta struct {
	ChainID       string `json:"chain_id"`
	Height        uint64 `json:"height"`
	BestHash      Hash   `json:"best_hash"`
	LastTimestamp int64  `json:"last_timestamp"`
}
