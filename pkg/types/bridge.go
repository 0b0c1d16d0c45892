package types

// BridgeMessage is a cross-chain transfer claim, guarded by validator
// quorum before it is moved from the pending table into the applied
// (terminal, idempotent) table.
type BridgeMessage struct {
	ID           Hash     `json:"id"`
	SourceChain  string   `json:"source_chain"`
	DestChain    string   `json:"dest_chain"`
	Asset        string   `json:"asset"`
	Amount       Amount   `json:"amount"`
	Recipient    Address  `json:"recipient"`
	Signatures   [][]byte `json:"signatures"`
	Signers      []string `json:"signers"`
}

// BridgeValidator is one member of the bridge's fixed validator set,
// loaded once from BRIDGE_VALIDATORS at first boot.
type BridgeValidator struct {
	ID     string `json:"id"`
	Pubkey []byte `json:"pubkey"` // Ed25519 public key
}

// QuorumThreshold returns the minimum number of distinct valid signers
// required to accept a bridge message: ceil(2*n/3).
func QuorumThreshold(validatorCount int) int {
	return (2*validatorCount + 2) / 3
}
