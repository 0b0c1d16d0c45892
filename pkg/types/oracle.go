package types

// OracleRecord is an off-chain AI risk score attached to a single
// transaction hash. Signature is checked against AI_ORACLE_PUBKEY when
// that key is configured and ignored otherwise (local-dev mode).
// OraclePubkey is stored as posted; the node never fills or checks it.
type OracleRecord struct {
	TxHash       Hash    `json:"tx_hash"`
	Score        float64 `json:"score"`
	Signature    []byte  `json:"signature,omitempty"`
	OraclePubkey []byte  `json:"oracle_pubkey,omitempty"`
}
