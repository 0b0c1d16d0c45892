package eventbus

import "github.com/DytallixHQ/dytallix-node/pkg/types"

// NewTransactionPayload is the Payload for EventNewTransaction.
type NewTransactionPayload struct {
	Hash types.Hash `json:"hash"`
}

// NewBlockPayload is the Payload for EventNewBlock.
type NewBlockPayload struct {
	Height uint64       `json:"height"`
	Hash   types.Hash   `json:"hash"`
	Txs    []types.Hash `json:"txs"`
}

// BridgeAppliedPayload is the Payload for EventBridgeApplied.
type BridgeAppliedPayload struct {
	ID types.Hash `json:"id"`
}

// AIRiskPostedPayload is the Payload for EventAIRiskPosted.
type AIRiskPostedPayload struct {
	TxHash types.Hash `json:"tx_hash"`
	Score  float64    `json:"score"`
}
