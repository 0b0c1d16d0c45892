package verifier

import (
	"github.com/DytallixHQ/dytallix-node/pkg/codec"
	"github.com/DytallixHQ/dytallix-node/pkg/crypto"
	"github.com/DytallixHQ/dytallix-node/pkg/types"
)

// BridgeError is a typed bridge-quorum rejection reason.
type BridgeError string

func (e BridgeError) Error() string { return string(e) }

const (
	ErrUnknownValidator   BridgeError = "UnknownValidator"
	ErrInsufficientQuorum BridgeError = "InsufficientQuorum"
	ErrBridgeHalted       BridgeError = "BridgeHalted"
)

// VerifyBridgeMessage implements the bridge quorum rule: not halted,
// distinct valid signers >= ceil(2|V|/3), each signature
// verifying the canonical payload under its named signer's registered
// key. Idempotency (id already applied) is the caller's concern; the
// bridge store checks that before this is even called.
func VerifyBridgeMessage(msg *types.BridgeMessage, validators []types.BridgeValidator, halted bool) error {
	if halted {
		return ErrBridgeHalted
	}

	byID := make(map[string][]byte, len(validators))
	for _, v := range validators {
		byID[v.ID] = v.Pubkey
	}

	if len(msg.Signers) != len(msg.Signatures) {
		return ErrInvalidSignature
	}

	payload := codec.BridgePayload(msg)
	seen := make(map[string]bool, len(msg.Signers))
	validCount := 0
	for i, signerID := range msg.Signers {
		pubkey, ok := byID[signerID]
		if !ok {
			return ErrUnknownValidator
		}
		if seen[signerID] {
			continue // a repeated signer never counts twice toward quorum
		}
		if !crypto.VerifyEd25519(pubkey, payload, msg.Signatures[i]) {
			return ErrInvalidSignature
		}
		seen[signerID] = true
		validCount++
	}

	if validCount < types.QuorumThreshold(len(validators)) {
		return ErrInsufficientQuorum
	}
	return nil
}
