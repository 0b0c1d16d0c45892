package crypto

import "crypto/ed25519"

// VerifyEd25519 checks an Ed25519 signature over message, used for
// oracle risk-score posts and bridge validator signatures. The standard
// library implementation is used directly here; there is no ecosystem
// library this would meaningfully improve on.
func VerifyEd25519(pubkey, message, signature []byte) bool {
	if len(pubkey) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pubkey), message, signature)
}
