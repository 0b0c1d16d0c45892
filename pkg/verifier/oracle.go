package verifier

import (
	"encoding/base64"

	"github.com/DytallixHQ/dytallix-node/pkg/codec"
	"github.com/DytallixHQ/dytallix-node/pkg/crypto"
	"github.com/DytallixHQ/dytallix-node/pkg/types"
)

// VerifyOracleRecord checks that an AI risk-score post's score is within
// [0,1] and that its signature verifies against the configured oracle
// public key. An empty oraclePubkeyB64 means no
// quorum is configured and the signature is optional and ignored;
// local-dev mode only.
func VerifyOracleRecord(rec *types.OracleRecord, oraclePubkeyB64 string) error {
	if rec.Score < 0 || rec.Score > 1 {
		return ErrMalformed
	}
	if oraclePubkeyB64 == "" {
		return nil
	}
	pubkey, err := base64.StdEncoding.DecodeString(oraclePubkeyB64)
	if err != nil {
		return ErrInvalidPublicKey
	}
	payload := codec.OraclePayload(rec.TxHash, rec.Score)
	if !crypto.VerifyEd25519(pubkey, payload, rec.Signature) {
		return ErrInvalidSignature
	}
	return nil
}
