package crypto

import (
	"github.com/btcsuite/btcutil/bech32"

	"github.com/DytallixHQ/dytallix-node/pkg/types"
)

// AddressFromPubkey derives a bech32 address from a public key:
// SHA-256 over the public key, keep the first 20 bytes, bech32-encode
// with the given human-readable part.
func AddressFromPubkey(pubkey []byte, hrp string) (types.Address, error) {
	digest := SHA256(pubkey)
	payload := digest[:20]
	converted, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", err
	}
	encoded, err := bech32.Encode(hrp, converted)
	if err != nil {
		return "", err
	}
	return types.Address(encoded), nil
}
