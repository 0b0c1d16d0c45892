package types

import (
	"encoding/hex"
	"errors"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Hash is a 32-byte digest, wire-encoded as a "0x"-prefixed lowercase hex
// string.
type Hash [32]byte

// GenesisParent is the sentinel parent hash value for the block at height 1.
const GenesisParent = "genesis"

// ErrMalformedHash is returned for any hex string that isn't exactly
// "0x" + 64 hex characters (either case is accepted).
var ErrMalformedHash = errors.New("malformed hash")

// String encodes the hash via go-ethereum's hexutil, the standard
// "0x"-prefixed hex convention used elsewhere for address/hash
// formatting.
func (h Hash) String() string {
	return hexutil.Encode(h[:])
}

// MarshalJSON encodes the hash as a "0x"-prefixed quoted hex string.
func (h Hash) MarshalJSON() ([]byte, error) {
	s := h.String()
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	out = append(out, s...)
	out = append(out, '"')
	return out, nil
}

// UnmarshalJSON decodes a "0x"-prefixed hex string into the hash.
func (h *Hash) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return ErrMalformedHash
	}
	parsed, err := ParseHash(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHash parses a "0x"-prefixed 64-hex-character string into a Hash.
func ParseHash(s string) (Hash, error) {
	if len(s) != 66 || s[0] != '0' || s[1] != 'x' {
		return Hash{}, ErrMalformedHash
	}
	raw, err := hexutil.Decode(s)
	if err != nil || len(raw) != 32 {
		return Hash{}, ErrMalformedHash
	}
	var h Hash
	copy(h[:], raw)
	return h, nil
}

// HexKey returns the lowercase hex (no "0x" prefix) used as a KV key suffix.
func (h Hash) HexKey() string { return hex.EncodeToString(h[:]) }
