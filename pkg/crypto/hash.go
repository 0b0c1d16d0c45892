package crypto

import "crypto/sha256"

// SHA256 is exposed as a thin wrapper so every caller (address derivation,
// block hashing via pkg/codec) goes through one obvious entry point rather
// than importing crypto/sha256 ad hoc.
func SHA256(b []byte) [32]byte { return sha256.Sum256(b) }
