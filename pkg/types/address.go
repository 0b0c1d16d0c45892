package types

import "strings"

// Address is a human-readable bech32 address text, prefixed "dyt1" or
// "dytallix1". The ledger treats it as an opaque comparable key beyond
// equality and the prefix check in HasValidPrefix.
type Address string

// DefaultHRP is the human-readable part used when deriving addresses
// from public keys; it is a compiled-in default rather than an exposed
// config knob.
const DefaultHRP = "dyt"

// HasValidPrefix reports whether the address begins with a recognized
// human-readable part.
func (a Address) HasValidPrefix() bool {
	s := string(a)
	return strings.HasPrefix(s, "dyt1") || strings.HasPrefix(s, "dytallix1")
}

func (a Address) String() string { return string(a) }
