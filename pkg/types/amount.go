// Package types defines the wire and storage data model shared across the
// ledger engine: accounts, transactions, receipts, blocks and chain
// metadata.
package types

import (
	"errors"
	"math/big"
)

// ErrMalformedAmount is returned when a decimal-string amount fails strict
// parsing: empty, non-digit, leading zero padding beyond "0" itself, a
// leading sign, or negative.
var ErrMalformedAmount = errors.New("malformed u128 amount")

// Amount is a non-negative integer amount, wire-encoded as a decimal ASCII
// string so it survives JSON's float64 precision limits. Internally it
// holds an arbitrary-precision integer; callers that need a fixed-width
// range are responsible for their own bound check (the ledger itself
// never needs to bound balances beyond non-negativity).
type Amount struct {
	v big.Int
}

// ZeroAmount is the additive identity.
func ZeroAmount() Amount { return Amount{} }

// NewAmount builds an Amount from a non-negative int64, panicking on a
// negative value since that indicates a programming error, not user input.
func NewAmount(v int64) Amount {
	if v < 0 {
		panic("types: NewAmount called with negative value")
	}
	var a Amount
	a.v.SetInt64(v)
	return a
}

// ParseAmount strictly parses a decimal ASCII amount string: no sign, no
// leading zero unless the value is exactly "0", and digits only.
func ParseAmount(s string) (Amount, error) {
	if s == "" {
		return Amount{}, ErrMalformedAmount
	}
	if len(s) > 1 && s[0] == '0' {
		return Amount{}, ErrMalformedAmount
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return Amount{}, ErrMalformedAmount
		}
	}
	var a Amount
	if _, ok := a.v.SetString(s, 10); !ok {
		return Amount{}, ErrMalformedAmount
	}
	return a, nil
}

// String returns the canonical decimal representation.
func (a Amount) String() string { return a.v.String() }

// Sign reports -1/0/+1 as per math/big.Int.Sign.
func (a Amount) Sign() int { return a.v.Sign() }

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool { return a.v.Sign() == 0 }

// Cmp compares two amounts as math/big.Int.Cmp does.
func (a Amount) Cmp(b Amount) int { return a.v.Cmp(&b.v) }

// Add returns a+b.
func (a Amount) Add(b Amount) Amount {
	var out Amount
	out.v.Add(&a.v, &b.v)
	return out
}

// Sub returns a-b. Callers must ensure a >= b; the ledger never subtracts
// past zero because state.ApplyTransfer checks balance first.
func (a Amount) Sub(b Amount) Amount {
	var out Amount
	out.v.Sub(&a.v, &b.v)
	return out
}

// BigInt returns a copy of the underlying big.Int.
func (a Amount) BigInt() *big.Int { return new(big.Int).Set(&a.v) }

// MarshalJSON encodes the amount as a quoted decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	s := a.v.String()
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	out = append(out, s...)
	out = append(out, '"')
	return out, nil
}

// UnmarshalJSON decodes a quoted decimal string via ParseAmount.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return ErrMalformedAmount
	}
	parsed, err := ParseAmount(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
