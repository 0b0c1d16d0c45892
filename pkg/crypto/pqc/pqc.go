// Package pqc implements post-quantum signature verification over
// github.com/cloudflare/circl, the Go ecosystem's PQC cryptography
// library. Algorithms are looked up by name in circl's scheme registry
// so that an algorithm this build wasn't compiled with (Falcon/SPHINCS+
// behind a build tag circl itself doesn't ship on every platform) fails
// closed with FeatureNotCompiled instead of a silent false.
package pqc

import (
	"github.com/DytallixHQ/dytallix-node/pkg/types"
	"github.com/cloudflare/circl/sign"
	"github.com/cloudflare/circl/sign/schemes"
)

// Error is the typed result of a verification attempt.
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrInvalidAlgorithm   Error = "InvalidAlgorithm"
	ErrInvalidPublicKey   Error = "InvalidPublicKey"
	ErrInvalidSignature   Error = "InvalidSignature"
	ErrFeatureNotCompiled Error = "FeatureNotCompiled"
)

// schemeName maps the wire algorithm identifier to circl's scheme registry
// name. Any PqcAlgo not present here is, by definition, InvalidAlgorithm;
// any name present here that circl's build doesn't register is
// FeatureNotCompiled.
var schemeName = map[types.PqcAlgo]string{
	types.AlgoDilithium3: "Dilithium3",
	types.AlgoDilithium5: "Dilithium5",
	types.AlgoFalcon1024: "Falcon-1024",
	types.AlgoSphincs128: "SLH-DSA-SHA2-128s",
}

func lookup(algo types.PqcAlgo) (sign.Scheme, error) {
	name, ok := schemeName[algo]
	if !ok {
		return nil, ErrInvalidAlgorithm
	}
	scheme := schemes.ByName(name)
	if scheme == nil {
		return nil, ErrFeatureNotCompiled
	}
	return scheme, nil
}

// Verify checks a signature over body using the named algorithm. It
// returns a nil error on success, or one of the typed errors above.
func Verify(algo types.PqcAlgo, publicKey, body, signature []byte) error {
	scheme, err := lookup(algo)
	if err != nil {
		return err
	}
	if len(publicKey) != scheme.PublicKeySize() {
		return ErrInvalidPublicKey
	}
	pk, err := scheme.UnmarshalBinaryPublicKey(publicKey)
	if err != nil {
		return ErrInvalidPublicKey
	}
	if len(signature) != scheme.SignatureSize() {
		return ErrInvalidSignature
	}
	if !scheme.Verify(pk, body, signature, nil) {
		return ErrInvalidSignature
	}
	return nil
}

// SignatureSizes returns the (public key, signature) sizes an algorithm
// requires on this build, and whether the algorithm is compiled in at
// all. These are sourced from circl's scheme metadata rather than
// hardcoded, since optional schemes are host/build dependent.
func SignatureSizes(algo types.PqcAlgo) (pubKeySize, sigSize int, compiled bool) {
	scheme, err := lookup(algo)
	if err != nil {
		return 0, 0, false
	}
	return scheme.PublicKeySize(), scheme.SignatureSize(), true
}
