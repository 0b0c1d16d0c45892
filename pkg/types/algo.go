package types

// PqcAlgo is the closed set of post-quantum signature algorithms a
// transaction may be signed with. Wire values decode as-is; any value
// outside the set (including the empty AlgoUnknown) makes Known report
// false, and the verifier rejects it with UnknownAlgorithm rather than
// silently treating it as a default.
type PqcAlgo string

const (
	AlgoUnknown    PqcAlgo = ""
	AlgoDilithium3 PqcAlgo = "dilithium3"
	AlgoDilithium5 PqcAlgo = "dilithium5"
	AlgoFalcon1024 PqcAlgo = "falcon1024"
	AlgoSphincs128 PqcAlgo = "sphincs-sha2-128s-simple"
)

// Known reports whether a is one of the algorithms the registry recognizes
// as a name, independent of whether it is actually compiled in on this
// build (see pkg/crypto/pqc for the FeatureNotCompiled distinction).
func (a PqcAlgo) Known() bool {
	switch a {
	case AlgoDilithium3, AlgoDilithium5, AlgoFalcon1024, AlgoSphincs128:
		return true
	default:
		return false
	}
}
