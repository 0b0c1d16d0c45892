package codec

import "strconv"

// formatScore renders a risk score the same way on the signing and
// verifying side: shortest round-trippable decimal representation, no
// trailing zeros, no exponent for the [0,1] range oracle scores live in.
func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
