package crypto

import "crypto/subtle"

// CtEq compares two byte buffers in constant time, used for MAC
// verification and ring-signature public-key selection.
func CtEq(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
