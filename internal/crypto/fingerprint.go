package crypto

import "encoding/hex"

// Fingerprint returns the first 56 hex characters of
// KDF(usage_fingerprint, public_key || forging_key), the display form a
// host shows for out-of-band verification (spec 6).
func Fingerprint(publicKey, forgingKey [57]byte) string {
	digest := KDF(UsageFingerprint, DomainOTR4, 28, publicKey[:], forgingKey[:])
	return hex.EncodeToString(digest)[:56]
}
