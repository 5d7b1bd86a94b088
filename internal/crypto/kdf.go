package crypto

import (
	"golang.org/x/crypto/sha3"

	"otr4/internal/domain/types"
)

// DomainOTR4 is the default domain-separation string for every KDF call in
// this module (spec 4.A: `"OTRv4"` unless noted).
const DomainOTR4 = "OTRv4"

// Usage bytes, allocated one per semantic purpose. 0x1C (ring signature
// challenge) is given by the spec; the rest are this implementation's own
// non-overlapping allocation.
const (
	UsageRingSigChallenge   byte = 0x1C
	UsageFingerprint        byte = 0x00
	UsageSharedSecret       byte = 0x02
	UsageBraceKey           byte = 0x03
	UsageRootKey            byte = 0x04
	UsageChainKey           byte = 0x05
	UsageNextChainKey       byte = 0x06
	UsageMessageKey         byte = 0x07
	UsageMACKey             byte = 0x08
	UsageExtraSymmetricKey  byte = 0x09
	UsageAuthMACKey         byte = 0x0A
	UsageTmpKey             byte = 0x0B
	UsageTranscriptHash     byte = 0x0C
	UsageSSID               byte = 0x0D
	UsageSharedPrekeyExpand byte = 0x0E
	UsageSignChallenge      byte = 0x0F
	UsageDAKESharedSecret   byte = 0x10
)

// KDF computes SHAKE256(domain || usage || inputs..., outLen), the single
// KDF primitive every key derivation in this module goes through.
func KDF(usage byte, domain string, outLen int, inputs ...[]byte) []byte {
	h := sha3.NewShake256()
	h.Write([]byte(domain))
	h.Write([]byte{usage})
	for _, in := range inputs {
		h.Write(in)
	}
	out := make([]byte, outLen)
	h.Read(out)
	return out
}

// KDF32 is KDF with a 32-byte output, the common case for chain/message keys.
func KDF32(usage byte, inputs ...[]byte) [32]byte {
	var out [32]byte
	copy(out[:], KDF(usage, DomainOTR4, 32, inputs...))
	return out
}

// KDF64 is KDF with a 64-byte output, the common case for root keys and MAC keys.
func KDF64(usage byte, inputs ...[]byte) [64]byte {
	var out [64]byte
	copy(out[:], KDF(usage, DomainOTR4, 64, inputs...))
	return out
}

// KDFScalar derives a uniform Ed448 scalar from inputs via wide reduction,
// used wherever the ring signature needs a KDF output "interpreted as
// scalar mod q" (spec 4.B step 3).
func KDFScalar(usage byte, inputs ...[]byte) types.ECDHPrivate {
	wide := KDF(usage, DomainOTR4, 114, inputs...)
	return scalarFromWideBytes(wide)
}
