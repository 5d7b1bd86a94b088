package crypto

import (
	"otr4/internal/domain/types"
)

// GenerateSigningKey returns a fresh Ed448 scalar/point keypair, used for
// the long-term identity key and the forging key; profiles are signed with
// it through Sign below, not RFC 8032 EdDSA. It is the same scalar/point representation
// GenerateECDH produces, so a Client Profile's published long-term or
// forging key doubles as a ring-signature member with no conversion.
func GenerateSigningKey() (types.SigningKeyPair, error) {
	priv, pub, err := GenerateECDH()
	if err != nil {
		return types.SigningKeyPair{}, err
	}
	return types.SigningKeyPair{Priv: priv, Pub: pub}, nil
}

// Sign produces a single-key Schnorr-style signature (R, s) over msg under
// key: a degenerate, one-member case of the same commit/challenge/respond
// construction the ring signature builds on (spec 4.B), rather than a
// second, incompatible signature scheme over the same key.
func Sign(key types.SigningKeyPair, msg []byte) [114]byte {
	t, err := RandomScalar()
	if err != nil {
		// RandomScalar only fails if the system CSPRNG is broken, which
		// callers cannot meaningfully recover from either; surface it as
		// an all-zero (and therefore rejected by Verify) signature.
		return [114]byte{}
	}
	R := ScalarBaseMult(t)
	c := KDFScalar(UsageSignChallenge, R[:], key.Pub[:], msg)
	s := ScalarSub(t, ScalarMul(c, key.Priv))

	var out [114]byte
	copy(out[:57], R[:])
	copy(out[57:], s[:])
	return out
}

// Verify checks a Sign signature over msg under pub.
func Verify(pub types.ECDHPublic, msg []byte, sig [114]byte) bool {
	var R types.ECDHPublic
	var s types.ECDHPrivate
	copy(R[:], sig[:57])
	copy(s[:], sig[57:])

	c := KDFScalar(UsageSignChallenge, R[:], pub[:], msg)
	got, ok := PointScalarBaseMultAdd(s, c, pub)
	return ok && CtEq(got[:], R[:])
}
