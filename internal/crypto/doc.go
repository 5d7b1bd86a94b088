// Package crypto exposes the primitives the OTRv4 core is built from.
//
// Contents
//
//   - Ed448-Goldilocks scalar/point arithmetic for the ring signature and
//     the ECDH half of the double ratchet (GenerateECDH, ECDH, RandomScalar,
//     ScalarAdd/Sub/Mul/Neg, PointAdd)
//   - Schnorr-style signing/verification over Ed448-Goldilocks for profiles
//     (Sign, Verify, GenerateSigningKey); this is not RFC 8032 Ed448 (EdDSA)
//   - The RFC 3526 3072-bit MODP group for the ratchet's classical "brace
//     key" hedge (GenerateDH, DH)
//   - The usage-prefixed SHAKE-256 KDF all key derivation goes through (KDF)
//   - Constant-time comparison (CtEq) and best-effort memory wiping (Wipe)
//
// # Notes
//
// Keys, points and scalars are fixed-size array types defined in
// internal/domain/types; DH values and raw KDF output are byte slices. Callers should treat returned secrets as
// sensitive and rely on Wipe when practical to reduce lifetime in memory.
package crypto
