package crypto

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"

	"github.com/cloudflare/circl/ecc/goldilocks"

	"otr4/internal/domain/types"
)

// This file is the single place that touches the raw Ed448-Goldilocks
// scalar/point algebra (circl's goldilocks package); everything else in the
// core only ever sees the 57-byte wire forms in internal/domain/types.
//
// circl's internal Scalar representation is 56 bytes; the wire/canonical
// form used throughout this module is 57 bytes (the group order needs
// fewer than 448 bits, so the high byte of the wire form is always zero).

var errInvalidPoint = errors.New("crypto/ed448: invalid point")

// GenerateECDH returns a fresh Ed448 scalar/point keypair for ratchet and
// DAKE ephemerals.
func GenerateECDH() (types.ECDHPrivate, types.ECDHPublic, error) {
	s, err := randomScalar()
	if err != nil {
		return types.ECDHPrivate{}, types.ECDHPublic{}, err
	}
	return scalarToWire(s), scalarBaseMult(s), nil
}

// RandomScalar returns a uniform scalar mod the group order via wide
// reduction, wire-encoded.
func RandomScalar() (types.ECDHPrivate, error) {
	s, err := randomScalar()
	if err != nil {
		return types.ECDHPrivate{}, err
	}
	return scalarToWire(s), nil
}

// ScalarBaseMult returns priv*G, wire-encoded.
func ScalarBaseMult(priv types.ECDHPrivate) types.ECDHPublic {
	return scalarBaseMult(wireToScalar(priv))
}

// ECDH performs priv*pub, returning the resulting point's 57-byte encoding
// as the shared secret (the caller KDFs this further; it is not used raw).
func ECDH(priv types.ECDHPrivate, pub types.ECDHPublic) (out [57]byte, err error) {
	P, ok := decodePoint(pub)
	if !ok {
		return out, errInvalidPoint
	}
	var Q goldilocks.Point
	Q.ScalarMult(wireToScalar(priv), P)
	enc, err := Q.MarshalBinary()
	if err != nil {
		return out, err
	}
	copy(out[:], enc)
	return out, nil
}

// PointIsValid reports whether pub decodes to a point that is on-curve and
// not the identity (spec's point_is_valid: on-curve + not low-order + not
// identity; circl rejects non-canonical/off-curve encodings at Unmarshal).
func PointIsValid(pub types.ECDHPublic) bool {
	P, ok := decodePoint(pub)
	if !ok {
		return false
	}
	return !P.IsIdentity()
}

// ScalarAdd returns a+b mod q, wire-encoded.
func ScalarAdd(a, b types.ECDHPrivate) types.ECDHPrivate {
	var z goldilocks.Scalar
	z.Add(wireToScalar(a), wireToScalar(b))
	return scalarToWire(&z)
}

// ScalarSub returns a-b mod q, wire-encoded.
func ScalarSub(a, b types.ECDHPrivate) types.ECDHPrivate {
	var z goldilocks.Scalar
	z.Sub(wireToScalar(a), wireToScalar(b))
	return scalarToWire(&z)
}

// ScalarMul returns a*b mod q, wire-encoded.
func ScalarMul(a, b types.ECDHPrivate) types.ECDHPrivate {
	var z goldilocks.Scalar
	z.Mul(wireToScalar(a), wireToScalar(b))
	return scalarToWire(&z)
}

// ScalarNeg returns -a mod q, wire-encoded.
func ScalarNeg(a types.ECDHPrivate) types.ECDHPrivate {
	var z goldilocks.Scalar
	z.Neg(wireToScalar(a))
	return scalarToWire(&z)
}

// PointAdd returns P+Q, wire-encoded. Returns ok=false on an invalid input.
func PointAdd(p, q types.ECDHPublic) (types.ECDHPublic, bool) {
	P, ok := decodePoint(p)
	if !ok {
		return types.ECDHPublic{}, false
	}
	Q, ok := decodePoint(q)
	if !ok {
		return types.ECDHPublic{}, false
	}
	var R goldilocks.Point
	R.Add(P, Q)
	return encodePoint(&R), true
}

// PointScalarBaseMultAdd returns s*G + c*A, the "commitment" computation
// the ring signature performs for every slot.
func PointScalarBaseMultAdd(s types.ECDHPrivate, c types.ECDHPrivate, a types.ECDHPublic) (types.ECDHPublic, bool) {
	A, ok := decodePoint(a)
	if !ok {
		return types.ECDHPublic{}, false
	}
	var sG goldilocks.Point
	sG.ScalarBaseMult(wireToScalar(s))
	var cA goldilocks.Point
	cA.ScalarMult(wireToScalar(c), A)
	var T goldilocks.Point
	T.Add(&sG, &cA)
	return encodePoint(&T), true
}

func randomScalar() (*goldilocks.Scalar, error) {
	var wide [114]byte // wide reduction buffer, per Ed448's private-key expansion
	if _, err := io.ReadFull(rand.Reader, wide[:]); err != nil {
		return nil, err
	}
	var s goldilocks.Scalar
	s.SetUniformBytes(wide[:])
	return &s, nil
}

// scalarFromWideBytes reduces a 114-byte KDF output to a scalar mod q via
// the same wide-reduction method used for key generation, wire-encoded.
func scalarFromWideBytes(wide []byte) types.ECDHPrivate {
	var s goldilocks.Scalar
	s.SetUniformBytes(wide)
	return scalarToWire(&s)
}

func scalarBaseMult(s *goldilocks.Scalar) types.ECDHPublic {
	var P goldilocks.Point
	P.ScalarBaseMult(s)
	return encodePoint(&P)
}

func scalarToWire(s *goldilocks.Scalar) types.ECDHPrivate {
	var out types.ECDHPrivate
	copy(out[:], s[:])
	return out
}

func wireToScalar(w types.ECDHPrivate) *goldilocks.Scalar {
	var s goldilocks.Scalar
	copy(s[:], w[:len(s)])
	return &s
}

func encodePoint(p *goldilocks.Point) types.ECDHPublic {
	var out types.ECDHPublic
	enc, err := p.MarshalBinary()
	if err == nil {
		copy(out[:], enc)
	}
	return out
}

func decodePoint(w types.ECDHPublic) (*goldilocks.Point, bool) {
	var p goldilocks.Point
	if err := p.UnmarshalBinary(w[:]); err != nil {
		return nil, false
	}
	return &p, true
}

// groupOrder is the Ed448-Goldilocks scalar group order L = 2^446 - c, per
// RFC 8032 section 5.2. Computed arithmetically rather than transcribed as
// a hex literal to avoid a silent copy error in such a large constant.
var groupOrder = func() *big.Int {
	c, ok := new(big.Int).SetString("13818066809895115352007386748515426880336692474882178609894547503885", 10)
	if !ok {
		panic("crypto: failed to parse Ed448 group order constant")
	}
	l := new(big.Int).Lsh(big.NewInt(1), 446)
	return l.Sub(l, c)
}()

// GeneratorEncoded returns the 57-byte canonical encoding of the Ed448 base
// point G, used as a domain-separating input to the ring signature's
// challenge KDF.
func GeneratorEncoded() [57]byte {
	var one goldilocks.Scalar
	one[0] = 1
	var out [57]byte
	enc := scalarBaseMult(&one)
	copy(out[:], enc[:])
	return out
}

// GroupOrderEncoded returns the 57-byte big-endian encoding of the group
// order |q|, used the same way as GeneratorEncoded.
func GroupOrderEncoded() [57]byte {
	var out [57]byte
	b := groupOrder.Bytes()
	copy(out[57-len(b):], b)
	return out
}
