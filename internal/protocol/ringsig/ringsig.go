// Package ringsig implements OTRv4's three-key ring signature: a
// signature of knowledge proving the signer holds the private key for one
// of three named public keys, without revealing which.
package ringsig

import (
	"encoding/binary"
	"errors"

	"otr4/internal/crypto"
	"otr4/internal/domain/types"
)

// ErrUnknownKey is returned by Authenticate when priv does not correspond
// to any of the three public keys.
var ErrUnknownKey = errors.New("ringsig: private key matches none of the three public keys")

// Authenticate produces sigma = (c1,r1,c2,r2,c3,r3) proving that priv (whose
// public key is one of a1,a2,a3) signed msg, per spec 4.B.
func Authenticate(priv types.ECDHPrivate, a1, a2, a3 types.ECDHPublic, msg []byte) (types.RingSignature, error) {
	pub := crypto.ScalarBaseMult(priv)

	var idx int
	switch {
	case crypto.CtEq(pub[:], a1[:]):
		idx = 0
	case crypto.CtEq(pub[:], a2[:]):
		idx = 1
	case crypto.CtEq(pub[:], a3[:]):
		idx = 2
	default:
		return types.RingSignature{}, ErrUnknownKey
	}

	a := [3]types.ECDHPublic{a1, a2, a3}

	var c, r [3]types.ECDHPrivate
	var T [3]types.ECDHPublic

	t, err := crypto.RandomScalar()
	if err != nil {
		return types.RingSignature{}, err
	}
	T[idx] = crypto.ScalarBaseMult(t)

	for j := 0; j < 3; j++ {
		if j == idx {
			continue
		}
		cj, err := crypto.RandomScalar()
		if err != nil {
			return types.RingSignature{}, err
		}
		rj, err := crypto.RandomScalar()
		if err != nil {
			return types.RingSignature{}, err
		}
		c[j] = cj
		r[j] = rj
		Tj, ok := crypto.PointScalarBaseMultAdd(rj, cj, a[j])
		if !ok {
			return types.RingSignature{}, errors.New("ringsig: invalid public key")
		}
		T[j] = Tj
	}

	challenge := computeChallenge(a1, a2, a3, T, msg)

	other1, other2 := (idx+1)%3, (idx+2)%3
	ci := crypto.ScalarSub(challenge, crypto.ScalarAdd(c[other1], c[other2]))
	c[idx] = ci
	r[idx] = crypto.ScalarSub(t, crypto.ScalarMul(ci, priv))

	return types.RingSignature{
		C1: c[0], R1: r[0],
		C2: c[1], R2: r[1],
		C3: c[2], R3: r[2],
	}, nil
}

// Verify checks sigma against the three public keys and msg.
func Verify(a1, a2, a3 types.ECDHPublic, msg []byte, sigma types.RingSignature) bool {
	a := [3]types.ECDHPublic{a1, a2, a3}
	c := [3]types.ECDHPrivate{sigma.C1, sigma.C2, sigma.C3}
	r := [3]types.ECDHPrivate{sigma.R1, sigma.R2, sigma.R3}

	var T [3]types.ECDHPublic
	for j := 0; j < 3; j++ {
		Tj, ok := crypto.PointScalarBaseMultAdd(r[j], c[j], a[j])
		if !ok {
			return false
		}
		T[j] = Tj
	}

	challenge := computeChallenge(a1, a2, a3, T, msg)
	sum := crypto.ScalarAdd(crypto.ScalarAdd(c[0], c[1]), c[2])
	return crypto.CtEq(sum[:], challenge[:])
}

func computeChallenge(a1, a2, a3 types.ECDHPublic, T [3]types.ECDHPublic, msg []byte) types.ECDHPrivate {
	g := crypto.GeneratorEncoded()
	q := crypto.GroupOrderEncoded()
	var msgLen [8]byte
	binary.BigEndian.PutUint64(msgLen[:], uint64(len(msg)))

	return crypto.KDFScalar(crypto.UsageRingSigChallenge,
		g[:], q[:],
		a1[:], a2[:], a3[:],
		T[0][:], T[1][:], T[2][:],
		msg, msgLen[:],
	)
}
