package types

// ECDHPublic is an Ed448-Goldilocks point in its 57-byte canonical encoding.
type ECDHPublic [57]byte

// Slice returns the key as a []byte.
func (p ECDHPublic) Slice() []byte { return p[:] }

// ECDHPrivate is an Ed448-Goldilocks scalar reduced mod the group order (by
// wide reduction of random or KDF output); it is not clamped the way an
// RFC 8032 Ed448 private key is.
type ECDHPrivate [57]byte

// Slice returns the key as a []byte.
func (k ECDHPrivate) Slice() []byte { return k[:] }

// ECDHKeyPair is an Ed448 scalar/point pair used for ratchet and DAKE
// ephemerals.
type ECDHKeyPair struct {
	Priv ECDHPrivate
	Pub  ECDHPublic
}

// DHPublic is an element of the RFC 3526 3072-bit MODP group, encoded as a
// minimal-length big-endian integer (no leading zero bytes).
type DHPublic []byte

// DHPrivate is an exponent in the RFC 3526 3072-bit MODP group, encoded the
// same way as DHPublic.
type DHPrivate []byte

// DHKeyPair is a classical Diffie-Hellman keypair over the 3072-bit MODP
// group, used as the double ratchet's "brace key" hedge.
type DHKeyPair struct {
	Priv DHPrivate
	Pub  DHPublic
}

// SigningKeyPair is a plain Ed448 scalar/point signing key pair, used for
// the long-term identity key and the forging key carried in a Client
// Profile. It shares its representation with ECDHKeyPair: the same point a
// Client Profile publishes as a "long-term key" is also usable directly as
// a ring-signature member (spec 4.B), with no re-encoding between the two
// signature schemes.
type SigningKeyPair struct {
	Priv ECDHPrivate
	Pub  ECDHPublic
}
