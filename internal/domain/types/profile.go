package types

import (
	"encoding/binary"
)

// ClientProfile is the long-lived identity descriptor: long-term key,
// forging key, allowed versions, and an expiration, all covered by a single
// Ed448 signature.
type ClientProfile struct {
	InstanceTag InstanceTag
	PublicKey   ECDHPublic
	ForgingKey  ECDHPublic
	Versions    string // ASCII, e.g. "4" or "34"
	Expires     int64  // seconds since epoch

	// TransitionalSignature is the optional v3 bridge signature. Its
	// absence is represented as a nil/empty slice, which serializes as
	// length 0 rather than a separate presence flag.
	TransitionalSignature []byte

	Signature [114]byte // Ed448 signature over CanonicalBody()
}

// CanonicalBody returns the fixed-order byte sequence the signature covers:
// instance_tag | public_key | forging_key | versions | expires | [transitional_sig?]
func (p ClientProfile) CanonicalBody() []byte {
	out := make([]byte, 0, 4+57+57+len(p.Versions)+8+4+len(p.TransitionalSignature))
	out = binary.BigEndian.AppendUint32(out, uint32(p.InstanceTag))
	out = append(out, p.PublicKey[:]...)
	out = append(out, p.ForgingKey[:]...)
	out = binary.BigEndian.AppendUint32(out, uint32(len(p.Versions)))
	out = append(out, p.Versions...)
	out = binary.BigEndian.AppendUint64(out, uint64(p.Expires))
	out = binary.BigEndian.AppendUint32(out, uint32(len(p.TransitionalSignature)))
	out = append(out, p.TransitionalSignature...)
	return out
}

// IsSignaturePresent reports whether Signature is non-zero: an all-zero
// signature field marks the profile as invalid regardless of what Verify
// would otherwise conclude.
func (p ClientProfile) IsSignaturePresent() bool {
	var zero [114]byte
	return p.Signature != zero
}

// PrekeyProfile is the ephemeral shared-prekey descriptor signed by the
// owner's long-term key.
type PrekeyProfile struct {
	InstanceTag     InstanceTag
	Expires         int64
	SharedPrekeyPub ECDHPublic
	Signature       [114]byte

	// ShouldPublish and Seed are present only in the "with metadata" local
	// persistence form, never in the wire/signed form.
	ShouldPublish bool
	Seed          [57]byte
}

// CanonicalBody returns the fixed-order byte sequence the signature covers:
// instance_tag | expires | shared_prekey_pub
func (p PrekeyProfile) CanonicalBody() []byte {
	out := make([]byte, 0, 4+8+57)
	out = binary.BigEndian.AppendUint32(out, uint32(p.InstanceTag))
	out = binary.BigEndian.AppendUint64(out, uint64(p.Expires))
	out = append(out, p.SharedPrekeyPub[:]...)
	return out
}

func (p PrekeyProfile) IsSignaturePresent() bool {
	var zero [114]byte
	return p.Signature != zero
}

// PrekeyMessage is the non-interactive DAKE's published-ephemeral record:
// a fresh ECDH point and DH integer bound to the owner's instance tag.
type PrekeyMessage struct {
	InstanceTag InstanceTag
	Y           ECDHPublic
	B           DHPublic
}

// PrekeyEnsemble bundles everything DAKE-3 needs from the prekey server:
// the peer's Client Profile, Prekey Profile, and a fresh Prekey Message.
type PrekeyEnsemble struct {
	ClientProfile ClientProfile
	PrekeyProfile PrekeyProfile
	PrekeyMessage PrekeyMessage
}
