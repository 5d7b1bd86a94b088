// Package profile builds, signs, serializes, and validates the Client
// Profile and Prekey Profile long-lived identity descriptors.
package profile

import (
	"fmt"
	"time"

	"otr4/internal/crypto"
	"otr4/internal/domain"
	"otr4/internal/domain/types"
)

// DefaultLifetime is the typical validity window for a freshly built
// profile (spec 3: "expiration typically 30 days").
const DefaultLifetime = 30 * 24 * time.Hour

// BuildClientProfile constructs and signs a Client Profile for id, valid
// until now+lifetime.
func BuildClientProfile(id types.Identity, allowed types.VersionMask, now time.Time, lifetime time.Duration) (types.ClientProfile, error) {
	if !id.InstanceTag.Valid() {
		return types.ClientProfile{}, fmt.Errorf("profile: invalid instance tag %#x", id.InstanceTag)
	}
	p := types.ClientProfile{
		InstanceTag: id.InstanceTag,
		Versions:    versionString(allowed),
		Expires:     now.Add(lifetime).Unix(),
	}
	copy(p.PublicKey[:], id.LongTerm.Pub[:])
	copy(p.ForgingKey[:], id.Forging.Pub[:])
	p.Signature = crypto.Sign(id.LongTerm, p.CanonicalBody())
	return p, nil
}

// VerifyClientProfile checks a received Client Profile per spec 4.C:
// signature valid, instance tag matches the sender, not expired, both keys
// on-curve, versions non-empty.
func VerifyClientProfile(p types.ClientProfile, senderInstanceTag types.InstanceTag, now time.Time) error {
	if !p.IsSignaturePresent() {
		return fmt.Errorf("%w: client profile signature is all-zero", domain.ErrInvalidProfile)
	}
	if p.InstanceTag != senderInstanceTag {
		return fmt.Errorf("%w: client profile instance tag", domain.ErrInstanceTagMismatch)
	}
	if p.Expires <= now.Unix() {
		return fmt.Errorf("%w: client profile expired", domain.ErrInvalidProfile)
	}
	if p.Versions == "" {
		return fmt.Errorf("%w: client profile has no allowed versions", domain.ErrInvalidProfile)
	}
	if !crypto.PointIsValid(p.PublicKey) || !crypto.PointIsValid(p.ForgingKey) {
		return fmt.Errorf("%w: client profile key not on curve", domain.ErrInvalidProfile)
	}
	var pub [57]byte
	copy(pub[:], p.PublicKey[:])
	if !crypto.Verify(pub, p.CanonicalBody(), p.Signature) {
		return fmt.Errorf("%w: client profile signature", domain.ErrAuthFailure)
	}
	return nil
}

// BuildPrekeyProfile constructs and signs a Prekey Profile derived from
// id's shared-prekey seed.
func BuildPrekeyProfile(id types.Identity, now time.Time, lifetime time.Duration) (types.PrekeyProfile, error) {
	if !id.InstanceTag.Valid() {
		return types.PrekeyProfile{}, fmt.Errorf("profile: invalid instance tag %#x", id.InstanceTag)
	}
	_, pub, err := sharedPrekeyFromSeed(id.PrekeySeed)
	if err != nil {
		return types.PrekeyProfile{}, err
	}
	p := types.PrekeyProfile{
		InstanceTag:     id.InstanceTag,
		Expires:         now.Add(lifetime).Unix(),
		SharedPrekeyPub: pub,
	}
	p.Signature = crypto.Sign(id.LongTerm, p.CanonicalBody())
	return p, nil
}

// VerifyPrekeyProfile checks a received Prekey Profile against the owner's
// long-term public key.
func VerifyPrekeyProfile(p types.PrekeyProfile, ownerLongTermPub [57]byte, senderInstanceTag types.InstanceTag, now time.Time) error {
	if !p.IsSignaturePresent() {
		return fmt.Errorf("%w: prekey profile signature is all-zero", domain.ErrInvalidProfile)
	}
	if p.InstanceTag != senderInstanceTag {
		return fmt.Errorf("%w: prekey profile instance tag", domain.ErrInstanceTagMismatch)
	}
	if p.Expires <= now.Unix() {
		return fmt.Errorf("%w: prekey profile expired", domain.ErrInvalidProfile)
	}
	if !crypto.PointIsValid(p.SharedPrekeyPub) {
		return fmt.Errorf("%w: prekey profile key not on curve", domain.ErrInvalidProfile)
	}
	if !crypto.Verify(ownerLongTermPub, p.CanonicalBody(), p.Signature) {
		return fmt.Errorf("%w: prekey profile signature", domain.ErrAuthFailure)
	}
	return nil
}

// sharedPrekeyFromSeed derives an Ed448 scalar/point pair from a 57-byte
// seed. The scalar is KDFScalar(UsageSharedPrekeyExpand, seed), a
// usage-prefixed SHAKE-256 output reduced mod the group order; this is not
// the RFC 8032 Ed448 private-key expansion, and no clamping is applied.
func sharedPrekeyFromSeed(seed [57]byte) (types.ECDHPrivate, types.ECDHPublic, error) {
	clamped := crypto.KDFScalar(crypto.UsageSharedPrekeyExpand, seed[:])
	return clamped, crypto.ScalarBaseMult(clamped), nil
}

// versionString renders a VersionMask as the ASCII digit string a Client
// Profile carries, in ascending order (e.g. "4", "34").
func versionString(mask types.VersionMask) string {
	var out []byte
	for v := types.Version(1); v <= 9; v++ {
		if mask.Allows(v) {
			out = append(out, byte('0'+v))
		}
	}
	return string(out)
}
