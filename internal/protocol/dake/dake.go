package dake

import (
	"fmt"
	"reflect"
	"time"

	"otr4/internal/crypto"
	"otr4/internal/domain"
	"otr4/internal/domain/types"
	"otr4/internal/protocol/profile"
	"otr4/internal/protocol/ratchet"
	"otr4/internal/protocol/ringsig"
)

// Transcript tags (spec 4.D: "builds transcript t = 0x00 || ..." for
// Auth-R, "reconstructs t with byte 0x01" for Auth-I). DAKE-3 reuses the
// construction with its own tag since it authenticates a different set of
// ephemerals (the responder's published Prekey Message in place of a
// freshly sent Identity message).
const (
	transcriptTagAuthR byte = 0x00
	transcriptTagAuthI byte = 0x01
	transcriptTagDAKE3 byte = 0x02
)

// EphemeralKeys is the fresh ECDH/DH pair a party generates for one DAKE
// flight (an Identity message or a published Prekey Message) and must hold
// onto until the flight that consumes it arrives.
type EphemeralKeys struct {
	ECDH types.ECDHKeyPair
	DH   types.DHKeyPair
}

func newEphemeralKeys() (EphemeralKeys, error) {
	ecdhPriv, ecdhPub, err := crypto.GenerateECDH()
	if err != nil {
		return EphemeralKeys{}, err
	}
	dhPriv, dhPub, err := crypto.GenerateDH()
	if err != nil {
		return EphemeralKeys{}, err
	}
	return EphemeralKeys{
		ECDH: types.ECDHKeyPair{Priv: ecdhPriv, Pub: ecdhPub},
		DH:   types.DHKeyPair{Priv: dhPriv, Pub: dhPub},
	}, nil
}

// AliceState is the context Alice carries between sending Auth-R and
// receiving Auth-I.
type AliceState struct {
	Own         EphemeralKeys
	PeerY       types.ECDHPublic
	PeerB       types.DHPublic
	PeerProfile types.ClientProfile
	OwnProfile  types.ClientProfile
	Phi         types.Phi
}

// NewIdentityMessage generates Bob's fresh ephemerals and builds the
// Identity message (spec 4.D, "Identity (Bob→Alice)").
func NewIdentityMessage(bobTag types.InstanceTag, bobProfile types.ClientProfile) (types.IdentityMessage, EphemeralKeys, error) {
	keys, err := newEphemeralKeys()
	if err != nil {
		return types.IdentityMessage{}, EphemeralKeys{}, err
	}
	msg := types.IdentityMessage{
		SenderInstanceTag: bobTag,
		ClientProfile:     bobProfile,
		Y:                 keys.ECDH.Pub,
		B:                 keys.DH.Pub,
	}
	return msg, keys, nil
}

// NewPrekeyMessage generates the fresh ephemerals Bob publishes ahead of
// time for the non-interactive flight (spec 4.D: the Prekey Ensemble's
// "fresh Prekey Message"). The returned EphemeralKeys must be held onto
// exactly like an Identity message's, to be consumed later by
// CompleteDAKE3 whenever a DAKE-3 message arrives against it.
func NewPrekeyMessage(bobTag types.InstanceTag) (types.PrekeyMessage, EphemeralKeys, error) {
	keys, err := newEphemeralKeys()
	if err != nil {
		return types.PrekeyMessage{}, EphemeralKeys{}, err
	}
	msg := types.PrekeyMessage{
		InstanceTag: bobTag,
		Y:           keys.ECDH.Pub,
		B:           keys.DH.Pub,
	}
	return msg, keys, nil
}

// IsRetransmit reports whether two Identity messages carry identical
// content, so a repeated Identity can be treated as a retransmit and
// replied to idempotently (spec 4.D edge cases) rather than restarting the
// handshake.
func IsRetransmit(a, b types.IdentityMessage) bool {
	return reflect.DeepEqual(a, b)
}

// ShouldDefer resolves simultaneous-start races: the lower instance tag
// defers (spec 4.D: "instance-tag ordering (lower tag defers)"). A party
// that sent its own Identity message but observes its tag is lower than
// the peer's should abandon its own flight and respond to the peer's
// instead.
func ShouldDefer(ownTag, peerTag types.InstanceTag) bool {
	return ownTag < peerTag
}

// NewAuthR validates Bob's Identity message and builds Alice's Auth-R
// reply (spec 4.D, "Auth-R (Alice→Bob)").
func NewAuthR(aliceID types.Identity, aliceProfile types.ClientProfile, identity types.IdentityMessage, phi types.Phi, now time.Time) (types.AuthRMessage, AliceState, error) {
	if err := profile.VerifyClientProfile(identity.ClientProfile, identity.SenderInstanceTag, now); err != nil {
		return types.AuthRMessage{}, AliceState{}, err
	}
	if !crypto.PointIsValid(identity.Y) {
		return types.AuthRMessage{}, AliceState{}, fmt.Errorf("%w: identity message Y not on curve", domain.ErrInvalidProfile)
	}

	own, err := newEphemeralKeys()
	if err != nil {
		return types.AuthRMessage{}, AliceState{}, err
	}

	t := transcript(transcriptTagAuthR, identity.ClientProfile, aliceProfile, identity.Y, own.ECDH.Pub, identity.B, own.DH.Pub, phi)
	sigma, err := ringsig.Authenticate(aliceID.LongTerm.Priv,
		identity.ClientProfile.PublicKey, aliceProfile.PublicKey, identity.ClientProfile.ForgingKey,
		t)
	if err != nil {
		return types.AuthRMessage{}, AliceState{}, fmt.Errorf("%w: auth-r ring signature: %v", domain.ErrAuthFailure, err)
	}

	msg := types.AuthRMessage{
		SenderInstanceTag:   aliceID.InstanceTag,
		ReceiverInstanceTag: identity.SenderInstanceTag,
		ClientProfile:       aliceProfile,
		X:                   own.ECDH.Pub,
		A:                   own.DH.Pub,
		Sigma:               sigma,
	}
	st := AliceState{
		Own:         own,
		PeerY:       identity.Y,
		PeerB:       identity.B,
		PeerProfile: identity.ClientProfile,
		OwnProfile:  aliceProfile,
		Phi:         phi,
	}
	return msg, st, nil
}

// NewAuthI validates Alice's Auth-R, and on success builds Bob's Auth-I
// reply and seeds his side of the ratchet (spec 4.D, "Auth-I (Bob→Alice)";
// "On success both sides call the key manager with (Y, B, X, A)").
func NewAuthI(bobID types.Identity, bobProfile types.ClientProfile, keys EphemeralKeys, authR types.AuthRMessage, phi types.Phi, now time.Time) (types.AuthIMessage, types.RatchetState, error) {
	if err := profile.VerifyClientProfile(authR.ClientProfile, authR.SenderInstanceTag, now); err != nil {
		return types.AuthIMessage{}, types.RatchetState{}, err
	}
	if !crypto.PointIsValid(authR.X) {
		return types.AuthIMessage{}, types.RatchetState{}, fmt.Errorf("%w: auth-r X not on curve", domain.ErrInvalidProfile)
	}

	t := transcript(transcriptTagAuthR, bobProfile, authR.ClientProfile, keys.ECDH.Pub, authR.X, keys.DH.Pub, authR.A, phi)
	if !ringsig.Verify(bobProfile.PublicKey, authR.ClientProfile.PublicKey, bobProfile.ForgingKey, t, authR.Sigma) {
		return types.AuthIMessage{}, types.RatchetState{}, fmt.Errorf("%w: auth-r ring signature", domain.ErrAuthFailure)
	}

	t2 := transcript(transcriptTagAuthI, bobProfile, authR.ClientProfile, keys.ECDH.Pub, authR.X, keys.DH.Pub, authR.A, phi)
	sigma2, err := ringsig.Authenticate(bobID.LongTerm.Priv,
		authR.ClientProfile.PublicKey, bobProfile.PublicKey, authR.ClientProfile.ForgingKey,
		t2)
	if err != nil {
		return types.AuthIMessage{}, types.RatchetState{}, fmt.Errorf("%w: auth-i ring signature: %v", domain.ErrAuthFailure, err)
	}

	sharedSecret := crypto.KDF64(crypto.UsageDAKESharedSecret, t2)
	rs, err := ratchet.InitAsResponder(sharedSecret, keys.ECDH, keys.DH, authR.X, authR.A)
	if err != nil {
		return types.AuthIMessage{}, types.RatchetState{}, err
	}

	msg := types.AuthIMessage{
		SenderInstanceTag:   bobID.InstanceTag,
		ReceiverInstanceTag: authR.SenderInstanceTag,
		Sigma:               sigma2,
	}
	return msg, rs, nil
}

// CompleteAuthI validates Bob's Auth-I against the state Alice saved when
// she sent Auth-R, and on success seeds her side of the ratchet.
func CompleteAuthI(st AliceState, authI types.AuthIMessage) (types.RatchetState, error) {
	t2 := transcript(transcriptTagAuthI, st.PeerProfile, st.OwnProfile, st.PeerY, st.Own.ECDH.Pub, st.PeerB, st.Own.DH.Pub, st.Phi)
	if !ringsig.Verify(st.OwnProfile.PublicKey, st.PeerProfile.PublicKey, st.OwnProfile.ForgingKey, t2, authI.Sigma) {
		return types.RatchetState{}, fmt.Errorf("%w: auth-i ring signature", domain.ErrAuthFailure)
	}

	sharedSecret := crypto.KDF64(crypto.UsageDAKESharedSecret, t2)
	return ratchet.InitAsInitiator(sharedSecret, st.Own.ECDH, st.Own.DH, st.PeerY, st.PeerB)
}

// NewDAKE3 builds Alice's non-interactive DAKE-3 flight against a
// server-fetched Prekey Ensemble, seeding her side of the ratchet and
// immediately encrypting plaintext as the flight's piggy-backed first Data
// Message (spec 4.D: "a single DAKE-3 message ... produces an initial Data
// Message in the same flight").
func NewDAKE3(aliceID types.Identity, aliceProfile types.ClientProfile, ensemble types.PrekeyEnsemble, phi types.Phi, now time.Time, plaintext []byte) (types.DAKE3Message, types.RatchetState, error) {
	if err := profile.VerifyClientProfile(ensemble.ClientProfile, ensemble.ClientProfile.InstanceTag, now); err != nil {
		return types.DAKE3Message{}, types.RatchetState{}, err
	}
	if err := profile.VerifyPrekeyProfile(ensemble.PrekeyProfile, ensemble.ClientProfile.PublicKey, ensemble.ClientProfile.InstanceTag, now); err != nil {
		return types.DAKE3Message{}, types.RatchetState{}, err
	}
	if !crypto.PointIsValid(ensemble.PrekeyMessage.Y) {
		return types.DAKE3Message{}, types.RatchetState{}, fmt.Errorf("%w: prekey message Y not on curve", domain.ErrInvalidProfile)
	}

	own, err := newEphemeralKeys()
	if err != nil {
		return types.DAKE3Message{}, types.RatchetState{}, err
	}

	tmpKey, err := deriveTmpKey(own.ECDH.Priv, ensemble)
	if err != nil {
		return types.DAKE3Message{}, types.RatchetState{}, err
	}

	t := transcript(transcriptTagDAKE3, ensemble.ClientProfile, aliceProfile, ensemble.PrekeyMessage.Y, own.ECDH.Pub, ensemble.PrekeyMessage.B, own.DH.Pub, phi)
	t = append(t, tmpKey[:]...)

	sigma, err := ringsig.Authenticate(aliceID.LongTerm.Priv,
		ensemble.ClientProfile.PublicKey, aliceProfile.PublicKey, ensemble.ClientProfile.ForgingKey,
		t)
	if err != nil {
		return types.DAKE3Message{}, types.RatchetState{}, fmt.Errorf("%w: dake-3 ring signature: %v", domain.ErrAuthFailure, err)
	}

	sharedSecret := crypto.KDF64(crypto.UsageDAKESharedSecret, t)
	rs, err := ratchet.InitAsInitiator(sharedSecret, own.ECDH, own.DH, ensemble.PrekeyMessage.Y, ensemble.PrekeyMessage.B)
	if err != nil {
		return types.DAKE3Message{}, types.RatchetState{}, err
	}

	header, ciphertext, mac, err := ratchet.Encrypt(&rs, aliceID.InstanceTag, ensemble.PrekeyMessage.InstanceTag, 0, nil, plaintext)
	if err != nil {
		return types.DAKE3Message{}, types.RatchetState{}, err
	}

	msg := types.DAKE3Message{
		SenderInstanceTag:   aliceID.InstanceTag,
		ReceiverInstanceTag: ensemble.PrekeyMessage.InstanceTag,
		ClientProfile:       aliceProfile,
		A:                   own.DH.Pub,
		Sigma:               sigma,
		Message: types.DataMessage{
			Header:           header,
			EncryptedPayload: ciphertext,
			MAC:              mac,
		},
	}
	return msg, rs, nil
}

// CompleteDAKE3 validates an incoming DAKE-3 flight against the Prekey
// Ensemble Bob previously published (he must still hold the matching
// private ephemerals), seeds his side of the ratchet, and decrypts the
// piggy-backed Data Message.
func CompleteDAKE3(bobID types.Identity, bobProfile types.ClientProfile, keys EphemeralKeys, prekeySeed [57]byte, msg types.DAKE3Message, phi types.Phi, now time.Time) ([]byte, types.RatchetState, error) {
	if msg.ReceiverInstanceTag != bobID.InstanceTag {
		return nil, types.RatchetState{}, fmt.Errorf("%w: dake-3 receiver instance tag", domain.ErrInstanceTagMismatch)
	}
	if err := profile.VerifyClientProfile(msg.ClientProfile, msg.SenderInstanceTag, now); err != nil {
		return nil, types.RatchetState{}, err
	}

	sharedPrekeyPriv := crypto.KDFScalar(crypto.UsageSharedPrekeyExpand, prekeySeed[:])
	tmpKey, err := deriveTmpKeyResponder(keys.ECDH.Priv, sharedPrekeyPriv, bobID.LongTerm.Priv, msg.Message.Header.ECDHPub)
	if err != nil {
		return nil, types.RatchetState{}, err
	}

	t := transcript(transcriptTagDAKE3, bobProfile, msg.ClientProfile, keys.ECDH.Pub, msg.Message.Header.ECDHPub, keys.DH.Pub, msg.A, phi)
	t = append(t, tmpKey[:]...)

	if !ringsig.Verify(bobProfile.PublicKey, msg.ClientProfile.PublicKey, bobProfile.ForgingKey, t, msg.Sigma) {
		return nil, types.RatchetState{}, fmt.Errorf("%w: dake-3 ring signature", domain.ErrAuthFailure)
	}

	sharedSecret := crypto.KDF64(crypto.UsageDAKESharedSecret, t)
	rs, err := ratchet.InitAsResponder(sharedSecret, keys.ECDH, keys.DH, msg.Message.Header.ECDHPub, msg.A)
	if err != nil {
		return nil, types.RatchetState{}, err
	}

	plaintext, err := ratchet.Decrypt(&rs, nil, msg.Message.Header, msg.Message.EncryptedPayload, msg.Message.MAC)
	if err != nil {
		return nil, types.RatchetState{}, err
	}
	return plaintext, rs, nil
}

// deriveTmpKey mixes Alice's fresh ephemeral against the three pieces of
// Bob's published identity (his fresh prekey-message point, his
// shared-prekey point, and his long-term point), the same shape as a
// triple-ECDH key agreement, then KDFs the concatenation down to tmp_key
// (spec 3: "tmp_key (64 B — non-interactive intermediate)").
func deriveTmpKey(alicePriv types.ECDHPrivate, ensemble types.PrekeyEnsemble) ([64]byte, error) {
	dh1, err := crypto.ECDH(alicePriv, ensemble.PrekeyMessage.Y)
	if err != nil {
		return [64]byte{}, err
	}
	dh2, err := crypto.ECDH(alicePriv, ensemble.PrekeyProfile.SharedPrekeyPub)
	if err != nil {
		return [64]byte{}, err
	}
	dh3, err := crypto.ECDH(alicePriv, ensemble.ClientProfile.PublicKey)
	if err != nil {
		return [64]byte{}, err
	}
	return crypto.KDF64(crypto.UsageTmpKey, dh1[:], dh2[:], dh3[:]), nil
}

// deriveTmpKeyResponder recomputes tmp_key from Bob's side: each of the
// three ECDH terms is individually commutative (ECDH(a, B) == ECDH(b, A)),
// so Bob reconstructs the same triple using his own private scalars
// (the prekey-message ephemeral, the shared-prekey scalar, and his
// long-term scalar) against Alice's fresh public point X.
func deriveTmpKeyResponder(prekeyMessagePriv, sharedPrekeyPriv, longTermPriv types.ECDHPrivate, aliceX types.ECDHPublic) ([64]byte, error) {
	dh1, err := crypto.ECDH(prekeyMessagePriv, aliceX)
	if err != nil {
		return [64]byte{}, err
	}
	dh2, err := crypto.ECDH(sharedPrekeyPriv, aliceX)
	if err != nil {
		return [64]byte{}, err
	}
	dh3, err := crypto.ECDH(longTermPriv, aliceX)
	if err != nil {
		return [64]byte{}, err
	}
	return crypto.KDF64(crypto.UsageTmpKey, dh1[:], dh2[:], dh3[:]), nil
}

// transcript builds t = tag || HASH_with_usage(profileB) ||
// HASH_with_usage(profileA) || Y || X || B || A || phi (spec 4.D), the
// byte string both the ring signature and the DAKE shared secret are
// derived from.
func transcript(tag byte, profileB, profileA types.ClientProfile, y, x types.ECDHPublic, b, a types.DHPublic, phi types.Phi) []byte {
	hb := hashProfile(profileB)
	ha := hashProfile(profileA)

	out := make([]byte, 0, 1+64+64+57+57+len(b)+len(a)+32)
	out = append(out, tag)
	out = append(out, hb[:]...)
	out = append(out, ha[:]...)
	out = append(out, y[:]...)
	out = append(out, x[:]...)
	out = append(out, b...)
	out = append(out, a...)
	out = append(out, phi.Encode()...)
	return out
}

// hashProfile hashes a Client Profile's full signed form (body and
// signature), the transcript's "HASH_with_usage(profile)" term.
func hashProfile(p types.ClientProfile) [64]byte {
	return crypto.KDF64(crypto.UsageTranscriptHash, p.CanonicalBody(), p.Signature[:])
}
