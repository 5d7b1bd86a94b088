// Package ratchet implements OTRv4's double ratchet: a Signal-style ECDH
// ratchet over Ed448 with a classical 3072-bit DH "brace key" mixed in
// every third ratchet, plus the skipped-key store and old-MAC-key reveal
// queue the protocol layers on top.
//
// Concurrency: RatchetState is NOT safe for concurrent use. Callers must
// serialise access per conversation.
package ratchet

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"io"

	"golang.org/x/crypto/salsa20"

	"otr4/internal/crypto"
	"otr4/internal/domain"
	"otr4/internal/domain/types"
)

// MaxSkip bounds the skipped-key store per ratchet (spec 3, default 1000).
const MaxSkip = 1000

// ErrSkippedMessageKeyNotFound is returned when a requested skipped key is
// absent (already consumed, evicted, or never stored).
var ErrSkippedMessageKeyNotFound = errors.New("ratchet: skipped message key not found")

// Init seeds the very first ratchet (i=0) from the DAKE's derived shared
// secret and the four ephemeral keys exchanged during the handshake. Both
// participants call Init with the same sharedSecret and the same four
// keys (each from their own perspective); the resulting SendingChain for
// the initiator equals the ReceivingChain the responder derives, and vice
// versa, which is what gives the two sides matching per-message keys.
func Init(sharedSecret [64]byte, ownECDH types.ECDHKeyPair, ownDH types.DHKeyPair, peerECDH types.ECDHPublic, peerDH types.DHPublic, isInitiator bool) (types.RatchetState, error) {
	ecdhOut, err := crypto.ECDH(ownECDH.Priv, peerECDH)
	if err != nil {
		return types.RatchetState{}, err
	}
	braceRaw, err := crypto.DH(ownDH.Priv, peerDH)
	if err != nil {
		return types.RatchetState{}, err
	}
	braceKey := crypto.KDF32(crypto.UsageBraceKey, braceRaw)

	ss := crypto.KDF64(crypto.UsageSharedSecret, sharedSecret[:], ecdhOut[:], braceKey[:])
	root := crypto.KDF64(crypto.UsageRootKey, ss[:])
	chain1 := crypto.KDF64(crypto.UsageChainKey, ss[:], []byte{0x01})
	chain2 := crypto.KDF64(crypto.UsageChainKey, ss[:], []byte{0x02})
	ssid := crypto.KDF(crypto.UsageSSID, crypto.DomainOTR4, 8, ss[:])

	st := types.RatchetState{
		OwnECDH: ownECDH,
		// Own copy of the DH private: the DAKE wipes its ephemerals once
		// the ratchet is seeded.
		OwnDH:          types.DHKeyPair{Priv: append(types.DHPrivate(nil), ownDH.Priv...), Pub: ownDH.Pub},
		PeerECDH:       peerECDH,
		PeerDH:         peerDH,
		RootKey:        root,
		SharedSecret:   ss,
		BraceKey:       braceKey,
		SendChainValid: true,
		RecvChainValid: true,
		SkippedKeys:    make(map[types.SkippedKeyID]types.SkippedKey),
	}
	copy(st.SSID[:], ssid)
	st.ExtraSymmetricKey = crypto.KDF32(crypto.UsageExtraSymmetricKey, ss[:])

	if isInitiator {
		st.SendingChain, st.ReceivingChain = chain1, chain2
	} else {
		st.SendingChain, st.ReceivingChain = chain2, chain1
	}
	return st, nil
}

// InitAsInitiator seeds the ratchet for the party that sent Auth-R
// (conventionally "Alice"), who also contributed the own keys below.
func InitAsInitiator(sharedSecret [64]byte, ownECDH types.ECDHKeyPair, ownDH types.DHKeyPair, peerECDH types.ECDHPublic, peerDH types.DHPublic) (types.RatchetState, error) {
	return Init(sharedSecret, ownECDH, ownDH, peerECDH, peerDH, true)
}

// InitAsResponder seeds the ratchet for the party that sent Identity
// (conventionally "Bob").
func InitAsResponder(sharedSecret [64]byte, ownECDH types.ECDHKeyPair, ownDH types.DHKeyPair, peerECDH types.ECDHPublic, peerDH types.DHPublic) (types.RatchetState, error) {
	return Init(sharedSecret, ownECDH, ownDH, peerECDH, peerDH, false)
}

// Encrypt derives the next message key from the sending chain (performing
// a deferred send-side ratchet step first if the last DH-ratchet flip
// invalidated it), encrypts plaintext, and returns the header, ciphertext
// and MAC to send. senderTag/receiverTag/flags are stamped onto the header
// before the MAC is computed, since the wire format MACs over them (spec 4.F).
func Encrypt(st *types.RatchetState, senderTag, receiverTag types.InstanceTag, flags byte, ad, plaintext []byte) (types.DataMessageHeader, []byte, [64]byte, error) {
	if st == nil {
		return types.DataMessageHeader{}, nil, [64]byte{}, errors.New("ratchet: state uninitialised")
	}

	var headerDH types.DHPublic
	if !st.SendChainValid {
		brace := st.I%3 == 0
		fresh, err := sendSideRatchetStep(st, brace)
		if err != nil {
			return types.DataMessageHeader{}, nil, [64]byte{}, err
		}
		if brace {
			headerDH = fresh.Pub
		}
	}

	encKey, macKey, extraKey := deriveMessageKeys(st.SendingChain)
	st.ExtraSymmetricKey = extraKey

	header := types.DataMessageHeader{
		Version:             types.Version4,
		SenderInstanceTag:   senderTag,
		ReceiverInstanceTag: receiverTag,
		Flags:               flags,
		PN:                  st.PN,
		I:                   st.I,
		J:                   st.J,
		ECDHPub:             st.OwnECDH.Pub,
		DHPub:               headerDH,
	}
	nonce, err := randomNonce()
	if err != nil {
		return types.DataMessageHeader{}, nil, [64]byte{}, err
	}
	header.Nonce = nonce

	ciphertext := xorStream(encKey, header.Nonce, plaintext)
	mac := authenticate(macKey, ad, header, ciphertext)

	st.SendingChain = crypto.KDF64(crypto.UsageNextChainKey, st.SendingChain[:])
	st.J++
	return header, ciphertext, mac, nil
}

// Decrypt authenticates and decrypts ciphertext, performing a DH-ratchet
// step if header.ECDHPub is new, and consulting/storing skipped keys for
// messages out of order within the current ratchet.
func Decrypt(st *types.RatchetState, ad []byte, header types.DataMessageHeader, ciphertext []byte, mac [64]byte) ([]byte, error) {
	if st == nil {
		return nil, errors.New("ratchet: state uninitialised")
	}

	if !crypto.CtEq(st.PeerECDH[:], header.ECDHPub[:]) {
		if err := recvSideRatchetStep(st, header); err != nil {
			return nil, err
		}
	}

	if header.J < st.K {
		id := types.SkippedKeyID{I: st.I, J: header.J}
		sk, ok := st.SkippedKeys[id]
		if !ok {
			return nil, ErrSkippedMessageKeyNotFound
		}
		macKey := crypto.KDF64(crypto.UsageMACKey, sk.EncKey[:])
		if !crypto.CtEq(authenticate(macKey, ad, header, ciphertext)[:], mac[:]) {
			return nil, domain.ErrAuthFailure
		}
		delete(st.SkippedKeys, id)
		st.SendChainValid = false
		return xorStream(sk.EncKey, header.Nonce, ciphertext), nil
	}

	if err := skipUntil(st, header.J); err != nil {
		return nil, err
	}

	encKey, macKey, extraKey := deriveMessageKeys(st.ReceivingChain)
	if !crypto.CtEq(authenticate(macKey, ad, header, ciphertext)[:], mac[:]) {
		return nil, domain.ErrAuthFailure
	}
	plaintext := xorStream(encKey, header.Nonce, ciphertext)

	st.ExtraSymmetricKey = extraKey
	st.OldMACKeys = append(st.OldMACKeys, macKey)
	st.ReceivingChain = crypto.KDF64(crypto.UsageNextChainKey, st.ReceivingChain[:])
	st.K++

	// Every receive schedules a send-side key rotation: the next message
	// this party sends uses a freshly generated own ECDH key, so a full
	// send/receive round trip always advances the ratchet, not only the
	// round trips where the peer's point happens to change first.
	st.SendChainValid = false
	return plaintext, nil
}

// recvSideRatchetStep performs the DH-ratchet flip triggered by observing
// a new peer ECDH point (spec 4.E.2): derive a fresh receiving chain now,
// mark the sending chain invalid for deferred (lazy) re-derivation on the
// next Encrypt call.
func recvSideRatchetStep(st *types.RatchetState, header types.DataMessageHeader) error {
	// Whether this flip mixes a fresh brace key is read off the wire
	// (dh_pub present or not), not recomputed from a local counter: the
	// two sides' ratchet indices advance independently (one on send-side
	// rotation, one on receive), so only the sender's own choice of
	// when to attach dh_pub is authoritative.
	brace := len(header.DHPub) > 0

	ecdhOut, err := crypto.ECDH(st.OwnECDH.Priv, header.ECDHPub)
	if err != nil {
		return domain.ErrAuthFailure
	}

	var braceKey [32]byte
	if brace {
		raw, err := crypto.DH(st.OwnDH.Priv, header.DHPub)
		if err != nil {
			return domain.ErrAuthFailure
		}
		braceKey = crypto.KDF32(crypto.UsageBraceKey, raw)
	} else {
		braceKey = crypto.KDF32(crypto.UsageBraceKey, st.BraceKey[:])
	}

	ss := crypto.KDF64(crypto.UsageSharedSecret, st.RootKey[:], ecdhOut[:], braceKey[:])
	newRoot := crypto.KDF64(crypto.UsageRootKey, ss[:])
	newRecvChain := crypto.KDF64(crypto.UsageChainKey, ss[:], []byte{0x02})
	ssid := crypto.KDF(crypto.UsageSSID, crypto.DomainOTR4, 8, ss[:])

	st.RootKey = newRoot
	st.SharedSecret = ss
	st.BraceKey = braceKey
	st.ReceivingChain = newRecvChain
	st.RecvChainValid = true
	st.SendChainValid = false
	copy(st.SSID[:], ssid)

	st.PeerECDH = header.ECDHPub
	if len(header.DHPub) > 0 {
		st.PeerDH = header.DHPub
	}
	st.K = 0
	st.I++
	st.SkippedKeys = make(map[types.SkippedKeyID]types.SkippedKey)
	return nil
}

// sendSideRatchetStep performs the deferred send-side half of a DH-ratchet
// flip: generate a fresh own ECDH (and DH, on brace ratchets), derive the
// new sending chain against the peer's current point.
func sendSideRatchetStep(st *types.RatchetState, brace bool) (types.DHKeyPair, error) {
	freshECDH, err := newECDHKeyPair()
	if err != nil {
		return types.DHKeyPair{}, err
	}
	var freshDH types.DHKeyPair
	if brace {
		freshDH, err = newDHKeyPair()
		if err != nil {
			return types.DHKeyPair{}, err
		}
	}

	ecdhOut, err := crypto.ECDH(freshECDH.Priv, st.PeerECDH)
	if err != nil {
		return types.DHKeyPair{}, err
	}
	var braceKey [32]byte
	if brace {
		raw, err := crypto.DH(freshDH.Priv, st.PeerDH)
		if err != nil {
			return types.DHKeyPair{}, err
		}
		braceKey = crypto.KDF32(crypto.UsageBraceKey, raw)
	} else {
		braceKey = crypto.KDF32(crypto.UsageBraceKey, st.BraceKey[:])
	}

	ss := crypto.KDF64(crypto.UsageSharedSecret, st.RootKey[:], ecdhOut[:], braceKey[:])
	newRoot := crypto.KDF64(crypto.UsageRootKey, ss[:])
	newSendChain := crypto.KDF64(crypto.UsageChainKey, ss[:], []byte{0x02})

	st.PN = st.J
	st.J = 0
	st.RootKey = newRoot
	st.SharedSecret = ss
	st.BraceKey = braceKey
	st.SendingChain = newSendChain
	st.SendChainValid = true
	st.OwnECDH = freshECDH
	if brace {
		st.OwnDH = freshDH
	}
	return freshDH, nil
}

func newECDHKeyPair() (types.ECDHKeyPair, error) {
	priv, pub, err := crypto.GenerateECDH()
	if err != nil {
		return types.ECDHKeyPair{}, err
	}
	return types.ECDHKeyPair{Priv: priv, Pub: pub}, nil
}

func newDHKeyPair() (types.DHKeyPair, error) {
	priv, pub, err := crypto.GenerateDH()
	if err != nil {
		return types.DHKeyPair{}, err
	}
	return types.DHKeyPair{Priv: priv, Pub: pub}, nil
}

// deriveMessageKeys derives (enc_key, mac_key, extra_key) from chain
// without advancing it (spec 4.E.1). mac_key is derived from enc_key,
// not independently from chain, so a skipped slot's stored enc_key alone
// is enough to recompute the same mac_key later (matching
// original_source's skipped_keys_s, which carries no separate mac key —
// see key_management.h).
func deriveMessageKeys(chain [64]byte) (encKey [32]byte, macKey [64]byte, extraKey [32]byte) {
	encKey = crypto.KDF32(crypto.UsageMessageKey, chain[:])
	macKey = crypto.KDF64(crypto.UsageMACKey, encKey[:])
	extraKey = crypto.KDF32(crypto.UsageExtraSymmetricKey, chain[:])
	return
}

// skipUntil derives and stores skipped message keys for every j' in
// [st.K, target), capped by MaxSkip.
func skipUntil(st *types.RatchetState, target uint32) error {
	if target < st.K {
		return nil
	}
	if target-st.K > MaxSkip {
		return domain.ErrOutOfOrderTooFar
	}
	for st.K < target {
		encKey, _, extraKey := deriveMessageKeys(st.ReceivingChain)
		if len(st.SkippedKeys) >= MaxSkip {
			for k := range st.SkippedKeys {
				delete(st.SkippedKeys, k)
				break
			}
		}
		st.SkippedKeys[types.SkippedKeyID{I: st.I, J: st.K}] = types.SkippedKey{EncKey: encKey, ExtraKey: extraKey}
		st.ReceivingChain = crypto.KDF64(crypto.UsageNextChainKey, st.ReceivingChain[:])
		st.K++
	}
	return nil
}

// randomNonce returns a fresh 24-byte XSalsa20 nonce (spec 4.F: payload
// encryption is "XSalsa20-like... keyed by enc_key with the nonce").
func randomNonce() (out [24]byte, err error) {
	_, err = io.ReadFull(rand.Reader, out[:])
	return out, err
}

// xorStream XORs src with an XSalsa20 keystream under key and nonce (a
// 24-byte nonce selects the XSalsa20 variant).
func xorStream(key [32]byte, nonce [24]byte, src []byte) []byte {
	dst := make([]byte, len(src))
	salsa20.XORKeyStream(dst, src, nonce[:], &key)
	return dst
}

// headerBytes serializes the header fields that precede the MAC, used as
// MAC input alongside the ciphertext (everything but the MAC itself and
// the revealed-MAC-keys trailer).
func headerBytes(h types.DataMessageHeader) []byte {
	out := make([]byte, 0, 2+1+4+4+1+4+4+4+57+4+len(h.DHPub)+24)
	out = binary.BigEndian.AppendUint16(out, uint16(h.Version))
	out = append(out, 0x03)
	out = binary.BigEndian.AppendUint32(out, uint32(h.SenderInstanceTag))
	out = binary.BigEndian.AppendUint32(out, uint32(h.ReceiverInstanceTag))
	out = append(out, h.Flags)
	out = binary.BigEndian.AppendUint32(out, h.PN)
	out = binary.BigEndian.AppendUint32(out, h.I)
	out = binary.BigEndian.AppendUint32(out, h.J)
	out = append(out, h.ECDHPub[:]...)
	out = binary.BigEndian.AppendUint32(out, uint32(len(h.DHPub)))
	out = append(out, h.DHPub...)
	out = append(out, h.Nonce[:]...)
	return out
}

// authenticate computes the mac_key-keyed authenticator over every
// preceding byte via the usage-prefixed KDF (spec 4.F: "not a generic
// HMAC").
func authenticate(macKey [64]byte, ad []byte, header types.DataMessageHeader, ciphertext []byte) [64]byte {
	return crypto.KDF64(crypto.UsageAuthMACKey, macKey[:], ad, headerBytes(header), ciphertext)
}
