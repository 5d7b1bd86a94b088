package message_test

import (
	"bytes"
	"errors"
	"testing"

	"otr4/internal/crypto"
	"otr4/internal/domain"
	"otr4/internal/domain/types"
	"otr4/internal/protocol/message"
	"otr4/internal/protocol/ratchet"
)

func initPair(t *testing.T) (alice, bob types.RatchetState) {
	t.Helper()
	var sharedSecret [64]byte
	copy(sharedSecret[:], bytes.Repeat([]byte{0x7a}, 64))

	aPriv, aPub, err := crypto.GenerateECDH()
	if err != nil {
		t.Fatalf("GenerateECDH(alice): %v", err)
	}
	bPriv, bPub, err := crypto.GenerateECDH()
	if err != nil {
		t.Fatalf("GenerateECDH(bob): %v", err)
	}
	aDHPriv, aDHPub, err := crypto.GenerateDH()
	if err != nil {
		t.Fatalf("GenerateDH(alice): %v", err)
	}
	bDHPriv, bDHPub, err := crypto.GenerateDH()
	if err != nil {
		t.Fatalf("GenerateDH(bob): %v", err)
	}

	aliceECDH := types.ECDHKeyPair{Priv: aPriv, Pub: aPub}
	bobECDH := types.ECDHKeyPair{Priv: bPriv, Pub: bPub}
	aliceDH := types.DHKeyPair{Priv: aDHPriv, Pub: aDHPub}
	bobDH := types.DHKeyPair{Priv: bDHPriv, Pub: bDHPub}

	alice, err = ratchet.InitAsInitiator(sharedSecret, aliceECDH, aliceDH, bobECDH.Pub, bobDH.Pub)
	if err != nil {
		t.Fatalf("InitAsInitiator: %v", err)
	}
	bob, err = ratchet.InitAsResponder(sharedSecret, bobECDH, bobDH, aliceECDH.Pub, aliceDH.Pub)
	if err != nil {
		t.Fatalf("InitAsResponder: %v", err)
	}
	return alice, bob
}

func TestEncodeDecodeTLVs_RoundTrip(t *testing.T) {
	in := []types.TLV{
		{Type: types.TLVDisconnect, Value: nil},
		{Type: types.TLVSMP1, Value: []byte("hello")},
		{Type: types.TLVExtraSymmetricKey, Value: bytes.Repeat([]byte{0x01}, 32)},
	}
	encoded := message.EncodeTLVs(in)
	out, err := message.DecodeTLVs(encoded)
	if err != nil {
		t.Fatalf("DecodeTLVs: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d tlvs, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i].Type != in[i].Type || !bytes.Equal(out[i].Value, in[i].Value) {
			t.Fatalf("tlv %d mismatch: got %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestDecodeTLVs_RejectsTruncated(t *testing.T) {
	if _, err := message.DecodeTLVs([]byte{0x00}); !errors.Is(err, domain.ErrMalformedFrame) {
		t.Fatalf("got %v, want ErrMalformedFrame", err)
	}
}

func TestDecodeTLVs_RejectsOverrunningLength(t *testing.T) {
	// type=0, length=10, but no value bytes follow.
	b := []byte{0x00, 0x00, 0x00, 0x0a}
	if _, err := message.DecodeTLVs(b); !errors.Is(err, domain.ErrMalformedFrame) {
		t.Fatalf("got %v, want ErrMalformedFrame", err)
	}
}

func TestPad_RoundsUpToBlockBoundary(t *testing.T) {
	tlvs := []types.TLV{{Type: types.TLVSMP1, Value: []byte("short")}}
	padded := message.Pad(tlvs)
	encoded := message.EncodeTLVs(padded)
	if len(encoded)%256 != 0 {
		t.Fatalf("padded length %d is not a multiple of 256", len(encoded))
	}

	decoded, err := message.DecodeTLVs(encoded)
	if err != nil {
		t.Fatalf("DecodeTLVs(padded): %v", err)
	}
	stripped := message.StripPadding(decoded)
	if len(stripped) != 1 || !bytes.Equal(stripped[0].Value, []byte("short")) {
		t.Fatalf("stripped tlvs = %+v, want original application tlv", stripped)
	}
}

func TestPad_SkipsPaddingWhenAlreadyAligned(t *testing.T) {
	// An empty chain is already a multiple of 256 (zero), so Pad should
	// not append a padding TLV at all (spec 4.F: only pads when the
	// chain is shorter than the next boundary).
	padded := message.Pad(nil)
	if len(padded) != 0 {
		t.Fatalf("Pad(nil) = %+v, want no padding tlv appended", padded)
	}
}

func TestSendReceive_RoundTrip(t *testing.T) {
	alice, bob := initPair(t)

	tlvs := []types.TLV{{Type: types.TLVSMP1, Value: []byte("payload")}}
	dm, err := message.Send(&alice, 0x100, 0x101, 0, []byte("ad"), tlvs)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	got, err := message.Receive(&bob, []byte("ad"), dm)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(got) != 1 || got[0].Type != types.TLVSMP1 || !bytes.Equal(got[0].Value, []byte("payload")) {
		t.Fatalf("got tlvs %+v, want original application tlv", got)
	}
}

func TestSendReceive_RevealsOldMACKeysAfterSecondMessage(t *testing.T) {
	alice, bob := initPair(t)

	dm1, err := message.Send(&alice, 0x100, 0x101, 0, nil, []types.TLV{{Type: types.TLVSMP1, Value: []byte("one")}})
	if err != nil {
		t.Fatalf("Send(1): %v", err)
	}
	if len(dm1.RevealedMACKeys) != 0 {
		t.Fatalf("first message revealed %d mac keys, want 0", len(dm1.RevealedMACKeys))
	}
	if _, err := message.Receive(&bob, nil, dm1); err != nil {
		t.Fatalf("Receive(1): %v", err)
	}

	reply, err := message.Send(&bob, 0x101, 0x100, 0, nil, []types.TLV{{Type: types.TLVSMP1, Value: []byte("reply")}})
	if err != nil {
		t.Fatalf("Send(reply): %v", err)
	}
	if _, err := message.Receive(&alice, nil, reply); err != nil {
		t.Fatalf("Receive(reply): %v", err)
	}

	dm2, err := message.Send(&alice, 0x100, 0x101, 0, nil, []types.TLV{{Type: types.TLVSMP1, Value: []byte("two")}})
	if err != nil {
		t.Fatalf("Send(2): %v", err)
	}
	if len(dm2.RevealedMACKeys) != 1 {
		t.Fatalf("second message revealed %d mac keys, want 1", len(dm2.RevealedMACKeys))
	}
}

func TestReceive_RejectsTamperedMAC(t *testing.T) {
	alice, bob := initPair(t)

	dm, err := message.Send(&alice, 0x100, 0x101, 0, nil, []types.TLV{{Type: types.TLVSMP1, Value: []byte("x")}})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	dm.MAC[0] ^= 0xff

	if _, err := message.Receive(&bob, nil, dm); err == nil {
		t.Fatal("expected authentication failure on tampered mac")
	} else if err != domain.ErrAuthFailure {
		t.Fatalf("got %v, want ErrAuthFailure", err)
	}
}
