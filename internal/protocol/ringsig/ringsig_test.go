package ringsig_test

import (
	"testing"

	"otr4/internal/crypto"
	"otr4/internal/domain/types"
	"otr4/internal/protocol/ringsig"
)

func genKey(t *testing.T) (types.ECDHPrivate, types.ECDHPublic) {
	t.Helper()
	priv, pub, err := crypto.GenerateECDH()
	if err != nil {
		t.Fatalf("GenerateECDH: %v", err)
	}
	return priv, pub
}

func TestAuthenticateVerify_EachSlot(t *testing.T) {
	priv1, a1 := genKey(t)
	priv2, a2 := genKey(t)
	priv3, a3 := genKey(t)
	msg := []byte("transcript bytes")

	for i, priv := range []types.ECDHPrivate{priv1, priv2, priv3} {
		sigma, err := ringsig.Authenticate(priv, a1, a2, a3, msg)
		if err != nil {
			t.Fatalf("slot %d: Authenticate: %v", i, err)
		}
		if !ringsig.Verify(a1, a2, a3, msg, sigma) {
			t.Fatalf("slot %d: Verify rejected a valid signature", i)
		}
	}
}

func TestAuthenticate_UnknownKey(t *testing.T) {
	_, a1 := genKey(t)
	_, a2 := genKey(t)
	_, a3 := genKey(t)
	otherPriv, _ := genKey(t)

	if _, err := ringsig.Authenticate(otherPriv, a1, a2, a3, []byte("msg")); err != ringsig.ErrUnknownKey {
		t.Fatalf("got err %v, want ErrUnknownKey", err)
	}
}

func TestVerify_RejectsTamperedMessage(t *testing.T) {
	priv1, a1 := genKey(t)
	_, a2 := genKey(t)
	_, a3 := genKey(t)
	msg := []byte("transcript bytes")

	sigma, err := ringsig.Authenticate(priv1, a1, a2, a3, msg)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if ringsig.Verify(a1, a2, a3, []byte("transcript Bytes"), sigma) {
		t.Fatal("Verify accepted a tampered message")
	}
}

func TestVerify_RejectsTamperedSignature(t *testing.T) {
	priv1, a1 := genKey(t)
	_, a2 := genKey(t)
	_, a3 := genKey(t)
	msg := []byte("transcript bytes")

	sigma, err := ringsig.Authenticate(priv1, a1, a2, a3, msg)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	sigma.R1[0] ^= 0x01
	if ringsig.Verify(a1, a2, a3, msg, sigma) {
		t.Fatal("Verify accepted a tampered signature")
	}
}

func TestVerify_RejectsTamperedRingMember(t *testing.T) {
	priv1, a1 := genKey(t)
	_, a2 := genKey(t)
	_, a3 := genKey(t)
	msg := []byte("transcript bytes")

	sigma, err := ringsig.Authenticate(priv1, a1, a2, a3, msg)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	a2[0] ^= 0x01
	if ringsig.Verify(a1, a2, a3, msg, sigma) {
		t.Fatal("Verify accepted after a ring member changed")
	}
}
