package session_test

import (
	"errors"
	"testing"
	"time"

	"otr4/internal/crypto"
	"otr4/internal/domain"
	"otr4/internal/domain/types"
	"otr4/internal/protocol/profile"
	"otr4/internal/session"
)

func newTestIdentity(t *testing.T, tag types.InstanceTag) types.Identity {
	t.Helper()
	longTerm, err := crypto.GenerateSigningKey()
	if err != nil {
		t.Fatalf("GenerateSigningKey long-term: %v", err)
	}
	forging, err := crypto.GenerateSigningKey()
	if err != nil {
		t.Fatalf("GenerateSigningKey forging: %v", err)
	}
	var seed [57]byte
	seed[0] = byte(tag)
	return types.Identity{InstanceTag: tag, LongTerm: longTerm, Forging: forging, PrekeySeed: seed}
}

func allVersions() types.VersionMask {
	return types.VersionMask(0).WithVersion(types.Version4)
}

func testPhi() types.Phi {
	return types.Phi{AccountA: "alice@example.com", AccountB: "bob@example.com", Protocol: "xmpp"}
}

// newInteractivePair drives a full interactive DAKE to completion and
// returns both parties' sessions in ENCRYPTED, mirroring spec 8 S5.
func newInteractivePair(t *testing.T) (alice, bob *session.Session) {
	t.Helper()
	now := time.Now()
	aliceID := newTestIdentity(t, 0x100)
	bobID := newTestIdentity(t, 0x101)

	aliceProfile, err := profile.BuildClientProfile(aliceID, allVersions(), now, profile.DefaultLifetime)
	if err != nil {
		t.Fatalf("alice profile: %v", err)
	}
	bobProfile, err := profile.BuildClientProfile(bobID, allVersions(), now, profile.DefaultLifetime)
	if err != nil {
		t.Fatalf("bob profile: %v", err)
	}

	phi := testPhi()
	alice = session.New(aliceID, aliceProfile, phi)
	bob = session.New(bobID, bobProfile, phi)

	identity, err := bob.StartHandshake()
	if err != nil {
		t.Fatalf("bob.StartHandshake: %v", err)
	}
	if bob.State() != session.StateWaitingAuthR {
		t.Fatalf("bob.State() = %v, want WAITING_AUTH_R", bob.State())
	}

	authR, err := alice.ReceiveIdentity(identity, now)
	if err != nil {
		t.Fatalf("alice.ReceiveIdentity: %v", err)
	}
	if alice.State() != session.StateWaitingAuthI {
		t.Fatalf("alice.State() = %v, want WAITING_AUTH_I", alice.State())
	}

	authI, err := bob.ReceiveAuthR(authR, now)
	if err != nil {
		t.Fatalf("bob.ReceiveAuthR: %v", err)
	}
	if bob.State() != session.StateEncrypted {
		t.Fatalf("bob.State() = %v, want ENCRYPTED", bob.State())
	}

	if err := alice.ReceiveAuthI(authI); err != nil {
		t.Fatalf("alice.ReceiveAuthI: %v", err)
	}
	if alice.State() != session.StateEncrypted {
		t.Fatalf("alice.State() = %v, want ENCRYPTED", alice.State())
	}
	return alice, bob
}

func TestInteractiveHandshake_BothSidesReachEncrypted(t *testing.T) {
	newInteractivePair(t)
}

func TestInteractiveHandshake_FirstDataMessageRoundTrip(t *testing.T) {
	alice, bob := newInteractivePair(t)

	dm, err := alice.Send([]types.TLV{{Type: types.TLVSMP1, Value: []byte("hello bob")}})
	if err != nil {
		t.Fatalf("alice.Send: %v", err)
	}

	got, err := bob.Receive(dm)
	if err != nil {
		t.Fatalf("bob.Receive: %v", err)
	}
	if len(got) != 1 || string(got[0].Value) != "hello bob" {
		t.Fatalf("got tlvs %+v, want original application tlv", got)
	}

	// The ratchet counters are unexported and not inspected here; only
	// that bob stays ENCRYPTED after the first data message is checked.
	if got := bob.State(); got != session.StateEncrypted {
		t.Fatalf("bob.State() = %v, want ENCRYPTED", got)
	}
}

func TestNonInteractiveHandshake_RoundTrip(t *testing.T) {
	now := time.Now()
	aliceID := newTestIdentity(t, 0x100)
	bobID := newTestIdentity(t, 0x101)

	aliceProfile, err := profile.BuildClientProfile(aliceID, allVersions(), now, profile.DefaultLifetime)
	if err != nil {
		t.Fatalf("alice profile: %v", err)
	}
	bobProfile, err := profile.BuildClientProfile(bobID, allVersions(), now, profile.DefaultLifetime)
	if err != nil {
		t.Fatalf("bob profile: %v", err)
	}
	bobPrekeyProfile, err := profile.BuildPrekeyProfile(bobID, now, profile.DefaultLifetime)
	if err != nil {
		t.Fatalf("bob prekey profile: %v", err)
	}

	phi := testPhi()
	alice := session.New(aliceID, aliceProfile, phi)
	bob := session.New(bobID, bobProfile, phi)

	prekeyMessage, err := bob.PublishPrekeyEnsemble()
	if err != nil {
		t.Fatalf("bob.PublishPrekeyEnsemble: %v", err)
	}
	if bob.State() != session.StateWaitingDAKEDataMessage {
		t.Fatalf("bob.State() = %v, want WAITING_DAKE_DATA_MESSAGE", bob.State())
	}

	ensemble := types.PrekeyEnsemble{
		ClientProfile: bobProfile,
		PrekeyProfile: bobPrekeyProfile,
		PrekeyMessage: prekeyMessage,
	}

	dake3, err := alice.SendDAKE3(ensemble, now, []types.TLV{{Type: types.TLVSMP1, Value: []byte("first contact")}})
	if err != nil {
		t.Fatalf("alice.SendDAKE3: %v", err)
	}
	if alice.State() != session.StateEncrypted {
		t.Fatalf("alice.State() = %v, want ENCRYPTED", alice.State())
	}

	got, err := bob.ReceiveDAKE3(dake3, now)
	if err != nil {
		t.Fatalf("bob.ReceiveDAKE3: %v", err)
	}
	if bob.State() != session.StateEncrypted {
		t.Fatalf("bob.State() = %v, want ENCRYPTED", bob.State())
	}
	if len(got) != 1 || string(got[0].Value) != "first contact" {
		t.Fatalf("got tlvs %+v, want original application tlv", got)
	}
}

func TestReceivePlaintext_NoWarningInStart(t *testing.T) {
	s := session.New(newTestIdentity(t, 0x100), types.ClientProfile{}, types.Phi{})
	text, warn := s.ReceivePlaintext("Some random text.")
	if text != "Some random text." || warn != session.WarningNone {
		t.Fatalf("got (%q, %v), want (verbatim, WarningNone)", text, warn)
	}
}

func TestReceivePlaintext_WarnsMidHandshake(t *testing.T) {
	now := time.Now()
	id := newTestIdentity(t, 0x100)
	p, err := profile.BuildClientProfile(id, allVersions(), now, profile.DefaultLifetime)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	s := session.New(id, p, types.Phi{})
	if _, err := s.StartHandshake(); err != nil {
		t.Fatalf("StartHandshake: %v", err)
	}

	text, warn := s.ReceivePlaintext("Some random text.")
	if text != "Some random text." || warn != session.WarningReceivedUnencrypted {
		t.Fatalf("got (%q, %v), want (verbatim, WarningReceivedUnencrypted)", text, warn)
	}
}

func TestEndSession_EmitsDisconnectAndTransitionsPeer(t *testing.T) {
	alice, bob := newInteractivePair(t)

	dm, err := alice.EndSession()
	if err != nil {
		t.Fatalf("alice.EndSession: %v", err)
	}
	if dm == nil {
		t.Fatal("expected a disconnect data message")
	}
	if alice.State() != session.StateFinished {
		t.Fatalf("alice.State() = %v, want FINISHED", alice.State())
	}

	if _, err := bob.Receive(*dm); err != nil {
		t.Fatalf("bob.Receive(disconnect): %v", err)
	}
	if bob.State() != session.StateFinished {
		t.Fatalf("bob.State() = %v, want FINISHED", bob.State())
	}
}

func TestReceiveAdvertisement_ResetsToWaitingAuthR(t *testing.T) {
	alice, _ := newInteractivePair(t)

	if _, err := alice.ReceiveAdvertisement(allVersions()); err != nil {
		t.Fatalf("ReceiveAdvertisement: %v", err)
	}
	if alice.State() != session.StateWaitingAuthR {
		t.Fatalf("alice.State() = %v, want WAITING_AUTH_R", alice.State())
	}
}

func TestSend_RejectedOutsideEncrypted(t *testing.T) {
	s := session.New(newTestIdentity(t, 0x100), types.ClientProfile{}, types.Phi{})
	if _, err := s.Send(nil); err == nil {
		t.Fatal("expected Send to fail in START")
	}
}

func TestReceiveAuthR_RejectsWrongReceiverInstanceTag(t *testing.T) {
	now := time.Now()
	aliceID := newTestIdentity(t, 0x100)
	bobID := newTestIdentity(t, 0x101)

	aliceProfile, err := profile.BuildClientProfile(aliceID, allVersions(), now, profile.DefaultLifetime)
	if err != nil {
		t.Fatalf("alice profile: %v", err)
	}
	bobProfile, err := profile.BuildClientProfile(bobID, allVersions(), now, profile.DefaultLifetime)
	if err != nil {
		t.Fatalf("bob profile: %v", err)
	}

	phi := testPhi()
	alice := session.New(aliceID, aliceProfile, phi)
	bob := session.New(bobID, bobProfile, phi)

	identity, err := bob.StartHandshake()
	if err != nil {
		t.Fatalf("bob.StartHandshake: %v", err)
	}
	authR, err := alice.ReceiveIdentity(identity, now)
	if err != nil {
		t.Fatalf("alice.ReceiveIdentity: %v", err)
	}

	authR.ReceiverInstanceTag ^= 1
	if _, err := bob.ReceiveAuthR(authR, now); !errors.Is(err, domain.ErrInstanceTagMismatch) {
		t.Fatalf("bob.ReceiveAuthR with wrong receiver tag: got %v, want %v", err, domain.ErrInstanceTagMismatch)
	}
}

func TestReceiveAuthI_RejectsWrongReceiverInstanceTag(t *testing.T) {
	now := time.Now()
	aliceID := newTestIdentity(t, 0x100)
	bobID := newTestIdentity(t, 0x101)

	aliceProfile, err := profile.BuildClientProfile(aliceID, allVersions(), now, profile.DefaultLifetime)
	if err != nil {
		t.Fatalf("alice profile: %v", err)
	}
	bobProfile, err := profile.BuildClientProfile(bobID, allVersions(), now, profile.DefaultLifetime)
	if err != nil {
		t.Fatalf("bob profile: %v", err)
	}

	phi := testPhi()
	alice := session.New(aliceID, aliceProfile, phi)
	bob := session.New(bobID, bobProfile, phi)

	identity, err := bob.StartHandshake()
	if err != nil {
		t.Fatalf("bob.StartHandshake: %v", err)
	}
	authR, err := alice.ReceiveIdentity(identity, now)
	if err != nil {
		t.Fatalf("alice.ReceiveIdentity: %v", err)
	}
	authI, err := bob.ReceiveAuthR(authR, now)
	if err != nil {
		t.Fatalf("bob.ReceiveAuthR: %v", err)
	}

	authI.ReceiverInstanceTag ^= 1
	if err := alice.ReceiveAuthI(authI); !errors.Is(err, domain.ErrInstanceTagMismatch) {
		t.Fatalf("alice.ReceiveAuthI with wrong receiver tag: got %v, want %v", err, domain.ErrInstanceTagMismatch)
	}
}

func TestEndSession_DestroyAgainIsHarmless(t *testing.T) {
	alice, _ := newInteractivePair(t)

	if _, err := alice.EndSession(); err != nil {
		t.Fatalf("alice.EndSession: %v", err)
	}

	// The ratchet is unexported, so whether its secrets were wiped is not
	// inspected here. EndSession already called Destroy; Destroy is
	// idempotent, so calling it again must be a harmless no-op rather than
	// a panic.
	alice.Destroy()
}
