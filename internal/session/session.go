package session

import (
	"fmt"
	"time"

	"otr4/internal/domain"
	"otr4/internal/domain/types"
	"otr4/internal/protocol/dake"
	"otr4/internal/protocol/message"
	"otr4/internal/protocol/ratchet"
)

// Session mediates one conversation's DAKE handshake and subsequent data
// messages. It is not safe for concurrent use (spec 5: "single-threaded
// and non-reentrant per session"); callers serialize their own access.
type Session struct {
	id      types.Identity
	profile types.ClientProfile
	phi     types.Phi

	state   State
	peerTag types.InstanceTag

	// In-flight handshake state, populated by whichever role this party
	// is currently playing; zero-valued and unused otherwise.
	bobKeys    dake.EphemeralKeys // Bob, between sending Identity and receiving Auth-R
	aliceState dake.AliceState    // Alice, between sending Auth-R and receiving Auth-I
	prekeyKeys dake.EphemeralKeys // Bob, between publishing a Prekey Message and receiving DAKE-3

	ratchet types.RatchetState // valid only once state == StateEncrypted
}

// New constructs a session in START for the given local identity, client
// profile, and shared session state (phi).
func New(id types.Identity, profile types.ClientProfile, phi types.Phi) *Session {
	return &Session{id: id, profile: profile, phi: phi, state: StateStart}
}

// State reports the session's current FSM state.
func (s *Session) State() State { return s.state }

func (s *Session) stateError(op string) error {
	return fmt.Errorf("%w: %s in %s", domain.ErrStateError, op, s.state)
}

// StartHandshake begins (or restarts) the interactive flight: generates
// Bob's fresh ephemerals and an Identity message, moving to
// WAITING_AUTH_R. Valid from any non-handshaking state (spec 4.G: a
// local restart, or the reaction to an incoming query/whitespace-tag
// advertisement, is only refused while a DAKE flight is already in
// progress).
func (s *Session) StartHandshake() (types.IdentityMessage, error) {
	if s.state.isHandshaking() {
		return types.IdentityMessage{}, s.stateError("start handshake")
	}
	msg, keys, err := dake.NewIdentityMessage(s.id.InstanceTag, s.profile)
	if err != nil {
		return types.IdentityMessage{}, err
	}
	s.bobKeys = keys
	s.state = StateWaitingAuthR
	return msg, nil
}

// ReceiveAdvertisement handles an incoming query message or whitespace
// tag advertising OTRv4 (spec 4.G): resets to WAITING_AUTH_R by sending a
// fresh Identity message, unless a DAKE flight is already underway or the
// advertised versions exclude v4.
func (s *Session) ReceiveAdvertisement(mask types.VersionMask) (types.IdentityMessage, error) {
	if !mask.Allows(types.Version4) {
		return types.IdentityMessage{}, domain.ErrPolicyError
	}
	return s.StartHandshake()
}

// ReceiveIdentity handles an incoming Identity message, playing Alice's
// role: validates Bob's Client Profile, builds Auth-R, and moves to
// WAITING_AUTH_I. If this party already sent its own Identity message
// (simultaneous start, spec 4.D edge case), the lower instance tag
// defers to the peer's flight instead of racing it.
func (s *Session) ReceiveIdentity(msg types.IdentityMessage, now time.Time) (types.AuthRMessage, error) {
	switch s.state {
	case StateWaitingAuthR:
		if !dake.ShouldDefer(s.id.InstanceTag, msg.SenderInstanceTag) {
			return types.AuthRMessage{}, s.stateError("receive identity (not deferring)")
		}
	case StateWaitingAuthI, StateWaitingDAKEDataMessage:
		return types.AuthRMessage{}, s.stateError("receive identity")
	}

	authR, st, err := dake.NewAuthR(s.id, s.profile, msg, s.phi, now)
	if err != nil {
		return types.AuthRMessage{}, err
	}
	s.aliceState = st
	s.peerTag = msg.SenderInstanceTag
	s.state = StateWaitingAuthI
	return authR, nil
}

// ReceiveAuthR handles Bob's receipt of Auth-R while WAITING_AUTH_R:
// validates it, builds Auth-I, and seeds his side of the ratchet. Bob's
// ratchet is fully seeded the moment Auth-I is built, so he moves
// straight to ENCRYPTED — there is no further flight he waits on.
func (s *Session) ReceiveAuthR(msg types.AuthRMessage, now time.Time) (types.AuthIMessage, error) {
	if s.state != StateWaitingAuthR {
		return types.AuthIMessage{}, s.stateError("receive auth-r")
	}
	if msg.ReceiverInstanceTag != s.id.InstanceTag {
		return types.AuthIMessage{}, fmt.Errorf("%w: auth-r receiver instance tag", domain.ErrInstanceTagMismatch)
	}
	authI, rs, err := dake.NewAuthI(s.id, s.profile, s.bobKeys, msg, s.phi, now)
	if err != nil {
		s.state = StateStart
		s.Destroy()
		return types.AuthIMessage{}, err
	}
	s.ratchet = rs
	s.peerTag = msg.SenderInstanceTag
	s.state = StateEncrypted
	s.bobKeys.Destroy()
	return authI, nil
}

// ReceiveAuthI handles Alice's receipt of Auth-I while WAITING_AUTH_I,
// completing the interactive flight and moving to ENCRYPTED.
func (s *Session) ReceiveAuthI(msg types.AuthIMessage) error {
	if s.state != StateWaitingAuthI {
		return s.stateError("receive auth-i")
	}
	if msg.ReceiverInstanceTag != s.id.InstanceTag {
		return fmt.Errorf("%w: auth-i receiver instance tag", domain.ErrInstanceTagMismatch)
	}
	rs, err := dake.CompleteAuthI(s.aliceState, msg)
	if err != nil {
		s.state = StateStart
		s.Destroy()
		return err
	}
	s.ratchet = rs
	s.state = StateEncrypted
	s.aliceState.Destroy()
	return nil
}

// PublishPrekeyEnsemble begins the non-interactive flight from Bob's
// side: generates a fresh Prekey Message to publish (alongside his
// already-published Client/Prekey Profiles, which this package does not
// manage), and moves to WAITING_DAKE_DATA_MESSAGE.
func (s *Session) PublishPrekeyEnsemble() (types.PrekeyMessage, error) {
	if s.state.isHandshaking() {
		return types.PrekeyMessage{}, s.stateError("publish prekey ensemble")
	}
	msg, keys, err := dake.NewPrekeyMessage(s.id.InstanceTag)
	if err != nil {
		return types.PrekeyMessage{}, err
	}
	s.prekeyKeys = keys
	s.state = StateWaitingDAKEDataMessage
	return msg, nil
}

// SendDAKE3 builds Alice's non-interactive flight against a previously
// fetched Prekey Ensemble: the TLVs are padded, TLV-encoded, and
// encrypted as the flight's piggy-backed first Data Message, seeding
// Alice's side of the ratchet and moving straight to ENCRYPTED.
func (s *Session) SendDAKE3(ensemble types.PrekeyEnsemble, now time.Time, tlvs []types.TLV) (types.DAKE3Message, error) {
	if s.state.isHandshaking() {
		return types.DAKE3Message{}, s.stateError("send dake-3")
	}
	plaintext := message.EncodeTLVs(message.Pad(tlvs))
	msg, rs, err := dake.NewDAKE3(s.id, s.profile, ensemble, s.phi, now, plaintext)
	if err != nil {
		return types.DAKE3Message{}, err
	}
	s.ratchet = rs
	s.peerTag = ensemble.PrekeyMessage.InstanceTag
	s.state = StateEncrypted
	return msg, nil
}

// ReceiveDAKE3 handles Bob's receipt of a DAKE-3 message while
// WAITING_DAKE_DATA_MESSAGE: completes the flight, seeds his side of the
// ratchet, decrypts the piggy-backed Data Message, and moves to
// ENCRYPTED.
func (s *Session) ReceiveDAKE3(msg types.DAKE3Message, now time.Time) ([]types.TLV, error) {
	if s.state != StateWaitingDAKEDataMessage {
		return nil, s.stateError("receive dake-3")
	}
	plaintext, rs, err := dake.CompleteDAKE3(s.id, s.profile, s.prekeyKeys, s.id.PrekeySeed, msg, s.phi, now)
	if err != nil {
		s.state = StateStart
		s.Destroy()
		return nil, err
	}
	s.ratchet = rs
	s.peerTag = msg.SenderInstanceTag
	s.state = StateEncrypted
	s.prekeyKeys.Destroy()

	tlvs, err := message.DecodeTLVs(plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecryptionFailure, err)
	}
	return message.StripPadding(tlvs), nil
}

// Send encrypts tlvs as a Data Message. Valid only in ENCRYPTED.
func (s *Session) Send(tlvs []types.TLV) (types.DataMessage, error) {
	if s.state != StateEncrypted {
		return types.DataMessage{}, s.stateError("send")
	}
	return message.Send(&s.ratchet, s.id.InstanceTag, s.peerTag, 0, nil, tlvs)
}

// Receive authenticates and decrypts an incoming Data Message. If the
// decoded TLVs include a disconnect TLV, the session moves to FINISHED
// (spec 4.G: "receiving a disconnect TLV -> FINISHED, one-way").
func (s *Session) Receive(dm types.DataMessage) ([]types.TLV, error) {
	if s.state != StateEncrypted {
		return nil, s.stateError("receive data message")
	}
	if dm.Header.ReceiverInstanceTag != s.id.InstanceTag {
		return nil, fmt.Errorf("%w: data message receiver instance tag", domain.ErrInstanceTagMismatch)
	}
	tlvs, err := message.Receive(&s.ratchet, nil, dm)
	if err != nil {
		return nil, err
	}
	for _, t := range tlvs {
		if t.Type == types.TLVDisconnect {
			s.state = StateFinished
			s.Destroy()
			break
		}
	}
	return tlvs, nil
}

// EndSession terminates the conversation locally (spec 4.G: "local
// end_session() -> FINISHED after emitting a disconnect-bearing data
// message if currently in ENCRYPTED"). From any other state it simply
// moves to FINISHED with nothing to send.
func (s *Session) EndSession() (*types.DataMessage, error) {
	if s.state != StateEncrypted {
		s.state = StateFinished
		s.Destroy()
		return nil, nil
	}
	dm, err := message.Send(&s.ratchet, s.id.InstanceTag, s.peerTag, 0, nil, []types.TLV{{Type: types.TLVDisconnect}})
	if err != nil {
		return nil, err
	}
	s.state = StateFinished
	s.Destroy()
	return &dm, nil
}

// ReceivePlaintext handles an incoming message with no OTR framing at
// all: the text is always delivered verbatim, but a warning is raised
// whenever a handshake is in progress or an encrypted session is active,
// since the peer was expected to be using OTR (spec 8 S3/S4).
func (s *Session) ReceivePlaintext(text string) (string, Warning) {
	if s.state == StateStart || s.state == StateFinished {
		return text, WarningNone
	}
	return text, WarningReceivedUnencrypted
}

// Destroy wipes every secret this session currently holds: the ratchet
// state (if ENCRYPTED), and whichever in-flight DAKE ephemerals are
// populated for the role this party is playing. Idempotent, and safe to
// call from any state, matching spec 9's "drop zeroizes, no distinction
// exposed to callers" — callers never need to know which of these was
// actually in use.
func (s *Session) Destroy() {
	ratchet.Destroy(&s.ratchet)
	s.bobKeys.Destroy()
	s.aliceState.Destroy()
	s.prekeyKeys.Destroy()
}
