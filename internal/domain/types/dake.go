package types

// Phi is the host-supplied shared session state bound into the DAKE
// transcript: the two participants' account/protocol identifiers and an
// optional shared password, preventing identity-misbinding attacks.
type Phi struct {
	AccountA  string
	AccountB  string
	Protocol  string
	Password  string // empty if none
}

// Encode returns a length-prefixed concatenation suitable for hashing into
// the transcript.
func (p Phi) Encode() []byte {
	fields := []string{p.AccountA, p.AccountB, p.Protocol, p.Password}
	out := make([]byte, 0, 64)
	for _, f := range fields {
		var lenBuf [4]byte
		n := len(f)
		lenBuf[0] = byte(n >> 24)
		lenBuf[1] = byte(n >> 16)
		lenBuf[2] = byte(n >> 8)
		lenBuf[3] = byte(n)
		out = append(out, lenBuf[:]...)
		out = append(out, f...)
	}
	return out
}

// IdentityMessage is the first DAKE flight, Bob -> Alice.
type IdentityMessage struct {
	SenderInstanceTag   InstanceTag
	ReceiverInstanceTag InstanceTag // always 0 in the Identity message
	ClientProfile       ClientProfile
	Y                   ECDHPublic // Bob's fresh ECDH public key
	B                   DHPublic   // Bob's fresh DH public key
}

// AuthRMessage is the second DAKE flight, Alice -> Bob.
type AuthRMessage struct {
	SenderInstanceTag   InstanceTag
	ReceiverInstanceTag InstanceTag
	ClientProfile       ClientProfile
	X                   ECDHPublic // Alice's fresh ECDH public key
	A                   DHPublic   // Alice's fresh DH public key
	Sigma               RingSignature
}

// AuthIMessage is the third DAKE flight, Bob -> Alice.
type AuthIMessage struct {
	SenderInstanceTag   InstanceTag
	ReceiverInstanceTag InstanceTag
	Sigma               RingSignature
}

// DAKE3Message is the non-interactive flight's single outgoing message: it
// carries Alice's Client Profile (Bob has no other way to learn her
// long-term and forging keys, since he never received an Identity message
// from her), her fresh DH public key A (the piggy-backed Data Message's
// header only carries her ECDH public key; a brace-key ratchet DH point
// is attached to a header conditionally, not on every message, so A needs
// its own field here), her Auth-I-equivalent ring signature, and the first
// Data Message, all in one round trip against a previously fetched
// PrekeyEnsemble.
type DAKE3Message struct {
	SenderInstanceTag   InstanceTag
	ReceiverInstanceTag InstanceTag
	ClientProfile       ClientProfile
	A                   DHPublic
	Sigma               RingSignature
	Message             DataMessage
}
