package types

// Identity holds the long-lived material a client owns: its Ed448 signing
// key (the "long-term key"), its forging key (used only inside ring
// signatures to preserve deniability), and the seed for its shared prekey.
// None of these are rotated by the core; the host creates and persists them.
type Identity struct {
	InstanceTag InstanceTag
	LongTerm    SigningKeyPair
	Forging     SigningKeyPair
	PrekeySeed  [57]byte
}
