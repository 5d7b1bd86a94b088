package dake

import "otr4/internal/crypto"

// Destroy wipes k's private ephemerals. Safe to call once the
// corresponding flight has completed (the keys have served their single
// purpose) or when a handshake is abandoned mid-flight.
func (k *EphemeralKeys) Destroy() {
	crypto.Wipe(k.ECDH.Priv[:])
	crypto.Wipe(k.DH.Priv)
}

// Destroy wipes every secret s carries: its own in-flight ephemerals.
// The peer's public material and both profiles are not secret and are
// left intact.
func (s *AliceState) Destroy() {
	s.Own.Destroy()
}
