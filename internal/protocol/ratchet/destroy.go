package ratchet

import (
	"otr4/internal/crypto"
	"otr4/internal/domain/types"
)

// Destroy wipes every secret held in st: both parties' chain keys, the
// root key, the shared secret and its derivatives, the current private
// ephemerals, and any stored skipped-message keys. Idempotent: calling it
// again on an already-destroyed state is a harmless no-op (spec 9,
// "drop zeroizes, no distinction exposed to callers").
func Destroy(st *types.RatchetState) {
	crypto.Wipe(st.OwnECDH.Priv[:])
	crypto.Wipe(st.OwnDH.Priv)
	crypto.Wipe(st.RootKey[:])
	crypto.Wipe(st.SendingChain[:])
	crypto.Wipe(st.ReceivingChain[:])
	crypto.Wipe(st.BraceKey[:])
	crypto.Wipe(st.SharedSecret[:])
	crypto.Wipe(st.ExtraSymmetricKey[:])
	crypto.Wipe(st.TmpKey[:])
	for id, sk := range st.SkippedKeys {
		crypto.Wipe(sk.EncKey[:])
		crypto.Wipe(sk.ExtraKey[:])
		delete(st.SkippedKeys, id)
	}
	for i := range st.OldMACKeys {
		crypto.Wipe(st.OldMACKeys[i][:])
	}
	st.OldMACKeys = nil
	st.SendChainValid = false
	st.RecvChainValid = false
}
