// Package dake implements OTRv4's Deniable Authenticated Key Exchange: the
// three-flight interactive handshake (Identity, Auth-R, Auth-I) and the
// non-interactive DAKE-3 flight against a published Prekey Ensemble.
//
// Every flight ends the same way: build (or reconstruct) the transcript,
// authenticate it with the three-key ring signature, and on success hand
// the two ephemeral ECDH/DH pairs and a transcript-derived shared secret
// to ratchet.Init to seed the double ratchet.
package dake
