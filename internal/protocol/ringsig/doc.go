// Package ringsig provides authenticate/verify for the 3-of-3 signature of
// knowledge used by the DAKE to bind a transcript to one of three named
// identities without revealing which one signed.
package ringsig
