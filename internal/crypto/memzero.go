package crypto

import (
	"runtime"

	"otr4/internal/util/memzero"
)

// Wipe zeroes the provided buffer. Best-effort to prevent compiler elision.
//
//go:noinline
func Wipe(b []byte) {
	memzero.Zero(b)
	// Keep b alive until after Zero returns.
	runtime.KeepAlive(&b)
}
