package crypto

// Allocator abstracts the process-wide secure-allocator pool spec 5
// describes for scalar/key buffers. The portable default is a plain
// make([]byte, n); a host on a platform with mlock (or similar) can
// supply an implementation that pins the returned buffer against swap.
type Allocator interface {
	// Alloc returns a zeroed buffer of length n.
	Alloc(n int) []byte
	// Free releases a buffer previously returned by Alloc. The default
	// only wipes it; there is nothing else to release.
	Free(b []byte)
}

// plainAllocator is the portable default: plain make on Alloc, Wipe on Free.
type plainAllocator struct{}

func (plainAllocator) Alloc(n int) []byte { return make([]byte, n) }
func (plainAllocator) Free(b []byte)      { Wipe(b) }

// DefaultAllocator is used wherever a caller doesn't supply one,
// matching the teacher's "dependency passed at construction, nil-safe
// default" pattern (relay.NewHTTP's *http.Client defaulting to
// http.DefaultClient).
var DefaultAllocator Allocator = plainAllocator{}

// WithAllocator returns a if non-nil, otherwise DefaultAllocator.
func WithAllocator(a Allocator) Allocator {
	if a == nil {
		return DefaultAllocator
	}
	return a
}
