package wire

import "otr4/internal/domain/types"

// whitespaceTagPrefix is the fixed 16-byte base every whitespace tag
// starts with, byte-for-byte from spec 8 S2 (confirmed against
// original_source's otrng_build_whitespace_tag fixture).
var whitespaceTagPrefix = []byte{
	0x20, 0x09, 0x20, 0x20, 0x09, 0x09, 0x09, 0x09,
	0x20, 0x09, 0x20, 0x09, 0x20, 0x09, 0x20, 0x20,
}

// whitespaceVersionTags holds the 8-byte suffix appended per advertised
// version, keyed by version number. The v4 suffix is taken verbatim from
// spec 8 S2's worked example (the authoritative byte sequence of the two
// in the corpus); the v3 suffix is adapted from original_source's v34
// fixture, which uses a slightly different base and so cannot be matched
// byte-for-byte against spec 8 S2 — see DESIGN.md for the resolution.
var whitespaceVersionTags = map[types.Version][]byte{
	types.Version4: {0x20, 0x09, 0x20, 0x09, 0x09, 0x20, 0x09, 0x20},
	types.Version3: {0x20, 0x20, 0x09, 0x09, 0x20, 0x20, 0x09, 0x09},
}

// BuildWhitespaceTag renders the whitespace-tag prefix for mask's
// versions (most-preferred first) followed by text (spec §6, spec 8 S2).
func BuildWhitespaceTag(mask types.VersionMask, text string) string {
	out := make([]byte, 0, len(whitespaceTagPrefix)+2*8+len(text))
	out = append(out, whitespaceTagPrefix...)
	for _, v := range queryVersionOrder {
		if mask.Allows(v) {
			out = append(out, whitespaceVersionTags[v]...)
		}
	}
	out = append(out, text...)
	return string(out)
}

// DetectWhitespaceTag reports the version mask advertised by a whitespace
// tag anywhere in text, and whether one was found. internal/session does
// not call it: Session.ReceiveAdvertisement takes an already-parsed mask.
func DetectWhitespaceTag(text string) (types.VersionMask, bool) {
	idx := indexOfBytes([]byte(text), whitespaceTagPrefix)
	if idx < 0 {
		return 0, false
	}
	rest := []byte(text)[idx+len(whitespaceTagPrefix):]

	var mask types.VersionMask
	for _, v := range queryVersionOrder {
		tag := whitespaceVersionTags[v]
		if len(rest) >= len(tag) && bytesEqual(rest[:len(tag)], tag) {
			mask = mask.WithVersion(v)
			rest = rest[len(tag):]
		}
	}
	return mask, mask != 0
}

func indexOfBytes(s, sub []byte) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if bytesEqual(s[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
