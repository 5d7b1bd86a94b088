package wire

import "otr4/internal/domain/types"

// queryVersionOrder lists supported versions from most to least preferred,
// matching the teacher's client-facing ordering and spec 8 S1 ("4
// preferred, 3 accepted" renders as "?OTRv43?", not "?OTRv34?").
var queryVersionOrder = []types.Version{types.Version4, types.Version3}

// BuildQueryMessage renders the `?OTRv...?` tag for the versions set in
// mask, followed by a space and text (spec §6, spec 8 S1).
func BuildQueryMessage(mask types.VersionMask, text string) string {
	out := "?OTRv"
	for _, v := range queryVersionOrder {
		if mask.Allows(v) {
			out += string(rune('0' + v))
		}
	}
	out += "? " + text
	return out
}

// ParseQueryMessage reports the version mask advertised by a `?OTRv...?`
// tag found anywhere in text, and whether one was found.
func ParseQueryMessage(text string) (types.VersionMask, bool) {
	idx := indexOf(text, "?OTRv")
	if idx < 0 {
		return 0, false
	}
	rest := text[idx+len("?OTRv"):]
	var mask types.VersionMask
	found := false
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if c == '?' {
			return mask, found
		}
		if c < '0' || c > '9' {
			return 0, false
		}
		mask = mask.WithVersion(types.Version(c - '0'))
		found = true
	}
	return 0, false
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
