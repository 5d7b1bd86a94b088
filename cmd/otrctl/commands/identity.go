package commands

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"otr4/internal/crypto"
	"otr4/internal/domain/types"
)

// parseVersionMask turns a digit string such as "4" or "34" into the mask
// the profile/query/whitespace-tag layers expect.
func parseVersionMask(s string) (types.VersionMask, error) {
	var mask types.VersionMask
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid version digit %q", c)
		}
		mask = mask.WithVersion(types.Version(c - '0'))
	}
	return mask, nil
}

// randomInstanceTag draws a tag uniformly from the valid range (spec 4.A:
// instance tags below 0x100 are reserved).
func randomInstanceTag() (types.InstanceTag, error) {
	for {
		var buf [4]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return 0, err
		}
		tag := types.InstanceTag(binary.BigEndian.Uint32(buf[:]))
		if tag.Valid() {
			return tag, nil
		}
	}
}

// generateIdentity builds a fresh, in-memory-only Identity: otrctl never
// persists key material, so every diagnostic command starts from scratch
// unless a future flag feeds it existing keys.
func generateIdentity() (types.Identity, error) {
	tag, err := randomInstanceTag()
	if err != nil {
		return types.Identity{}, err
	}
	longTerm, err := crypto.GenerateSigningKey()
	if err != nil {
		return types.Identity{}, err
	}
	forging, err := crypto.GenerateSigningKey()
	if err != nil {
		return types.Identity{}, err
	}
	var seed [57]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return types.Identity{}, err
	}
	return types.Identity{
		InstanceTag: tag,
		LongTerm:    longTerm,
		Forging:     forging,
		PrekeySeed:  seed,
	}, nil
}
