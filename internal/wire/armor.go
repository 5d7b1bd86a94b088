// Package wire implements the plaintext-boundary framing described in
// spec §6: ASCII armor for binary frames, the `?OTRv...?` query message,
// and the whitespace tag, generalizing the teacher's `encode.go` base64
// helper into a full envelope codec.
package wire

import (
	"encoding/base64"
	"fmt"
	"strings"

	"otr4/internal/domain"
)

// armorPrefix/armorSuffix delimit an ASCII-armored binary frame.
const (
	armorPrefix = "?OTR:"
	armorSuffix = "."
)

// Armor wraps a binary frame in the `?OTR:...` base64 envelope.
func Armor(frame []byte) string {
	return armorPrefix + base64.StdEncoding.EncodeToString(frame) + armorSuffix
}

// Unarmor strips the `?OTR:...` envelope and base64-decodes the frame.
func Unarmor(s string) ([]byte, error) {
	if !strings.HasPrefix(s, armorPrefix) || !strings.HasSuffix(s, armorSuffix) {
		return nil, fmt.Errorf("%w: not an otr armor record", domain.ErrMalformedFrame)
	}
	body := strings.TrimSuffix(strings.TrimPrefix(s, armorPrefix), armorSuffix)
	frame, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedFrame, err)
	}
	return frame, nil
}
