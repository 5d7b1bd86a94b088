package message

import (
	"encoding/binary"
	"fmt"

	"otr4/internal/domain"
	"otr4/internal/domain/types"
	"otr4/internal/protocol/ratchet"
)

// tlvHeaderLen is the on-wire size of a TLV's type+length prefix.
const tlvHeaderLen = 4

// paddingBlock is the boundary the padding TLV rounds the encoded TLV
// chain up to (spec 4.F padding policy: close the gap to the next
// 256-byte boundary with a minimum-length padding TLV).
const paddingBlock = 256

// EncodeTLVs serializes a chain of TLV records back-to-back as
// type(2, BE) | length(2, BE) | value, in order (spec 4.F).
func EncodeTLVs(tlvs []types.TLV) []byte {
	out := make([]byte, 0, len(tlvs)*tlvHeaderLen)
	for _, t := range tlvs {
		out = binary.BigEndian.AppendUint16(out, t.Type)
		out = binary.BigEndian.AppendUint16(out, uint16(len(t.Value)))
		out = append(out, t.Value...)
	}
	return out
}

// DecodeTLVs parses a serialized TLV chain, returning an error wrapping
// domain.ErrMalformedFrame if the chain is truncated or a length field
// overruns the remaining bytes.
func DecodeTLVs(b []byte) ([]types.TLV, error) {
	var out []types.TLV
	for len(b) > 0 {
		if len(b) < tlvHeaderLen {
			return nil, fmt.Errorf("%w: truncated tlv header", domain.ErrMalformedFrame)
		}
		typ := binary.BigEndian.Uint16(b[0:2])
		length := binary.BigEndian.Uint16(b[2:4])
		b = b[tlvHeaderLen:]
		if int(length) > len(b) {
			return nil, fmt.Errorf("%w: tlv length overruns payload", domain.ErrMalformedFrame)
		}
		value := make([]byte, length)
		copy(value, b[:length])
		out = append(out, types.TLV{Type: typ, Value: value})
		b = b[length:]
	}
	return out, nil
}

// Pad appends a minimum-length padding TLV (type 0) closing the gap to the
// next 256-byte boundary, unless the chain already lands exactly on one
// (spec 4.F padding policy: "if ... shorter than the next 256-byte
// boundary, a single padding TLV is appended ... whose 2+2+len closes the
// gap").
func Pad(tlvs []types.TLV) []types.TLV {
	encoded := EncodeTLVs(tlvs)
	remainder := len(encoded) % paddingBlock
	if remainder == 0 {
		return tlvs
	}
	padLen := paddingBlock - remainder - tlvHeaderLen
	if padLen < 0 {
		padLen += paddingBlock
	}
	return append(tlvs, types.TLV{Type: types.TLVPadding, Value: make([]byte, padLen)})
}

// StripPadding drops every padding TLV (type 0) from a decoded chain,
// returning the remaining application TLVs in order.
func StripPadding(tlvs []types.TLV) []types.TLV {
	out := tlvs[:0:0]
	for _, t := range tlvs {
		if t.Type == types.TLVPadding {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Send encrypts tlvs (after padding) into a full wire DataMessage, ready
// for ASCII-armored transport, advancing st's send-side ratchet.
func Send(st *types.RatchetState, senderTag, receiverTag types.InstanceTag, flags byte, ad []byte, tlvs []types.TLV) (types.DataMessage, error) {
	plaintext := EncodeTLVs(Pad(tlvs))
	header, ciphertext, mac, err := ratchet.Encrypt(st, senderTag, receiverTag, flags, ad, plaintext)
	if err != nil {
		return types.DataMessage{}, err
	}

	revealed := st.OldMACKeys
	st.OldMACKeys = nil

	return types.DataMessage{
		Header:           header,
		EncryptedPayload: ciphertext,
		MAC:              mac,
		RevealedMACKeys:  revealed,
	}, nil
}

// Receive authenticates and decrypts a DataMessage, returning the
// application TLVs (padding stripped) carried in its payload.
func Receive(st *types.RatchetState, ad []byte, msg types.DataMessage) ([]types.TLV, error) {
	plaintext, err := ratchet.Decrypt(st, ad, msg.Header, msg.EncryptedPayload, msg.MAC)
	if err != nil {
		return nil, err
	}
	tlvs, err := DecodeTLVs(plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecryptionFailure, err)
	}
	return StripPadding(tlvs), nil
}
