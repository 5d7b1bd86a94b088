// Package message implements OTRv4's data message layer: the TLV chain
// carried inside the encrypted payload, the 256-byte padding policy, and
// Send/Receive wrappers around the ratchet that stamp the wire header
// fields and manage the old-MAC-key reveal queue (spec 4.F).
package message
