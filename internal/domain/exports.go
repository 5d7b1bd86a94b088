package domain

import (
	interfaces "otr4/internal/domain/interfaces"
	types "otr4/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	InstanceTag     = types.InstanceTag
	Fingerprint     = types.Fingerprint
	Version         = types.Version
	VersionMask     = types.VersionMask
	ConversationID  = types.ConversationID

	ECDHPublic     = types.ECDHPublic
	ECDHPrivate    = types.ECDHPrivate
	ECDHKeyPair    = types.ECDHKeyPair
	DHPublic       = types.DHPublic
	DHPrivate      = types.DHPrivate
	DHKeyPair      = types.DHKeyPair
	SigningKeyPair = types.SigningKeyPair

	Identity = types.Identity

	RingSignature = types.RingSignature

	ClientProfile  = types.ClientProfile
	PrekeyProfile  = types.PrekeyProfile
	PrekeyMessage  = types.PrekeyMessage
	PrekeyEnsemble = types.PrekeyEnsemble

	Phi             = types.Phi
	IdentityMessage = types.IdentityMessage
	AuthRMessage    = types.AuthRMessage
	AuthIMessage    = types.AuthIMessage
	DAKE3Message    = types.DAKE3Message

	TLV               = types.TLV
	DataMessageHeader = types.DataMessageHeader
	DataMessage       = types.DataMessage

	SkippedKeyID = types.SkippedKeyID
	SkippedKey   = types.SkippedKey
	RatchetState = types.RatchetState
	Conversation = types.Conversation
)

const (
	Version3 = types.Version3
	Version4 = types.Version4

	TLVPadding           = types.TLVPadding
	TLVDisconnect        = types.TLVDisconnect
	TLVSMP1              = types.TLVSMP1
	TLVSMP2              = types.TLVSMP2
	TLVSMP3              = types.TLVSMP3
	TLVSMP4              = types.TLVSMP4
	TLVSMPAbort          = types.TLVSMPAbort
	TLVExtraSymmetricKey = types.TLVExtraSymmetricKey
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	Host = interfaces.Host
)
