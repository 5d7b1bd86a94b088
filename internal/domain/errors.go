package domain

import "errors"

// Error taxonomy (spec 7). Kinds only; callers switch on these with
// errors.Is, wrapped context is added with fmt.Errorf("...: %w", err) at
// each call site.
var (
	// ErrMalformedFrame: parse failure, length mismatch, bad base64.
	// Silently dropped; session state unchanged.
	ErrMalformedFrame = errors.New("otr4: malformed frame")

	// ErrUnknownVersion: unsupported version field. Drop.
	ErrUnknownVersion = errors.New("otr4: unknown version")

	// ErrInstanceTagMismatch: drop without advancing state.
	ErrInstanceTagMismatch = errors.New("otr4: instance tag mismatch")

	// ErrInvalidProfile: signature/expiry/point-validity failure during
	// DAKE. Handshake aborted; session returns to START.
	ErrInvalidProfile = errors.New("otr4: invalid profile")

	// ErrAuthFailure: ring signature or data-MAC check failed. For DAKE:
	// abort. For data: drop message.
	ErrAuthFailure = errors.New("otr4: authentication failure")

	// ErrOutOfOrderTooFar: receiving j exceeds max_skip beyond the
	// current chain. Drop message; surface a warning.
	ErrOutOfOrderTooFar = errors.New("otr4: message out of order beyond max_skip")

	// ErrDecryptionFailure: MAC passed but payload decode (TLV parse)
	// failed. Drop; warn.
	ErrDecryptionFailure = errors.New("otr4: decryption/decode failure")

	// ErrStateError: operation illegal in current state (e.g. send in
	// START). Return a user-visible error, no state change.
	ErrStateError = errors.New("otr4: illegal operation for current state")

	// ErrPolicyError: allowed versions mask excludes the offered
	// version. Return to application.
	ErrPolicyError = errors.New("otr4: version excluded by policy")
)
