package interfaces

import (
	"context"

	domaintypes "otr4/internal/domain/types"
)

// Host is the capability set a session construction borrows from its
// embedding application (spec 6, "Host callbacks consumed by the core").
// Every operation is total and synchronous; hosts that need to suspend
// marshal through their own queue before returning.
type Host interface {
	// CreatePrivKeyV4 and CreateForgingKey mint fresh long-term Ed448
	// signing keys; CreateSharedPrekey mints a fresh shared-prekey seed.
	// Each has a Load counterpart returning ok=false when absent.
	CreatePrivKeyV4(ctx context.Context) (domaintypes.SigningKeyPair, error)
	LoadPrivKeyV4(ctx context.Context) (key domaintypes.SigningKeyPair, ok bool, err error)

	CreateForgingKey(ctx context.Context) (domaintypes.SigningKeyPair, error)
	LoadForgingKey(ctx context.Context) (key domaintypes.SigningKeyPair, ok bool, err error)

	CreateSharedPrekey(ctx context.Context) (seed [57]byte, err error)
	LoadSharedPrekey(ctx context.Context) (seed [57]byte, ok bool, err error)

	// CreateClientProfile and CreatePrekeyProfile are invoked lazily
	// whenever the core finds the cached profile missing or expired.
	CreateClientProfile(ctx context.Context, id domaintypes.Identity, allowed domaintypes.VersionMask) (domaintypes.ClientProfile, error)
	CreatePrekeyProfile(ctx context.Context, id domaintypes.Identity) (domaintypes.PrekeyProfile, error)

	// GetAccountAndProtocol supplies the two identifiers phi binds in.
	GetAccountAndProtocol(ctx context.Context) (account, protocol string, err error)

	// GetSharedSessionState supplies phi's full contents: the two
	// identifiers plus an optional shared password.
	GetSharedSessionState(ctx context.Context, peerAccount string) (domaintypes.Phi, error)

	// WriteExpiredClientProfile and WriteExpiredPrekeyProfile retain an
	// expired profile for audit/debugging; the core never reads it back.
	WriteExpiredClientProfile(ctx context.Context, p domaintypes.ClientProfile) error
	WriteExpiredPrekeyProfile(ctx context.Context, p domaintypes.PrekeyProfile) error
}
