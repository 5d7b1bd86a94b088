package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"otr4/internal/crypto"
	"otr4/internal/protocol/profile"
)

// prekeyProfileCmd builds and signs a fresh Prekey Profile, the
// publishable descriptor that backs the non-interactive DAKE flight
// (spec 4.D).
func prekeyProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prekey-profile",
		Short: "Build a Prekey Profile for a fresh identity and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := generateIdentity()
			if err != nil {
				return fmt.Errorf("generating identity: %w", err)
			}
			now := time.Now()
			p, err := profile.BuildPrekeyProfile(id, now, profile.DefaultLifetime)
			if err != nil {
				return fmt.Errorf("building prekey profile: %w", err)
			}
			if err := profile.VerifyPrekeyProfile(p, id.LongTerm.Pub, id.InstanceTag, now); err != nil {
				return fmt.Errorf("self-verification failed: %w", err)
			}

			fmt.Printf("Instance tag:    %#08x\n", uint32(p.InstanceTag))
			fmt.Printf("Expires:         %s\n", time.Unix(p.Expires, 0).UTC())
			fmt.Printf("Shared prekey:   %s\n", crypto.B64(p.SharedPrekeyPub[:]))
			fmt.Printf("Canonical:       %s\n", crypto.B64(p.CanonicalBody()))
			fmt.Printf("Signature:       %s\n", crypto.B64(p.Signature[:]))
			return nil
		},
	}
}
