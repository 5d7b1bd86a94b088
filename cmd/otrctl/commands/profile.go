package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"otr4/internal/crypto"
	"otr4/internal/protocol/profile"
)

// profileCmd builds and signs a fresh Client Profile, then prints its
// canonical body, signature, and derived fingerprint, exercising the
// profile package the way `ciphera init` exercises key generation.
func profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Build a Client Profile for a fresh identity and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mask, err := parseVersionMask(versions)
			if err != nil {
				return fmt.Errorf("--versions: %w", err)
			}
			id, err := generateIdentity()
			if err != nil {
				return fmt.Errorf("generating identity: %w", err)
			}
			now := time.Now()
			p, err := profile.BuildClientProfile(id, mask, now, profile.DefaultLifetime)
			if err != nil {
				return fmt.Errorf("building client profile: %w", err)
			}
			if err := profile.VerifyClientProfile(p, id.InstanceTag, now); err != nil {
				return fmt.Errorf("self-verification failed: %w", err)
			}

			fmt.Printf("Instance tag: %#08x\n", uint32(p.InstanceTag))
			fmt.Printf("Versions:     %q\n", p.Versions)
			fmt.Printf("Expires:      %s\n", time.Unix(p.Expires, 0).UTC())
			fmt.Printf("Canonical:    %s\n", crypto.B64(p.CanonicalBody()))
			fmt.Printf("Signature:    %s\n", crypto.B64(p.Signature[:]))
			fmt.Printf("Fingerprint:  %s\n", crypto.Fingerprint(id.LongTerm.Pub, id.Forging.Pub))
			return nil
		},
	}
}
