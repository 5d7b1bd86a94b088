package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"otr4/internal/crypto"
)

// keygenCmd generates a fresh long-term identity (long-term and forging
// Ed448 keypairs plus a random instance tag) and prints its public
// material. Nothing is persisted: this module carries no file-based
// identity store (spec Non-goals), so every run starts from scratch.
func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a fresh identity and print its public material",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := generateIdentity()
			if err != nil {
				return fmt.Errorf("generating identity: %w", err)
			}
			fmt.Printf("Instance tag:  %#08x\n", uint32(id.InstanceTag))
			fmt.Printf("Long-term pub: %s\n", crypto.B64(id.LongTerm.Pub[:]))
			fmt.Printf("Forging pub:   %s\n", crypto.B64(id.Forging.Pub[:]))
			fmt.Printf("Fingerprint:   %s\n", crypto.Fingerprint(id.LongTerm.Pub, id.Forging.Pub))
			return nil
		},
	}
}
