package commands

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"otr4/internal/crypto"
	"otr4/internal/domain/types"
)

var (
	longTermPubB64 string
	forgingPubB64  string
)

// fingerprintCmd prints the fingerprint for a pair of long-term/forging
// public keys, generalizing the teacher's fingerprintCmd (which hashed a
// single stored X25519 key) to the two-key hash spec 4.A defines. With no
// keys given it generates a fresh identity first, so the command is always
// runnable standalone.
func fingerprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the fingerprint of a long-term/forging key pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var pub, forging types.ECDHPublic
			if longTermPubB64 == "" && forgingPubB64 == "" {
				id, err := generateIdentity()
				if err != nil {
					return fmt.Errorf("generating identity: %w", err)
				}
				pub, forging = id.LongTerm.Pub, id.Forging.Pub
			} else {
				var err error
				if pub, err = decodeECDHPublic(longTermPubB64); err != nil {
					return fmt.Errorf("--long-term-pub: %w", err)
				}
				if forging, err = decodeECDHPublic(forgingPubB64); err != nil {
					return fmt.Errorf("--forging-pub: %w", err)
				}
			}
			fmt.Println(crypto.Fingerprint(pub, forging))
			return nil
		},
	}
	cmd.Flags().StringVar(&longTermPubB64, "long-term-pub", "", "base64-encoded long-term public key")
	cmd.Flags().StringVar(&forgingPubB64, "forging-pub", "", "base64-encoded forging public key")
	return cmd
}

func decodeECDHPublic(s string) (types.ECDHPublic, error) {
	var out types.ECDHPublic
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(b) != len(out) {
		return out, fmt.Errorf("expected %d bytes, got %d", len(out), len(b))
	}
	copy(out[:], b)
	return out, nil
}
