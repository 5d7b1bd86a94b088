package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"otr4/internal/wire"
)

var whitespaceText string

// whitespaceTagCmd renders the whitespace tag advertising --versions. The
// tag is pure tab/space bytes, so it's also printed as a quoted Go string
// to make the otherwise-invisible bytes visible on a terminal.
func whitespaceTagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whitespace-tag",
		Short: "Render a whitespace tag advertising --versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mask, err := parseVersionMask(versions)
			if err != nil {
				return fmt.Errorf("--versions: %w", err)
			}
			tag := wire.BuildWhitespaceTag(mask, whitespaceText)
			fmt.Printf("%q\n", tag)
			return nil
		},
	}
	cmd.Flags().StringVar(&whitespaceText, "text", "", "trailing human-readable text")
	return cmd
}
