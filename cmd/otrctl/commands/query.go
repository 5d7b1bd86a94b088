package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"otr4/internal/wire"
)

var queryText string

// queryCmd renders the `?OTRv...?` query message for --versions,
// exercising internal/wire the way spec 8 S1 is tested.
func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Render a query message advertising --versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mask, err := parseVersionMask(versions)
			if err != nil {
				return fmt.Errorf("--versions: %w", err)
			}
			fmt.Println(wire.BuildQueryMessage(mask, queryText))
			return nil
		},
	}
	cmd.Flags().StringVar(&queryText, "text", "", "trailing human-readable text")
	return cmd
}
