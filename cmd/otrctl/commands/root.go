package commands

import (
	"fmt"
	"log"
	"log/slog"

	"github.com/spf13/cobra"
)

var (
	// versions is shared across the profile/query/whitespace-tag commands:
	// an ASCII digit string such as "4" or "34", matching
	// types.ClientProfile.Versions.
	versions string
	verbose  bool
)

// Execute initialises diagnostic logging and runs the root cobra command.
func Execute() error {
	root := &cobra.Command{
		Use:   "otrctl",
		Short: "Diagnostic CLI for the OTRv4 protocol core",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(
				slog.NewTextHandler(log.Writer(), &slog.HandlerOptions{Level: level}),
			))
			if versions == "" {
				return fmt.Errorf("--versions must not be empty")
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(
		&versions,
		"versions",
		"4",
		`allowed protocol versions, e.g. "4" or "34"`,
	)
	root.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"enable debug logging",
	)

	root.AddCommand(
		keygenCmd(),
		fingerprintCmd(),
		profileCmd(),
		prekeyProfileCmd(),
		queryCmd(),
		whitespaceTagCmd(),
	)

	return root.Execute()
}
