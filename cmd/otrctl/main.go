// The entrypoint for the otrctl diagnostic CLI.
package main

import (
	"log"

	"otr4/cmd/otrctl/commands"
)

// Initialises and executes the command hierarchy.
func main() {
	if err := commands.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
