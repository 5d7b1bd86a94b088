// Package commands defines the otrctl CLI: a small diagnostic tool over
// the OTRv4 protocol core, with no persistence of its own.
//
// Commands
//
//   - keygen           Generate a fresh identity and print its public material
//   - fingerprint      Print the fingerprint of a long-term/forging key pair
//   - profile          Build and print a Client Profile
//   - prekey-profile   Build and print a Prekey Profile
//   - query            Render a `?OTRv...?` query message
//   - whitespace-tag   Render a whitespace tag
//
// # Implementation
//
// The root command wires up structured logging before any subcommand
// runs. Unlike the teacher's ciphera CLI, there is no app.Wire dependency
// graph: this module keeps no identity store, relay client, or other
// stateful dependency (spec Non-goals), so every command operates on
// material it generates for itself.
package commands
