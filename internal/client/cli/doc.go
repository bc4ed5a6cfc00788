// Package cli provides the interactive nutrilog command-line client.
//
// It wires configuration, the local credential store, the API client, and an
// interactive REPL over the session facade. Typical flow: restore a previous
// session from disk, then execute user commands until exit.
//
// Key features:
//   - Register / Login / Logout
//   - Show and update the user profile
//   - Change password, delete account
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
