// Package cli provides the interactive FitLife command-line client.
//
// It wires configuration, the local record store, the identity API client,
// and an interactive REPL that drives the session container. Typical flow:
// hydrate the persisted session, then execute user commands until exit.
//
// Key features:
//   - Signup / Login / Logout
//   - Show and update the member profile
//   - Upload a profile photo with a progress readout
//   - Three-step password reset (email, OTP, new password)
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
