// Package cli provides the interactive accountkeeper command-line client.
//
// It wires configuration, the users file, the account and recovery services,
// and a REPL. Typical flow: register an account, log in with username or
// email, and recover a forgotten password by answering the identity
// questions (full name and birthdate).
//
// Key features:
//   - Register / Login / Logout
//   - Forgot password: identify by email, verify identity, set a new password
//   - List registered users (without password hashes)
//
// The REPL is started via App.Run(ctx), which blocks until the user exits
// or the users file can no longer be written.
package cli
