// Package cli implements the interactive Inkwell command-line client:
//   - Sign in with a service access token
//   - Add / list / show / edit notes, archive and restore them
//   - Inspect sync status, retry rejected changes, clear the local cache
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, runREPL, and the statusLine prompt for details.
package cli
