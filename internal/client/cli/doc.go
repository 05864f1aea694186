// Package cli provides the interactive noxus client.
//
// It wires configuration, the local session store, the identity store
// client and the session controller to a line-based REPL. A background
// listener accepts deep links forwarded by `noxus-client open <url>`, and a
// watcher reports whether the identity store is reachable.
//
// Commands:
//   - signup / signin / signout, reset, oauth, password
//   - link <url> to apply a recovery or OAuth callback by hand
//   - show, levels, go <view>
//   - days <n>, date <YYYY-MM-DD>, relapse, onboard, avatar <path>
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
