// Package client is the noxus client's view of the Identity & Profile Store.
//
// # Overview
//
// The package provides:
//  1. The Client interface the session controller consumes: session
//     issuance and credential exchange, an auth event subscription, the
//     profile row (get, insert, upsert) and avatar upload.
//  2. GRPCClient, its gRPC implementation. It keeps the current session in
//     memory and in the local metadata store, attaches the access token to
//     every call, refreshes an expired access token once and retries, and
//     pushes SignedIn, PasswordRecovery and SignedOut events to subscribers.
//  3. InitDatabase and RunMigrations, which open the local SQLite file and
//     apply the embedded goose migrations.
//
// # Error Handling
//
// gRPC status codes are mapped to sentinel errors that callers match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrAlreadyExists,
// ErrInvalidArgument, ErrNotFound and ErrNoSession.
package client
