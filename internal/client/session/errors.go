package session

import (
	"errors"
	"fmt"
)

var (
	ErrNotSignedIn     = errors.New("not signed in")
	ErrNoProfile       = errors.New("profile not loaded")
	ErrRecoveryPending = errors.New("password update pending")
	ErrNotConfirmed    = errors.New("relapse not confirmed")
	ErrNegativeDays    = errors.New("streak days must not be negative")
)

// CredentialError is returned by credential operations (sign-in, sign-up,
// password reset or update, OAuth start). The state does not change.
type CredentialError struct {
	Op  string
	Err error
}

func (e *CredentialError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *CredentialError) Unwrap() error { return e.Err }

// ProfileFetchError means reconciliation could not load or create the
// profile row.
type ProfileFetchError struct {
	UserID string
	Err    error
}

func (e *ProfileFetchError) Error() string {
	return fmt.Sprintf("fetch profile %s: %v", e.UserID, e.Err)
}
func (e *ProfileFetchError) Unwrap() error { return e.Err }

// TokenExchangeError means a deep-linked token pair did not yield a session.
type TokenExchangeError struct {
	Err error
}

func (e *TokenExchangeError) Error() string { return fmt.Sprintf("token exchange: %v", e.Err) }
func (e *TokenExchangeError) Unwrap() error { return e.Err }

// SyncError means pushing local state to the profile row failed.
type SyncError struct {
	UserID string
	Err    error
}

func (e *SyncError) Error() string { return fmt.Sprintf("sync profile %s: %v", e.UserID, e.Err) }
func (e *SyncError) Unwrap() error { return e.Err }
