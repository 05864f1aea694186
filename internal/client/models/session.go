// Package models defines client-side data models of the noxus client:
// the session held for the signed-in user, the remote profile row, the
// locally derived user state and the events pushed by the identity store.
package models

import "time"

type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Session is an authenticated principal as issued by the identity store.
// Tokens are opaque to the client.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`

	// Recovery is set for sessions minted by a password-reset link.
	Recovery bool `json:"recovery,omitempty"`
}

// Expired reports whether the access token is past its expiry at now.
// A session without an expiry never expires locally.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
