// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account of the identity store. PasswordHash is empty for
// accounts created through an OAuth provider.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
