package models

import "time"

// RefreshToken is an opaque, single-use token that mints a new session.
// Recovery tokens mint recovery sessions.
type RefreshToken struct {
	UserID   string
	Token    string
	Expires  time.Time
	Recovery bool
}
