package models

import "time"

// Profile is the per-user progress row; ID equals the owning user's id.
type Profile struct {
	ID           string
	StartDate    time.Time
	CurrentLevel string
	HasOnboarded bool
	AvatarURL    string
	Email        string
	UpdatedAt    time.Time
}
