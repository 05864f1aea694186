package models

import "time"

// Profile mirrors the remote profile row, one per user id.
type Profile struct {
	ID           string
	StartDate    time.Time
	CurrentLevel string
	HasOnboarded bool
	AvatarURL    string
	Email        string
	UpdatedAt    time.Time
}

// UserState is the process-local progress state rebuilt from Profile on
// every reconciliation and edited by user commands.
type UserState struct {
	HasOnboarded bool
	StreakDays   int
	CurrentLevel string
	StartDate    time.Time
	Email        string
	AvatarURL    string
}

// Profile returns the row that persists s for user id.
func (s UserState) Profile(id string, now time.Time) Profile {
	return Profile{
		ID:           id,
		StartDate:    s.StartDate,
		CurrentLevel: s.CurrentLevel,
		HasOnboarded: s.HasOnboarded,
		AvatarURL:    s.AvatarURL,
		Email:        s.Email,
		UpdatedAt:    now,
	}
}
