package session

import "github.com/dmitrijs2005/noxus/internal/client/models"

type State int

const (
	Unauthenticated State = iota
	// Authenticating: a session is present, the profile is not reconciled yet.
	Authenticating
	Authenticated
	// RecoveryPending: a password reset is being completed. Navigation away
	// from the password-update view, streak edits and profile sync are
	// suppressed.
	RecoveryPending
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case RecoveryPending:
		return "recovery_pending"
	default:
		return "unauthenticated"
	}
}

// Snapshot is a copy of the controller state for presentation.
type Snapshot struct {
	State   State
	View    models.View
	Email   string
	UserID  string
	User    *models.UserState
	Ready   bool
	Loading bool
}
