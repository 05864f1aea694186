package models

// AuthEvent is one of SignedIn, SignedOut or PasswordRecovery, pushed by the
// identity store whenever its view of the session changes.
type AuthEvent interface {
	authEvent()
	Name() string
}

type SignedIn struct {
	Session Session
}

type SignedOut struct{}

// PasswordRecovery is pushed when a recovery session is established.
type PasswordRecovery struct {
	Session Session
}

func (SignedIn) authEvent()         {}
func (SignedOut) authEvent()        {}
func (PasswordRecovery) authEvent() {}

func (SignedIn) Name() string         { return "SIGNED_IN" }
func (SignedOut) Name() string        { return "SIGNED_OUT" }
func (PasswordRecovery) Name() string { return "PASSWORD_RECOVERY" }
