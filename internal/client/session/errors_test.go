package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTypes_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"credential", &CredentialError{Op: "sign in", Err: cause}, "sign in: cause"},
		{"profile", &ProfileFetchError{UserID: "u1", Err: cause}, "fetch profile u1: cause"},
		{"exchange", &TokenExchangeError{Err: cause}, "token exchange: cause"},
		{"sync", &SyncError{UserID: "u1", Err: cause}, "sync profile u1: cause"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, cause)
			assert.EqualError(t, tt.err, tt.msg)
		})
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "unauthenticated", Unauthenticated.String())
	assert.Equal(t, "authenticating", Authenticating.String())
	assert.Equal(t, "authenticated", Authenticated.String())
	assert.Equal(t, "recovery_pending", RecoveryPending.String())
}
