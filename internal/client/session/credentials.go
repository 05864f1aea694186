package session

import (
	"context"

	"github.com/dmitrijs2005/noxus/internal/client/models"
)

func (c *Controller) SignIn(ctx context.Context, email, password string) error {
	sess, err := c.auth.SignIn(ctx, email, password)
	if err != nil {
		return &CredentialError{Op: "sign in", Err: err}
	}
	return c.signedIn(ctx, *sess)
}

// SignUp creates the account and signs it in.
func (c *Controller) SignUp(ctx context.Context, email, password string) error {
	sess, err := c.auth.SignUp(ctx, email, password)
	if err != nil {
		return &CredentialError{Op: "sign up", Err: err}
	}
	return c.signedIn(ctx, *sess)
}

// ResetPassword asks the store to mail a recovery link for email.
func (c *Controller) ResetPassword(ctx context.Context, email string) error {
	if err := c.auth.ResetPassword(ctx, email); err != nil {
		return &CredentialError{Op: "reset password", Err: err}
	}
	return nil
}

// OAuthURL returns the provider page that completes with an OAuth deep link.
func (c *Controller) OAuthURL(ctx context.Context, provider string) (string, error) {
	url, err := c.auth.OAuthURL(ctx, provider)
	if err != nil {
		return "", &CredentialError{Op: "oauth", Err: err}
	}
	return url, nil
}

// UpdatePassword sets a new password for the current session. Completing
// it leaves RecoveryPending and lands on the dashboard.
func (c *Controller) UpdatePassword(ctx context.Context, password string) error {
	c.mu.Lock()
	var sess models.Session
	has := c.session != nil
	if has {
		sess = *c.session
	}
	c.mu.Unlock()

	if !has {
		return &CredentialError{Op: "update password", Err: ErrNotSignedIn}
	}
	if err := c.auth.UpdatePassword(ctx, password); err != nil {
		return &CredentialError{Op: "update password", Err: err}
	}

	sess.Recovery = false
	c.update(func() {
		c.setSessionLocked(sess)
		if c.state == RecoveryPending {
			c.state = Authenticating
		}
	})
	return c.reconcile(ctx, sess, true)
}

// SignOut ends the session. Local state is discarded even when the store
// cannot be reached.
func (c *Controller) SignOut(ctx context.Context) error {
	if err := c.auth.SignOut(ctx); err != nil {
		c.logger.Warn(ctx, "remote sign out failed", "error", err)
	}
	c.update(c.clearLocked)
	return nil
}
