// Package services contains application services of the noxus client:
// credential flows against the identity store, profile reconciliation,
// profile sync and avatar upload. The session controller composes them.
package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/noxus/internal/client/client"
	"github.com/dmitrijs2005/noxus/internal/client/deeplink"
	"github.com/dmitrijs2005/noxus/internal/client/models"
	"github.com/dmitrijs2005/noxus/internal/common"
)

// AuthService defines the credential operations of the client.
//
// Contract:
//   - SignIn / SignUp: email+password; SignUp signs the new user in.
//   - ResetPassword / OAuthURL: start out-of-band flows whose result comes
//     back as a deep link to the app scheme.
//   - ExchangeTokens: turn a deep-linked token pair into a session.
//   - UpdatePassword: set a new password for the current session.
//
// Input validation failures wrap client.ErrInvalidArgument.
type AuthService interface {
	Session(ctx context.Context) (*models.Session, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignUp(ctx context.Context, email, password string) (*models.Session, error)
	ResetPassword(ctx context.Context, email string) error
	OAuthURL(ctx context.Context, provider string) (string, error)
	ExchangeTokens(ctx context.Context, accessToken, refreshToken string) (*models.Session, error)
	UpdatePassword(ctx context.Context, password string) error
	SignOut(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client    client.Client
	appScheme string
}

// NewAuthService builds an AuthService whose redirect URLs point back at
// appScheme.
func NewAuthService(c client.Client, appScheme string) AuthService {
	return &authService{client: c, appScheme: appScheme}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return "", fmt.Errorf("%w: invalid email %q", client.ErrInvalidArgument, email)
	}
	return email, nil
}

func checkPassword(password string) error {
	if len(password) < common.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", client.ErrInvalidArgument, common.MinPasswordLength)
	}
	return nil
}

func (a *authService) Session(ctx context.Context) (*models.Session, error) {
	return a.client.GetSession(ctx)
}

func (a *authService) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", client.ErrInvalidArgument)
	}
	return a.client.SignInWithPassword(ctx, email, password)
}

func (a *authService) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}
	if _, err := a.client.SignUp(ctx, email, password); err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	return a.client.SignInWithPassword(ctx, email, password)
}

func (a *authService) ResetPassword(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	return a.client.ResetPasswordForEmail(ctx, email, deeplink.RecoveryRedirect(a.appScheme))
}

func (a *authService) OAuthURL(ctx context.Context, provider string) (string, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return "", fmt.Errorf("%w: provider is required", client.ErrInvalidArgument)
	}
	return a.client.SignInWithOAuth(ctx, provider, deeplink.OAuthRedirect(a.appScheme))
}

func (a *authService) ExchangeTokens(ctx context.Context, accessToken, refreshToken string) (*models.Session, error) {
	return a.client.SetSession(ctx, accessToken, refreshToken)
}

func (a *authService) UpdatePassword(ctx context.Context, password string) error {
	if err := checkPassword(password); err != nil {
		return err
	}
	return a.client.UpdateUser(ctx, password)
}

func (a *authService) SignOut(ctx context.Context) error {
	return a.client.SignOut(ctx)
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
