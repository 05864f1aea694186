package client

import (
	"context"

	"github.com/dmitrijs2005/noxus/internal/client/models"
)

// Client is the Identity & Profile Store as seen by the session controller.
type Client interface {
	// GetSession returns the current session, refreshing it when the access
	// token has expired. It returns (nil, nil) when there is none.
	GetSession(ctx context.Context) (*models.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error)
	SignUp(ctx context.Context, email, password string) (*models.User, error)
	// SignInWithOAuth returns the provider URL the user has to open.
	SignInWithOAuth(ctx context.Context, provider, redirectTo string) (string, error)
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
	UpdateUser(ctx context.Context, password string) error
	// SetSession exchanges a token pair delivered out of band for a session.
	SetSession(ctx context.Context, accessToken, refreshToken string) (*models.Session, error)
	SignOut(ctx context.Context) error

	// Subscribe delivers auth events until the returned cancel func is called.
	Subscribe() (<-chan models.AuthEvent, func())

	// GetProfile returns ErrNotFound when the user has no profile row.
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	InsertProfile(ctx context.Context, p models.Profile) (*models.Profile, error)
	UpsertProfile(ctx context.Context, p models.Profile) (*models.Profile, error)

	PresignAvatarUpload(ctx context.Context, ext string) (key, url string, err error)
	SetAvatar(ctx context.Context, key string) (*models.Profile, error)

	Ping(ctx context.Context) error
	Close() error
}
