// Package services contains server-side business logic: accounts and
// sessions, profiles, avatar storage and OAuth sign-in.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/noxus/internal/common"
	"github.com/dmitrijs2005/noxus/internal/cryptox"
	"github.com/dmitrijs2005/noxus/internal/dbx"
	"github.com/dmitrijs2005/noxus/internal/logging"
	"github.com/dmitrijs2005/noxus/internal/server/auth"
	"github.com/dmitrijs2005/noxus/internal/server/config"
	"github.com/dmitrijs2005/noxus/internal/server/models"
	"github.com/dmitrijs2005/noxus/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// Session is an access/refresh token pair issued for a user.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         models.User
	Recovery     bool
}

// UserService provides account and session operations:
//   - SignUp / SignIn: email and password accounts
//   - Refresh / SignOut: refresh token rotation and revocation
//   - ResetPassword / UpdatePassword: the recovery flow
type UserService struct {
	db                            *sql.DB
	repomanager                   repomanager.RepositoryManager
	mailer                        Mailer
	logger                        logging.Logger
	jwtSecret                     []byte
	appScheme                     string
	accessTokenValidityDuration   time.Duration
	refreshTokenValidityDuration  time.Duration
	recoveryTokenValidityDuration time.Duration
	hashParams                    cryptox.Params
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, mailer Mailer, l logging.Logger) *UserService {
	return &UserService{
		db:                            db,
		repomanager:                   m,
		mailer:                        mailer,
		logger:                        l.With("module", "user_service"),
		jwtSecret:                     []byte(cfg.SecretKey),
		appScheme:                     cfg.AppScheme,
		accessTokenValidityDuration:   cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration:  cfg.RefreshTokenValidityDuration,
		recoveryTokenValidityDuration: cfg.RecoveryTokenValidityDuration,
		hashParams:                    cryptox.DefaultParams,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email %q", common.ErrorValidation, email)
	}
	return email, nil
}

func checkPassword(password string) error {
	if len(password) < common.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, common.MinPasswordLength)
	}
	return nil
}

// checkRedirect accepts only URLs in the app's own scheme.
func checkRedirect(redirectTo, scheme string) error {
	u, err := url.Parse(redirectTo)
	if err != nil || !strings.EqualFold(u.Scheme, scheme) {
		return fmt.Errorf("%w: %q", common.ErrorInvalidRedirect, redirectTo)
	}
	return nil
}

// SignUp creates an email and password account. It creates no profile.
func (s *UserService) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	hash, err := cryptox.HashPassword(password, s.hashParams)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{ID: uuid.NewString(), Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

func (s *UserService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	// OAuth-only accounts have no password
	if user.PasswordHash == "" {
		return nil, common.ErrorUnauthorized
	}
	ok, err := cryptox.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, common.ErrorUnauthorized
	}

	return s.issueSession(ctx, s.db, user, false)
}

// Refresh rotates refreshToken: the presented token is consumed and a new
// pair is issued, keeping the recovery flag of the old one.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}

	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*Session, error) {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return nil, fmt.Errorf("error deleting refresh token: %w", err)
		}

		user, err := s.repomanager.Users(tx).GetByID(ctx, token.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.ErrorUnauthorized
			}
			return nil, fmt.Errorf("error loading user: %w", err)
		}

		return s.issueSession(ctx, tx, user, token.Recovery)
	})
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}

// SignOut revokes every refresh token of the user owning refreshToken.
// Unknown tokens are not an error.
func (s *UserService) SignOut(ctx context.Context, refreshToken string) error {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return fmt.Errorf("error searching refresh token: %w", err)
	}
	return repo.DeleteForUser(ctx, token.UserID)
}

// ResetPassword mails a recovery link for email. Unknown addresses are
// not disclosed to the caller.
func (s *UserService) ResetPassword(ctx context.Context, email, redirectTo string) error {
	if err := checkRedirect(redirectTo, s.appScheme); err != nil {
		return err
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Info(ctx, "password reset for unknown email")
			return nil
		}
		return fmt.Errorf("error loading user: %w", err)
	}

	sess, err := s.issueSession(ctx, s.db, user, true)
	if err != nil {
		return err
	}

	link := SessionRedirect(redirectTo, sess, time.Now())
	if err := s.mailer.Send(ctx, email, "Reset your password",
		"Open this link on your device to choose a new password:\n\n"+link+"\n"); err != nil {
		return fmt.Errorf("error sending recovery email: %w", err)
	}
	return nil
}

// UpdatePassword sets a new password for userID. Pending recovery tokens
// of the user become ordinary tokens.
func (s *UserService) UpdatePassword(ctx context.Context, userID, password string) error {
	if err := checkPassword(password); err != nil {
		return err
	}
	hash, err := cryptox.HashPassword(password, s.hashParams)
	if err != nil {
		return common.ErrorInternal
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).UpdatePassword(ctx, userID, hash); err != nil {
			return err
		}
		return s.repomanager.RefreshTokens(tx).ClearRecovery(ctx, userID)
	})
}

// FindOrCreateByEmail returns the account for a verified email, creating a
// password-less one on first sight.
func (s *UserService) FindOrCreateByEmail(ctx context.Context, email string) (*models.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	user, err = repo.Create(ctx, &models.User{ID: uuid.NewString(), Email: email})
	if errors.Is(err, common.ErrorAlreadyExists) {
		// created concurrently
		return repo.GetByEmail(ctx, email)
	}
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

// IssueSession mints a fresh ordinary session for user.
func (s *UserService) IssueSession(ctx context.Context, user *models.User) (*Session, error) {
	return s.issueSession(ctx, s.db, user, false)
}

func (s *UserService) issueSession(ctx context.Context, db dbx.DBTX, user *models.User, recovery bool) (*Session, error) {
	validity := s.accessTokenValidityDuration
	if recovery {
		validity = s.recoveryTokenValidityDuration
	}

	accessToken, expires, err := auth.GenerateToken(auth.Claims{UserID: user.ID, Email: user.Email, Recovery: recovery}, s.jwtSecret, validity)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := s.repomanager.RefreshTokens(db).Create(ctx, user.ID, refreshToken, s.refreshTokenValidityDuration, recovery); err != nil {
		return nil, common.ErrorInternal
	}

	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expires,
		User:         *user,
		Recovery:     recovery,
	}, nil
}

// SessionRedirect appends sess to redirectTo as a URL fragment, the shape
// the client's deep link parser reads.
func SessionRedirect(redirectTo string, sess *Session, now time.Time) string {
	v := url.Values{}
	v.Set("access_token", sess.AccessToken)
	v.Set("refresh_token", sess.RefreshToken)
	v.Set("expires_in", strconv.FormatInt(int64(sess.ExpiresAt.Sub(now).Seconds()), 10))
	v.Set("token_type", "bearer")
	if sess.Recovery {
		v.Set("type", "recovery")
	}

	base, _, _ := strings.Cut(redirectTo, "#")
	return base + "#" + v.Encode()
}
