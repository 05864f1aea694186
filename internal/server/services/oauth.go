package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/noxus/internal/common"
	"github.com/dmitrijs2005/noxus/internal/logging"
	"github.com/dmitrijs2005/noxus/internal/server/auth"
	sc "github.com/dmitrijs2005/noxus/internal/server/config"
	"github.com/dmitrijs2005/noxus/internal/server/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	ProviderGoogle = "google"

	// CallbackPath is where providers send the browser back to.
	CallbackPath = "/auth/v1/callback"

	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	oauthStateTTL     = 10 * time.Minute
)

var (
	oauthExchange = func(ctx context.Context, cfg *oauth2.Config, code string) (*oauth2.Token, error) {
		return cfg.Exchange(ctx, code)
	}

	fetchUserInfo = func(ctx context.Context, cfg *oauth2.Config, tok *oauth2.Token, endpoint string) (*providerUser, error) {
		resp, err := cfg.Client(ctx, tok).Get(endpoint)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("userinfo: unexpected status %d", resp.StatusCode)
		}
		var u providerUser
		if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
			return nil, fmt.Errorf("userinfo: %w", err)
		}
		return &u, nil
	}
)

type providerUser struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// sessionIssuer is the part of UserService OAuth sign-in needs.
type sessionIssuer interface {
	FindOrCreateByEmail(ctx context.Context, email string) (*models.User, error)
	IssueSession(ctx context.Context, user *models.User) (*Session, error)
}

type oauthProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

// OAuthService runs the authorization code flow against external identity
// providers. The state parameter is a signed token carrying the provider
// and the app redirect, so no server-side state is kept between the two
// legs.
type OAuthService struct {
	users     sessionIssuer
	providers map[string]*oauthProvider
	jwtSecret []byte
	appScheme string
	logger    logging.Logger
}

func NewOAuthService(users sessionIssuer, cfg *sc.Config, l logging.Logger) *OAuthService {
	s := &OAuthService{
		users:     users,
		providers: make(map[string]*oauthProvider),
		jwtSecret: []byte(cfg.SecretKey),
		appScheme: cfg.AppScheme,
		logger:    l.With("module", "oauth_service"),
	}

	if cfg.GoogleClientID != "" {
		s.providers[ProviderGoogle] = &oauthProvider{
			config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     endpoints.Google,
				RedirectURL:  strings.TrimSuffix(cfg.PublicURL, "/") + CallbackPath,
				Scopes:       []string{"openid", "email"},
			},
			userInfoURL: googleUserInfoURL,
		}
	}
	return s
}

// AuthURL returns the provider consent page address for a sign-in that
// should finish at redirectTo.
func (s *OAuthService) AuthURL(ctx context.Context, provider, redirectTo string) (string, error) {
	p, ok := s.providers[strings.ToLower(provider)]
	if !ok {
		return "", fmt.Errorf("%w: %q", common.ErrorUnknownProvider, provider)
	}
	if err := checkRedirect(redirectTo, s.appScheme); err != nil {
		return "", err
	}

	state, err := auth.GenerateState(strings.ToLower(provider), redirectTo, s.jwtSecret, oauthStateTTL)
	if err != nil {
		return "", common.ErrorInternal
	}
	return p.config.AuthCodeURL(state), nil
}

// RedirectFor validates state and returns the app redirect it carries.
func (s *OAuthService) RedirectFor(state string) (string, error) {
	claims, err := auth.ParseState(state, s.jwtSecret)
	if err != nil {
		return "", err
	}
	return claims.RedirectTo, nil
}

// Callback finishes the flow: it exchanges code, reads the verified email,
// signs the user in and returns the app redirect carrying the session.
func (s *OAuthService) Callback(ctx context.Context, code, state string) (string, error) {
	claims, err := auth.ParseState(state, s.jwtSecret)
	if err != nil {
		return "", err
	}
	p, ok := s.providers[claims.Provider]
	if !ok {
		return "", common.ErrorUnknownProvider
	}

	tok, err := oauthExchange(ctx, p.config, code)
	if err != nil {
		return "", fmt.Errorf("code exchange: %w", err)
	}

	pu, err := fetchUserInfo(ctx, p.config, tok, p.userInfoURL)
	if err != nil {
		return "", err
	}
	if pu.Email == "" || !pu.EmailVerified {
		return "", fmt.Errorf("%w: provider email missing or unverified", common.ErrorUnauthorized)
	}

	user, err := s.users.FindOrCreateByEmail(ctx, pu.Email)
	if err != nil {
		return "", err
	}
	sess, err := s.users.IssueSession(ctx, user)
	if err != nil {
		return "", err
	}

	s.logger.Info(ctx, "oauth sign-in", "provider", claims.Provider, "user_id", user.ID)
	return SessionRedirect(claims.RedirectTo, sess, time.Now()), nil
}

// ErrorRedirect reports a failed sign-in to the app.
func ErrorRedirect(redirectTo, code, description string) string {
	v := url.Values{}
	v.Set("error", code)
	if description != "" {
		v.Set("error_description", description)
	}
	base, _, _ := strings.Cut(redirectTo, "#")
	return base + "#" + v.Encode()
}
