package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/noxus/internal/api"
	"github.com/dmitrijs2005/noxus/internal/client/models"
	metarepo "github.com/dmitrijs2005/noxus/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/noxus/internal/common"
	"github.com/dmitrijs2005/noxus/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      api.IdentityServiceClient
	store       metarepo.Repository
	logger      logging.Logger
	events      *emitter
	now         func() time.Time

	// refreshMu serializes refreshes so a rotated refresh token is never
	// presented twice.
	refreshMu sync.Mutex

	mu      sync.Mutex
	session *models.Session
	loaded  bool
}

// NewGRPCClient connects to the identity store at endpointURL. store keeps
// the session across restarts and may be nil.
func NewGRPCClient(endpointURL string, store metarepo.Repository, l logging.Logger) (*GRPCClient, error) {
	c := newGRPCClient(store, l)
	c.endpointURL = endpointURL
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func newGRPCClient(store metarepo.Repository, l logging.Logger) *GRPCClient {
	l = l.With("module", "grpc_client")
	return &GRPCClient{
		store:  store,
		logger: l,
		events: newEmitter(l),
		now:    time.Now,
	}
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewIdentityServiceClient(conn)
	return nil
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func hasAccessToken(ctx context.Context) bool {
	md, ok := metadata.FromOutgoingContext(ctx)
	return ok && len(md.Get(common.AccessTokenHeaderName)) > 0
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

// accessTokenInterceptor attaches the current access token. When the store
// answers "token expired" the session is refreshed once and the call is
// retried. Calls that already carry a token, and the refresh call itself,
// pass through untouched.
func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if method == api.FullMethod(api.MethodRefreshSession) || hasAccessToken(ctx) {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	sess := s.current(ctx)
	if sess == nil {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	err := invoker(withAccessToken(ctx, sess.AccessToken), method, req, reply, cc, opts...)
	if !isTokenExpired(err) || sess.RefreshToken == "" {
		return err
	}

	refreshed, rerr := s.refresh(ctx, sess)
	if rerr != nil {
		s.logger.Warn(ctx, "session refresh failed", "error", rerr)
		return err
	}

	// tokens refreshed, retrying with the new access token
	return invoker(withAccessToken(ctx, refreshed.AccessToken), method, req, reply, cc, opts...)
}

// current returns a copy of the session, loading it from the local store on
// first use.
func (s *GRPCClient) current(ctx context.Context) *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		s.loaded = true
		if s.store != nil {
			sess, err := metarepo.LoadJSON[models.Session](ctx, s.store, metarepo.KeySession)
			if err != nil {
				s.logger.Warn(ctx, "stored session unreadable", "error", err)
			}
			s.session = sess
		}
	}
	if s.session == nil {
		return nil
	}
	cp := *s.session
	return &cp
}

func (s *GRPCClient) setSession(ctx context.Context, sess *models.Session) {
	cp := *sess

	s.mu.Lock()
	s.session = &cp
	s.loaded = true
	s.mu.Unlock()

	if s.store != nil {
		if err := metarepo.StoreJSON(ctx, s.store, metarepo.KeySession, cp); err != nil {
			s.logger.Warn(ctx, "session not persisted", "error", err)
		}
	}
}

// dropSession forgets the session and reports whether there was one.
func (s *GRPCClient) dropSession(ctx context.Context) bool {
	s.mu.Lock()
	had := s.session != nil
	s.session = nil
	s.loaded = true
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Delete(ctx, metarepo.KeySession); err != nil {
			s.logger.Warn(ctx, "stored session not removed", "error", err)
		}
	}
	return had
}

func (s *GRPCClient) refresh(ctx context.Context, stale *models.Session) (*models.Session, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	// someone else refreshed while we waited
	if cur := s.current(ctx); cur != nil && cur.RefreshToken != stale.RefreshToken {
		return cur, nil
	}

	resp, err := s.client.RefreshSession(ctx, &api.RefreshSessionRequest{RefreshToken: stale.RefreshToken})
	if err != nil {
		if status.Code(err) == codes.Unauthenticated {
			if s.dropSession(ctx) {
				s.logger.Info(ctx, "session revoked by store")
				s.events.emit(ctx, models.SignedOut{})
			}
		}
		return nil, s.mapError(err)
	}

	sess := s.sessionFromAPI(resp.Session)
	s.setSession(ctx, sess)
	return sess, nil
}

func (s *GRPCClient) GetSession(ctx context.Context) (*models.Session, error) {
	sess := s.current(ctx)
	if sess == nil {
		return nil, nil
	}
	if !sess.Expired(s.now()) {
		return sess, nil
	}

	sess, err := s.refresh(ctx, sess)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil, nil
		}
		return nil, err
	}
	return sess, nil
}

func (s *GRPCClient) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	resp, err := s.client.SignInWithPassword(ctx, &api.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}

	sess := s.sessionFromAPI(resp.Session)
	s.setSession(ctx, sess)
	s.events.emit(ctx, models.SignedIn{Session: *sess})

	cp := *sess
	return &cp, nil
}

func (s *GRPCClient) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	resp, err := s.client.SignUp(ctx, &api.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &models.User{ID: resp.User.ID, Email: resp.User.Email}, nil
}

func (s *GRPCClient) SignInWithOAuth(ctx context.Context, provider, redirectTo string) (string, error) {
	resp, err := s.client.SignInWithOAuth(ctx, &api.OAuthRequest{Provider: provider, RedirectTo: redirectTo})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.URL, nil
}

func (s *GRPCClient) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	if _, err := s.client.ResetPasswordForEmail(ctx, &api.ResetPasswordRequest{Email: email, RedirectTo: redirectTo}); err != nil {
		return s.mapError(err)
	}
	return nil
}

// UpdateUser sets a new password for the signed-in user. A recovery session
// becomes an ordinary one afterwards.
func (s *GRPCClient) UpdateUser(ctx context.Context, password string) error {
	sess := s.current(ctx)
	if sess == nil {
		return ErrNoSession
	}
	if _, err := s.client.UpdateUser(ctx, &api.UpdateUserRequest{Password: password}); err != nil {
		return s.mapError(err)
	}

	if cur := s.current(ctx); cur != nil && cur.Recovery {
		cur.Recovery = false
		s.setSession(ctx, cur)
	}
	return nil
}

// SetSession validates a token pair delivered by a deep link and makes it
// the current session. An expired access token is refreshed with the given
// refresh token. Subscribers get PasswordRecovery for recovery sessions and
// SignedIn otherwise.
func (s *GRPCClient) SetSession(ctx context.Context, accessToken, refreshToken string) (*models.Session, error) {
	var sess *models.Session

	resp, err := s.client.GetUser(withAccessToken(ctx, accessToken), &api.Empty{})
	switch {
	case err == nil:
		sess = &models.Session{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    api.Time(resp.ExpiresAt),
			User:         models.User{ID: resp.User.ID, Email: resp.User.Email},
			Recovery:     resp.Recovery,
		}
	case isTokenExpired(err):
		r, rerr := s.client.RefreshSession(ctx, &api.RefreshSessionRequest{RefreshToken: refreshToken})
		if rerr != nil {
			return nil, s.mapError(rerr)
		}
		sess = s.sessionFromAPI(r.Session)
	default:
		return nil, s.mapError(err)
	}

	s.setSession(ctx, sess)
	if sess.Recovery {
		s.events.emit(ctx, models.PasswordRecovery{Session: *sess})
	} else {
		s.events.emit(ctx, models.SignedIn{Session: *sess})
	}

	cp := *sess
	return &cp, nil
}

// SignOut revokes the refresh token at the store and always forgets the
// local session, even when the store cannot be reached.
func (s *GRPCClient) SignOut(ctx context.Context) error {
	if sess := s.current(ctx); sess != nil {
		if _, err := s.client.SignOut(ctx, &api.SignOutRequest{RefreshToken: sess.RefreshToken}); err != nil {
			s.logger.Warn(ctx, "remote sign-out failed", "error", s.mapError(err))
		}
	}
	s.dropSession(ctx)
	s.events.emit(ctx, models.SignedOut{})
	return nil
}

func (s *GRPCClient) Subscribe() (<-chan models.AuthEvent, func()) {
	return s.events.subscribe()
}

func (s *GRPCClient) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	resp, err := s.client.GetProfile(ctx, &api.GetProfileRequest{ID: id})
	if err != nil {
		return nil, s.mapError(err)
	}
	return profileFromAPI(resp.Profile), nil
}

func (s *GRPCClient) InsertProfile(ctx context.Context, p models.Profile) (*models.Profile, error) {
	resp, err := s.client.InsertProfile(ctx, &api.ProfileRequest{Profile: profileToAPI(p)})
	if err != nil {
		return nil, s.mapError(err)
	}
	return profileFromAPI(resp.Profile), nil
}

func (s *GRPCClient) UpsertProfile(ctx context.Context, p models.Profile) (*models.Profile, error) {
	resp, err := s.client.UpsertProfile(ctx, &api.ProfileRequest{Profile: profileToAPI(p)})
	if err != nil {
		return nil, s.mapError(err)
	}
	return profileFromAPI(resp.Profile), nil
}

func (s *GRPCClient) PresignAvatarUpload(ctx context.Context, ext string) (string, string, error) {
	resp, err := s.client.PresignAvatarUpload(ctx, &api.PresignAvatarRequest{Ext: ext})
	if err != nil {
		return "", "", s.mapError(err)
	}
	return resp.Key, resp.URL, nil
}

func (s *GRPCClient) SetAvatar(ctx context.Context, key string) (*models.Profile, error) {
	resp, err := s.client.SetAvatar(ctx, &api.SetAvatarRequest{Key: key})
	if err != nil {
		return nil, s.mapError(err)
	}
	return profileFromAPI(resp.Profile), nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Close() error {
	s.events.closeAll()
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrAlreadyExists, st.Message())
	case codes.InvalidArgument, codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", ErrInvalidArgument, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func (s *GRPCClient) sessionFromAPI(a api.Session) *models.Session {
	expires := api.Time(a.ExpiresAt)
	if expires.IsZero() && a.ExpiresIn > 0 {
		expires = s.now().Add(time.Duration(a.ExpiresIn) * time.Second)
	}
	return &models.Session{
		AccessToken:  a.AccessToken,
		RefreshToken: a.RefreshToken,
		ExpiresAt:    expires,
		User:         models.User{ID: a.User.ID, Email: a.User.Email},
		Recovery:     a.Recovery,
	}
}

func profileFromAPI(p api.Profile) *models.Profile {
	return &models.Profile{
		ID:           p.ID,
		StartDate:    api.Time(p.StartDate),
		CurrentLevel: p.CurrentLevel,
		HasOnboarded: p.HasOnboarded,
		AvatarURL:    p.AvatarURL,
		Email:        p.Email,
		UpdatedAt:    api.Time(p.UpdatedAt),
	}
}

func profileToAPI(p models.Profile) api.Profile {
	return api.Profile{
		ID:           p.ID,
		StartDate:    api.Timestamp(p.StartDate),
		CurrentLevel: p.CurrentLevel,
		HasOnboarded: p.HasOnboarded,
		AvatarURL:    p.AvatarURL,
		Email:        p.Email,
		UpdatedAt:    api.Timestamp(p.UpdatedAt),
	}
}
