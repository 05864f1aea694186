package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/noxus/internal/api"
	"github.com/dmitrijs2005/noxus/internal/common"
	"github.com/dmitrijs2005/noxus/internal/logging"
	"github.com/dmitrijs2005/noxus/internal/server/models"
	"github.com/dmitrijs2005/noxus/internal/server/services"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

const testSecret = "k"

type fakeUsers struct {
	signUpErr   error
	signInSess  *services.Session
	signInErr   error
	refreshSess *services.Session
	refreshErr  error
	user        *models.User
	getErr      error
	signOutErr  error
	resetErr    error
	updateErr   error

	gotRefresh  string
	gotSignOut  string
	gotRedirect string
	gotUpdate   [2]string
}

func (f *fakeUsers) SignUp(_ context.Context, email, _ string) (*models.User, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &models.User{ID: "u1", Email: email}, nil
}

func (f *fakeUsers) SignIn(context.Context, string, string) (*services.Session, error) {
	return f.signInSess, f.signInErr
}

func (f *fakeUsers) Refresh(_ context.Context, token string) (*services.Session, error) {
	f.gotRefresh = token
	return f.refreshSess, f.refreshErr
}

func (f *fakeUsers) GetUser(_ context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.user != nil {
		return f.user, nil
	}
	return &models.User{ID: id, Email: "a@b.co"}, nil
}

func (f *fakeUsers) SignOut(_ context.Context, token string) error {
	f.gotSignOut = token
	return f.signOutErr
}

func (f *fakeUsers) ResetPassword(_ context.Context, _, redirectTo string) error {
	f.gotRedirect = redirectTo
	return f.resetErr
}

func (f *fakeUsers) UpdatePassword(_ context.Context, userID, password string) error {
	f.gotUpdate = [2]string{userID, password}
	return f.updateErr
}

type fakeProfiles struct {
	rows map[string]*models.Profile
}

func (f *fakeProfiles) Get(_ context.Context, callerID, id string) (*models.Profile, error) {
	if callerID != id {
		return nil, common.ErrorForbidden
	}
	p, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

func (f *fakeProfiles) Insert(ctx context.Context, callerID string, p *models.Profile) (*models.Profile, error) {
	if _, err := f.Get(ctx, callerID, p.ID); err == nil {
		return nil, common.ErrorAlreadyExists
	}
	return f.Upsert(ctx, callerID, p)
}

func (f *fakeProfiles) Upsert(_ context.Context, callerID string, p *models.Profile) (*models.Profile, error) {
	if callerID != p.ID {
		return nil, common.ErrorForbidden
	}
	c := *p
	c.UpdatedAt = time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	f.rows[p.ID] = &c
	return &c, nil
}

type fakeAvatars struct {
	gotUser string
}

func (f *fakeAvatars) PresignUpload(_ context.Context, userID, ext string) (string, string, error) {
	f.gotUser = userID
	key := "avatars/" + userID + "/k." + ext
	return key, "http://s3/" + key + "?sig", nil
}

func (f *fakeAvatars) SetAvatar(_ context.Context, userID, key string) (*models.Profile, error) {
	return &models.Profile{ID: userID, CurrentLevel: "BRONZE", AvatarURL: "http://cdn/" + key}, nil
}

type fakeOAuth struct{}

func (fakeOAuth) AuthURL(_ context.Context, provider, redirectTo string) (string, error) {
	if provider != "google" {
		return "", common.ErrorUnknownProvider
	}
	return "https://accounts.example/auth?redirect=" + redirectTo, nil
}

type testEnv struct {
	server   *GRPCServer
	users    *fakeUsers
	profiles *fakeProfiles
	avatars  *fakeAvatars
	client   api.IdentityServiceClient
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		users:    &fakeUsers{},
		profiles: &fakeProfiles{rows: map[string]*models.Profile{}},
		avatars:  &fakeAvatars{},
	}
	env.server = NewGRPCServer("bufnet", logging.Nop(), env.users, env.profiles, env.avatars, fakeOAuth{}, testSecret)

	lis := bufconn.Listen(1 << 20)
	srv := env.server.NewServer()
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	env.client = api.NewIdentityServiceClient(conn)
	return env
}
