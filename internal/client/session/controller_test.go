package session

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/noxus/internal/client/client"
	"github.com/dmitrijs2005/noxus/internal/client/client/clienttest"
	"github.com/dmitrijs2005/noxus/internal/client/levels"
	"github.com/dmitrijs2005/noxus/internal/client/models"
	"github.com/dmitrijs2005/noxus/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scheme = "com.ascennoxus.app"

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

var ana = models.Session{
	AccessToken:  "A",
	RefreshToken: "B",
	User:         models.User{ID: "u1", Email: "ana@example.com"},
}

func newController(t *testing.T, f *clienttest.Fake) *Controller {
	t.Helper()
	c := New(f, Options{AppScheme: scheme}, logging.Nop())
	clock := func() time.Time { return testNow }
	c.now = clock
	c.reconciler.Now = clock
	c.sync.Now = clock
	return c
}

func profileDaysAgo(days int, level levels.Key) models.Profile {
	return models.Profile{
		ID:           ana.User.ID,
		StartDate:    testNow.AddDate(0, 0, -days),
		CurrentLevel: string(level),
		HasOnboarded: true,
		Email:        ana.User.Email,
	}
}

// signedIn returns a controller that has reconciled ana's profile.
func signedIn(t *testing.T, f *clienttest.Fake, p models.Profile) *Controller {
	t.Helper()
	f.SetCurrent(&ana)
	f.PutProfile(p)
	c := newController(t, f)
	require.NoError(t, c.Start(context.Background()))
	require.Equal(t, Authenticated, c.Snapshot().State)
	return c
}

func TestStart_NoSession(t *testing.T) {
	c := newController(t, clienttest.New())

	require.NoError(t, c.Start(context.Background()))
	snap := c.Snapshot()
	assert.Equal(t, Unauthenticated, snap.State)
	assert.Equal(t, models.ViewAuth, snap.View)
	assert.Nil(t, snap.User)
}

func TestStart_LookupError(t *testing.T) {
	f := clienttest.New()
	f.Fail("GetSession", client.ErrUnavailable)
	c := newController(t, f)

	assert.ErrorIs(t, c.Start(context.Background()), client.ErrUnavailable)
	assert.Equal(t, Unauthenticated, c.Snapshot().State)
}

func TestStart_TenDayProfile(t *testing.T) {
	f := clienttest.New()
	c := signedIn(t, f, profileDaysAgo(10, levels.Bronze))

	snap := c.Snapshot()
	assert.Equal(t, models.ViewDashboard, snap.View)
	assert.True(t, snap.Ready)
	assert.False(t, snap.Loading)
	require.NotNil(t, snap.User)
	assert.Equal(t, 10, snap.User.StreakDays)
	assert.Equal(t, string(levels.Silver), snap.User.CurrentLevel)

	// the stale tier in the row is corrected
	ups := f.Upserts()
	require.Len(t, ups, 1)
	assert.Equal(t, string(levels.Silver), ups[0].CurrentLevel)
	assert.Equal(t, testNow, ups[0].UpdatedAt)
}

func TestStart_UpToDateTierIsNotPushed(t *testing.T) {
	f := clienttest.New()
	signedIn(t, f, profileDaysAgo(40, levels.Gold))
	assert.Empty(t, f.Upserts())
}

func TestStart_CreatesMissingProfile(t *testing.T) {
	f := clienttest.New()
	f.SetCurrent(&ana)
	c := newController(t, f)

	require.NoError(t, c.Start(context.Background()))
	snap := c.Snapshot()
	assert.Equal(t, Authenticated, snap.State)
	assert.Equal(t, models.ViewDashboard, snap.View)
	assert.Equal(t, 0, snap.User.StreakDays)
	assert.Equal(t, string(levels.Bronze), snap.User.CurrentLevel)

	_, ok := f.Profile(ana.User.ID)
	assert.True(t, ok)
}

func TestStart_NotOnboardedLandsOnOnboarding(t *testing.T) {
	f := clienttest.New()
	p := profileDaysAgo(0, levels.Bronze)
	p.HasOnboarded = false
	c := signedIn(t, f, p)

	assert.Equal(t, models.ViewOnboarding, c.Snapshot().View)
}

func TestStart_ProfileFetchError(t *testing.T) {
	f := clienttest.New()
	f.SetCurrent(&ana)
	f.Fail("GetProfile", client.ErrUnavailable)
	c := newController(t, f)

	err := c.Start(context.Background())
	var pfe *ProfileFetchError
	require.ErrorAs(t, err, &pfe)
	assert.ErrorIs(t, err, client.ErrUnavailable)

	snap := c.Snapshot()
	assert.Equal(t, Authenticating, snap.State)
	assert.False(t, snap.Loading)
	assert.False(t, snap.Ready)
	assert.Equal(t, 0, f.Count("InsertProfile"))
}

func TestStart_RecoverySession(t *testing.T) {
	f := clienttest.New()
	s := ana
	s.Recovery = true
	f.SetCurrent(&s)
	c := newController(t, f)

	require.NoError(t, c.Start(context.Background()))
	snap := c.Snapshot()
	assert.Equal(t, RecoveryPending, snap.State)
	assert.Equal(t, models.ViewUpdatePassword, snap.View)
}

func TestDeepLink_RecoveryRaisedBeforeExchange(t *testing.T) {
	f := clienttest.New()
	f.AddTokens(ana)
	c := newController(t, f)

	var during State
	f.AfterSetSession = func(models.Session) { during = c.Snapshot().State }

	err := c.HandleDeepLink(context.Background(), scheme+"://reset-callback#access_token=A&refresh_token=B")
	require.NoError(t, err)

	assert.Equal(t, RecoveryPending, during)
	snap := c.Snapshot()
	assert.Equal(t, RecoveryPending, snap.State)
	assert.Equal(t, models.ViewUpdatePassword, snap.View)
	assert.Equal(t, ana.User.ID, snap.UserID)
}

func TestDeepLink_SignedInDuringRecoveryExchange(t *testing.T) {
	f := clienttest.New()
	f.AddTokens(ana)
	f.PutProfile(profileDaysAgo(10, levels.Bronze))
	c := newController(t, f)
	ctx := context.Background()

	// the store announces the session while the exchange is still resolving
	f.AfterSetSession = func(s models.Session) {
		require.NoError(t, c.HandleAuthEvent(ctx, models.SignedIn{Session: s}))
	}

	require.NoError(t, c.HandleDeepLink(ctx, scheme+"://reset-callback#access_token=A&refresh_token=B"))

	snap := c.Snapshot()
	assert.Equal(t, RecoveryPending, snap.State)
	assert.Equal(t, models.ViewUpdatePassword, snap.View)

	// reconciled silently, but nothing is written during recovery
	require.NotNil(t, snap.User)
	assert.Equal(t, 10, snap.User.StreakDays)
	assert.Empty(t, f.Upserts())
}

func TestDeepLink_SignedInAfterRecoveryExchange(t *testing.T) {
	f := clienttest.New()
	f.AddTokens(ana)
	c := newController(t, f)
	ctx := context.Background()

	require.NoError(t, c.HandleDeepLink(ctx, scheme+"://reset-callback#access_token=A&refresh_token=B"))
	require.NoError(t, c.HandleAuthEvent(ctx, models.SignedIn{Session: ana}))

	snap := c.Snapshot()
	assert.Equal(t, RecoveryPending, snap.State)
	assert.Equal(t, models.ViewUpdatePassword, snap.View)
}

func TestDeepLink_OAuthClearsRecovery(t *testing.T) {
	f := clienttest.New()
	f.AddTokens(ana)
	c := newController(t, f)
	ctx := context.Background()

	require.NoError(t, c.HandleAuthEvent(ctx, models.PasswordRecovery{Session: ana}))
	require.Equal(t, RecoveryPending, c.Snapshot().State)

	require.NoError(t, c.HandleDeepLink(ctx, scheme+"://google-auth#access_token=A&refresh_token=B"))

	snap := c.Snapshot()
	assert.Equal(t, Authenticated, snap.State)
	assert.Equal(t, models.ViewDashboard, snap.View)
}

func TestDeepLink_PlainTokens(t *testing.T) {
	f := clienttest.New()
	f.AddTokens(ana)
	c := newController(t, f)

	require.NoError(t, c.HandleDeepLink(context.Background(), scheme+"://callback#access_token=A&refresh_token=B"))
	snap := c.Snapshot()
	assert.Equal(t, Authenticated, snap.State)
	assert.Equal(t, models.ViewDashboard, snap.View)
}

func TestDeepLink_ExchangeFailure(t *testing.T) {
	f := clienttest.New()
	c := newController(t, f)

	err := c.HandleDeepLink(context.Background(), scheme+"://reset-callback#access_token=X&refresh_token=Y")
	var tee *TokenExchangeError
	require.ErrorAs(t, err, &tee)
	assert.ErrorIs(t, err, client.ErrUnauthorized)

	snap := c.Snapshot()
	assert.Equal(t, RecoveryPending, snap.State)
	assert.Equal(t, models.ViewUpdatePassword, snap.View)
	assert.Empty(t, snap.UserID)
	assert.Equal(t, 0, f.Count("GetProfile"))
}

func TestDeepLink_ErrorFragment(t *testing.T) {
	f := clienttest.New()
	c := newController(t, f)

	err := c.HandleDeepLink(context.Background(), scheme+"://reset-callback#error=access_denied&error_description=Email+link+is+invalid")
	var tee *TokenExchangeError
	require.ErrorAs(t, err, &tee)
	assert.Contains(t, err.Error(), "Email link is invalid")
	assert.Empty(t, f.Calls())
}

func TestDeepLink_Unrecognized(t *testing.T) {
	f := clienttest.New()
	c := newController(t, f)

	require.NoError(t, c.HandleDeepLink(context.Background(), scheme+"://somewhere?x=1"))
	assert.Equal(t, Unauthenticated, c.Snapshot().State)
	assert.Empty(t, f.Calls())
}

func TestSignOut_DuringRecovery(t *testing.T) {
	f := clienttest.New()
	c := signedIn(t, f, profileDaysAgo(3, levels.Bronze))
	ctx := context.Background()

	require.NoError(t, c.HandleAuthEvent(ctx, models.PasswordRecovery{Session: ana}))
	require.NoError(t, c.SignOut(ctx))

	snap := c.Snapshot()
	assert.Equal(t, Unauthenticated, snap.State)
	assert.Equal(t, models.ViewAuth, snap.View)
	assert.Nil(t, snap.User)
	assert.False(t, snap.Ready)
}

func TestSignOut_RemoteFailureStillClears(t *testing.T) {
	f := clienttest.New()
	c := signedIn(t, f, profileDaysAgo(3, levels.Bronze))
	f.Fail("SignOut", client.ErrUnavailable)

	require.NoError(t, c.SignOut(context.Background()))
	assert.Equal(t, Unauthenticated, c.Snapshot().State)
}

func TestPushedSignedOut(t *testing.T) {
	f := clienttest.New()
	c := signedIn(t, f, profileDaysAgo(3, levels.Bronze))

	require.NoError(t, c.HandleAuthEvent(context.Background(), models.SignedOut{}))
	assert.Equal(t, Unauthenticated, c.Snapshot().State)
	assert.Nil(t, c.Snapshot().User)
}

func TestRenewedSessionDoesNotNavigate(t *testing.T) {
	f := clienttest.New()
	c := signedIn(t, f, profileDaysAgo(3, levels.Bronze))
	require.NoError(t, c.Navigate(models.ViewProgression))

	require.NoError(t, c.HandleAuthEvent(context.Background(), models.SignedIn{Session: ana}))
	assert.Equal(t, models.ViewProgression, c.Snapshot().View)
}

func TestSignIn(t *testing.T) {
	f := clienttest.New()
	f.AddUser("ana@example.com", "secret1")
	c := newController(t, f)
	ctx := context.Background()

	err := c.SignIn(ctx, "ana@example.com", "wrong")
	var ce *CredentialError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, Unauthenticated, c.Snapshot().State)

	require.NoError(t, c.SignIn(ctx, "ana@example.com", "secret1"))
	snap := c.Snapshot()
	assert.Equal(t, Authenticated, snap.State)
	assert.Equal(t, models.ViewDashboard, snap.View)
	assert.Equal(t, "ana@example.com", snap.Email)
}

func TestSignUp_Duplicate(t *testing.T) {
	f := clienttest.New()
	f.AddUser("ana@example.com", "secret1")
	c := newController(t, f)

	err := c.SignUp(context.Background(), "ana@example.com", "secret1")
	var ce *CredentialError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, client.ErrAlreadyExists)
}

func TestResetPasswordAndOAuthURL(t *testing.T) {
	f := clienttest.New()
	c := newController(t, f)
	ctx := context.Background()

	require.NoError(t, c.ResetPassword(ctx, "ana@example.com"))
	assert.Equal(t, scheme+"://reset-callback", f.LastRedirect)

	url, err := c.OAuthURL(ctx, "google")
	require.NoError(t, err)
	assert.NotEmpty(t, url)
	assert.Equal(t, scheme+"://google-auth", f.LastRedirect)

	f.Fail("ResetPasswordForEmail", client.ErrUnavailable)
	var ce *CredentialError
	assert.ErrorAs(t, c.ResetPassword(ctx, "ana@example.com"), &ce)
}

func TestUpdatePassword_CompletesRecovery(t *testing.T) {
	f := clienttest.New()
	f.AddUser(ana.User.Email, "old-secret")
	f.AddTokens(ana)
	f.PutProfile(profileDaysAgo(8, levels.Silver))
	c := newController(t, f)
	ctx := context.Background()

	require.NoError(t, c.HandleDeepLink(ctx, scheme+"://reset-callback#access_token=A&refresh_token=B"))
	require.NoError(t, c.UpdatePassword(ctx, "new-secret"))

	snap := c.Snapshot()
	assert.Equal(t, Authenticated, snap.State)
	assert.Equal(t, models.ViewDashboard, snap.View)
	require.NotNil(t, snap.User)
	assert.Equal(t, 8, snap.User.StreakDays)
}

func TestUpdatePassword_Errors(t *testing.T) {
	f := clienttest.New()
	c := newController(t, f)
	ctx := context.Background()

	var ce *CredentialError
	require.ErrorAs(t, c.UpdatePassword(ctx, "new-secret"), &ce)
	assert.ErrorIs(t, ce, ErrNotSignedIn)

	require.NoError(t, c.HandleAuthEvent(ctx, models.PasswordRecovery{Session: ana}))
	f.SetCurrent(&ana)
	require.ErrorAs(t, c.UpdatePassword(ctx, "123"), &ce)
	assert.Equal(t, RecoveryPending, c.Snapshot().State)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("remote session ended", func(t *testing.T) {
		f := clienttest.New()
		c := signedIn(t, f, profileDaysAgo(3, levels.Bronze))
		f.SetCurrent(nil)

		require.NoError(t, c.Refresh(ctx))
		assert.Equal(t, Unauthenticated, c.Snapshot().State)
	})

	t.Run("offline keeps state", func(t *testing.T) {
		f := clienttest.New()
		c := signedIn(t, f, profileDaysAgo(3, levels.Bronze))
		f.Fail("GetSession", client.ErrUnavailable)

		assert.Error(t, c.Refresh(ctx))
		assert.Equal(t, Authenticated, c.Snapshot().State)
	})

	t.Run("does not navigate", func(t *testing.T) {
		f := clienttest.New()
		c := signedIn(t, f, profileDaysAgo(3, levels.Bronze))
		require.NoError(t, c.Navigate(models.ViewProfile))

		require.NoError(t, c.Refresh(ctx))
		assert.Equal(t, models.ViewProfile, c.Snapshot().View)
		assert.Equal(t, 2, f.Count("GetProfile"))
	})

	t.Run("session appeared", func(t *testing.T) {
		f := clienttest.New()
		c := newController(t, f)
		require.NoError(t, c.Start(ctx))
		f.SetCurrent(&ana)

		require.NoError(t, c.Refresh(ctx))
		assert.Equal(t, Authenticated, c.Snapshot().State)
	})
}

func TestObserve(t *testing.T) {
	f := clienttest.New()
	f.SetCurrent(&ana)
	c := newController(t, f)

	var views []models.View
	c.Observe(func(s Snapshot) { views = append(views, s.View) })
	require.NoError(t, c.Start(context.Background()))

	require.NotEmpty(t, views)
	assert.Equal(t, models.ViewDashboard, views[len(views)-1])
}

func TestRun_DispatchesEventsAndLinks(t *testing.T) {
	f := clienttest.New()
	f.AddTokens(ana)
	c := newController(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	links := make(chan string)
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, links) }()

	links <- scheme + "://google-auth#access_token=A&refresh_token=B"
	assert.Eventually(t, func() bool {
		return c.Snapshot().View == models.ViewDashboard
	}, time.Second, 5*time.Millisecond)

	f.Emit(models.SignedOut{})
	assert.Eventually(t, func() bool {
		return c.Snapshot().State == Unauthenticated
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestDispatchDeepLink(t *testing.T) {
	f := clienttest.New()
	f.AddTokens(ana)
	c := newController(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, nil) }()

	require.NoError(t, c.DispatchDeepLink(ctx, scheme+"://reset-callback#access_token=A&refresh_token=B"))
	assert.Equal(t, RecoveryPending, c.Snapshot().State)

	var te *TokenExchangeError
	require.ErrorAs(t, c.DispatchDeepLink(ctx, scheme+"://google-auth#error=access_denied"), &te)

	cancel()
	<-done
	assert.ErrorIs(t, c.DispatchDeepLink(ctx, scheme+"://google-auth"), context.Canceled)
}

func TestDispatchDeepLink_NoLoop(t *testing.T) {
	c := newController(t, clienttest.New())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, c.DispatchDeepLink(ctx, scheme+"://google-auth"), context.DeadlineExceeded)
	assert.Equal(t, Unauthenticated, c.Snapshot().State)
}

func TestSetAvatar(t *testing.T) {
	var got []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := clienttest.New()
	f.PresignURL = srv.URL
	c := signedIn(t, f, profileDaysAgo(3, levels.Bronze))

	path := filepath.Join(t.TempDir(), "me.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o600))

	require.NoError(t, c.SetAvatar(context.Background(), path))
	assert.Equal(t, []byte("png"), got)
	assert.Equal(t, clienttest.AvatarBaseURL+"avatars/u1/avatar.png", c.Snapshot().User.AvatarURL)
}

func TestSetAvatar_NoProfile(t *testing.T) {
	c := newController(t, clienttest.New())
	assert.True(t, errors.Is(c.SetAvatar(context.Background(), "x.png"), ErrNoProfile))
}
