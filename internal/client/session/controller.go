// Package session implements the session lifecycle of the noxus client: it
// tracks whether the user is signed in or completing a password reset,
// applies deep-linked credentials, reconciles local state with the remote
// profile and pushes local edits back.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/noxus/internal/client/client"
	"github.com/dmitrijs2005/noxus/internal/client/deeplink"
	"github.com/dmitrijs2005/noxus/internal/client/levels"
	"github.com/dmitrijs2005/noxus/internal/client/models"
	"github.com/dmitrijs2005/noxus/internal/client/services"
	"github.com/dmitrijs2005/noxus/internal/logging"
)

var ErrSignedIn = errors.New("already signed in")

type Options struct {
	// AppScheme is the custom URL scheme deep links come back on.
	AppScheme string
	// Levels is the tier table; the default table when empty.
	Levels []levels.Level
	// RefreshInterval is how often Run re-validates the session; zero
	// disables background refresh.
	RefreshInterval time.Duration
}

// Controller is the session state machine. All methods are safe for
// concurrent use; the lock is never held across a store call.
type Controller struct {
	client     client.Client
	auth       services.AuthService
	reconciler *services.ProfileReconciler
	sync       *services.SyncScheduler
	avatars    *services.AvatarService
	table      []levels.Level
	interval   time.Duration
	logger     logging.Logger
	now        func() time.Time

	mu       sync.Mutex
	state    State
	view     models.View
	session  *models.Session
	user     *models.UserState
	ready    bool
	loading  bool
	observer func(Snapshot)

	linkReqs chan linkRequest
}

type linkRequest struct {
	raw   string
	reply chan error
}

func New(c client.Client, opts Options, l logging.Logger) *Controller {
	table := opts.Levels
	if len(table) == 0 {
		table = levels.Default()
	}
	return &Controller{
		client:     c,
		auth:       services.NewAuthService(c, opts.AppScheme),
		reconciler: services.NewProfileReconciler(c, table, l),
		sync:       services.NewSyncScheduler(c, l),
		avatars:    services.NewAvatarService(c),
		table:      table,
		interval:   opts.RefreshInterval,
		logger:     l.With("module", "session"),
		now:        time.Now,
		state:      Unauthenticated,
		view:       models.ViewAuth,
		linkReqs:   make(chan linkRequest),
	}
}

// Observe registers fn to receive a snapshot after every state change.
// fn runs on the goroutine that made the change.
func (c *Controller) Observe(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = fn
}

func (c *Controller) Levels() []levels.Level {
	return c.table
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{State: c.state, View: c.view, Ready: c.ready, Loading: c.loading}
	if c.session != nil {
		s.Email = c.session.User.Email
		s.UserID = c.session.User.ID
	}
	if c.user != nil {
		u := *c.user
		s.User = &u
	}
	return s
}

// update applies fn under the lock and hands the result to the observer.
func (c *Controller) update(fn func()) Snapshot {
	c.mu.Lock()
	fn()
	snap := c.snapshotLocked()
	obs := c.observer
	c.mu.Unlock()

	if obs != nil {
		obs(snap)
	}
	return snap
}

func (c *Controller) clearLocked() {
	c.state = Unauthenticated
	c.view = models.ViewAuth
	c.session = nil
	c.user = nil
	c.ready = false
	c.loading = false
}

func (c *Controller) enterRecoveryLocked() {
	c.state = RecoveryPending
	c.view = models.ViewUpdatePassword
}

func (c *Controller) setSessionLocked(s models.Session) {
	if c.session != nil && c.session.User.ID != s.User.ID {
		c.user = nil
		c.ready = false
	}
	c.session = &s
}

func landingView(u *models.UserState) models.View {
	if u != nil && !u.HasOnboarded {
		return models.ViewOnboarding
	}
	return models.ViewDashboard
}

// deriveLocked sets the tier for st's streak and reports whether it changed.
func (c *Controller) deriveLocked(st *models.UserState) bool {
	key := string(levels.Resolve(st.StreakDays, c.table).Key)
	if key == st.CurrentLevel {
		return false
	}
	st.CurrentLevel = key
	return true
}

// Start looks up an existing session and reconciles its profile.
func (c *Controller) Start(ctx context.Context) error {
	sess, err := c.auth.Session(ctx)
	if err != nil {
		c.logger.Warn(ctx, "session lookup failed", "error", err)
		c.update(c.clearLocked)
		return err
	}
	if sess == nil {
		c.update(c.clearLocked)
		return nil
	}

	c.update(func() {
		c.setSessionLocked(*sess)
		if sess.Recovery {
			c.enterRecoveryLocked()
		} else {
			c.state = Authenticating
		}
	})
	return c.reconcile(ctx, *sess, true)
}

// reconcile loads the profile of sess into local state. It navigates only
// when redirect is set and the state is not RecoveryPending once the fetch
// has resolved. Results for a session that has since ended are dropped.
func (c *Controller) reconcile(ctx context.Context, sess models.Session, redirect bool) error {
	c.update(func() { c.loading = true })

	st, err := c.reconciler.Reconcile(ctx, sess)

	var stale, changed bool
	c.update(func() {
		c.loading = false
		if c.session == nil || c.session.User.ID != sess.User.ID {
			stale = true
			return
		}
		if err != nil {
			return
		}
		changed = c.deriveLocked(&st)
		c.user = &st
		c.ready = true
		if c.state == Authenticating {
			c.state = Authenticated
		}
		if redirect && c.state != RecoveryPending {
			c.view = landingView(c.user)
		}
	})

	switch {
	case stale:
		c.logger.Debug(ctx, "dropping reconciliation of ended session", "user_id", sess.User.ID)
		return nil
	case err != nil:
		err = &ProfileFetchError{UserID: sess.User.ID, Err: err}
		c.logger.Error(ctx, "reconciliation failed", "error", err)
		return err
	}

	if changed {
		c.push(ctx)
	}
	return nil
}

// push sends local state to the profile row when sync is allowed. Failures
// are logged; the next mutation pushes the full state again.
func (c *Controller) push(ctx context.Context) {
	c.mu.Lock()
	if c.user == nil || c.session == nil {
		c.mu.Unlock()
		return
	}
	gate := services.SyncGate{
		Ready:    c.ready,
		Recovery: c.state == RecoveryPending,
		UserID:   c.session.User.ID,
	}
	st := *c.user
	c.mu.Unlock()

	if _, err := c.sync.Push(ctx, gate, st); err != nil {
		c.logger.Error(ctx, "profile sync failed", "error", &SyncError{UserID: gate.UserID, Err: err})
	}
}

// HandleAuthEvent applies an event pushed by the identity store.
func (c *Controller) HandleAuthEvent(ctx context.Context, ev models.AuthEvent) error {
	c.logger.Debug(ctx, "auth event", "event", ev.Name())

	switch e := ev.(type) {
	case models.PasswordRecovery:
		c.update(func() {
			c.setSessionLocked(e.Session)
			c.enterRecoveryLocked()
		})
	case models.SignedIn:
		return c.signedIn(ctx, e.Session)
	case models.SignedOut:
		c.update(c.clearLocked)
	}
	return nil
}

// signedIn reconciles s. A fresh sign-in navigates to the landing view; a
// renewed session of the signed-in user and any session during recovery
// reconcile silently.
func (c *Controller) signedIn(ctx context.Context, s models.Session) error {
	var redirect bool
	c.update(func() {
		renewed := c.state == Authenticated && c.session != nil && c.session.User.ID == s.User.ID
		c.setSessionLocked(s)
		switch {
		case s.Recovery:
			c.enterRecoveryLocked()
		case c.state == RecoveryPending, renewed:
		default:
			c.state = Authenticating
			redirect = true
		}
	})
	return c.reconcile(ctx, s, redirect)
}

// HandleDeepLink applies a URL delivered to the app scheme. A recovery
// link raises RecoveryPending before anything else happens, so an event
// pushed during the token exchange already observes it.
func (c *Controller) HandleDeepLink(ctx context.Context, raw string) error {
	link := deeplink.Parse(raw)
	if link.Recovery {
		c.update(c.enterRecoveryLocked)
	}

	kind := link.Kind()
	c.logger.Info(ctx, "deep link received", "kind", kind.String(), "tokens", link.HasTokens())
	if kind == deeplink.Unrecognized {
		return nil
	}
	if link.Error != "" {
		err := &TokenExchangeError{Err: errors.New(link.Error)}
		c.logger.Warn(ctx, "deep link carries an error", "error", err)
		return err
	}
	if !link.HasTokens() {
		return nil
	}

	sess, err := c.auth.ExchangeTokens(ctx, link.AccessToken, link.RefreshToken)
	if err != nil {
		err = &TokenExchangeError{Err: err}
		c.logger.Warn(ctx, "token exchange failed", "error", err)
		return err
	}

	switch kind {
	case deeplink.Recovery:
		c.update(func() {
			c.setSessionLocked(*sess)
			c.enterRecoveryLocked()
		})
		return nil
	case deeplink.OAuthSuccess:
		c.update(func() {
			c.setSessionLocked(*sess)
			c.state = Authenticating
		})
		return c.reconcile(ctx, *sess, true)
	default:
		return c.signedIn(ctx, *sess)
	}
}

// Refresh re-validates the session without navigating. A session the
// store no longer reports is signed out locally; store errors leave the
// state untouched.
func (c *Controller) Refresh(ctx context.Context) error {
	sess, err := c.auth.Session(ctx)
	if err != nil {
		c.logger.Warn(ctx, "session refresh failed", "error", err)
		return err
	}

	c.mu.Lock()
	local := c.session
	c.mu.Unlock()

	switch {
	case sess == nil && local == nil:
		return nil
	case sess == nil:
		c.logger.Info(ctx, "session ended remotely", "user_id", local.User.ID)
		c.update(c.clearLocked)
		return nil
	case local == nil:
		return c.signedIn(ctx, *sess)
	}

	c.update(func() { c.setSessionLocked(*sess) })
	return c.reconcile(ctx, *sess, false)
}

// DispatchDeepLink hands raw to the Run loop and waits for the result, so
// links typed by the user are ordered with pushed events and listener links.
// It blocks until Run picks the link up or ctx is done.
func (c *Controller) DispatchDeepLink(ctx context.Context, raw string) error {
	req := linkRequest{raw: raw, reply: make(chan error, 1)}
	select {
	case c.linkReqs <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run subscribes to auth events, starts the controller and then serializes
// pushed events, deep links and refresh ticks until ctx is done.
func (c *Controller) Run(ctx context.Context, links <-chan string) error {
	events, cancel := c.client.Subscribe()
	defer cancel()

	if err := c.Start(ctx); err != nil {
		c.logger.Warn(ctx, "start failed", "error", err)
	}

	var tick <-chan time.Time
	if c.interval > 0 {
		t := time.NewTicker(c.interval)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			_ = c.HandleAuthEvent(ctx, ev)
		case raw, ok := <-links:
			if !ok {
				links = nil
				continue
			}
			_ = c.HandleDeepLink(ctx, raw)
		case req := <-c.linkReqs:
			req.reply <- c.HandleDeepLink(ctx, req.raw)
		case <-tick:
			_ = c.Refresh(ctx)
		}
	}
}
