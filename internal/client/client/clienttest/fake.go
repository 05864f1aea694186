// Package clienttest provides an in-memory client.Client for tests of the
// layers above the transport.
package clienttest

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/noxus/internal/client/client"
	"github.com/dmitrijs2005/noxus/internal/client/models"
)

// AvatarBaseURL prefixes avatar keys in profiles updated by SetAvatar.
const AvatarBaseURL = "https://cdn.example.com/"

// Fake is an in-memory identity store. Accounts are created by SignUp or
// AddUser; token pairs accepted by SetSession are registered with
// AddTokens. Any method can be made to fail with Fail.
type Fake struct {
	mu sync.Mutex

	users    map[string]string
	tokens   map[string]models.Session
	profiles map[string]models.Profile
	session  *models.Session
	errs     map[string]error
	calls    []string
	upserts  []models.Profile
	subs     []chan models.AuthEvent

	// LastRedirect is the redirect passed to the last reset or OAuth call.
	LastRedirect string
	// PresignURL is returned by PresignAvatarUpload.
	PresignURL string

	// AfterSetSession runs once SetSession has stored the session, before
	// it returns.
	AfterSetSession func(s models.Session)
}

func New() *Fake {
	return &Fake{
		users:      map[string]string{},
		tokens:     map[string]models.Session{},
		profiles:   map[string]models.Profile{},
		errs:       map[string]error{},
		PresignURL: "https://bucket.example.com/upload",
	}
}

// UserID is the id Fake assigns to email.
func UserID(email string) string { return "id-" + email }

func (f *Fake) AddUser(email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[email] = password
}

// AddTokens makes SetSession(s.AccessToken, s.RefreshToken) yield s.
func (f *Fake) AddTokens(s models.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[s.AccessToken] = s
}

// SetCurrent replaces the current session without emitting events.
func (f *Fake) SetCurrent(s *models.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s == nil {
		f.session = nil
		return
	}
	cp := *s
	f.session = &cp
}

func (f *Fake) PutProfile(p models.Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.ID] = p
}

func (f *Fake) Profile(id string) (models.Profile, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	return p, ok
}

// Fail makes method return err until Fail(method, nil).
func (f *Fake) Fail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, method)
		return
	}
	f.errs[method] = err
}

func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Count returns how many times method was called.
func (f *Fake) Count(method string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == method {
			n++
		}
	}
	return n
}

func (f *Fake) Upserts() []models.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Profile(nil), f.upserts...)
}

// Emit delivers ev to all subscribers, dropping it for full ones.
func (f *Fake) Emit(ev models.AuthEvent) {
	f.mu.Lock()
	subs := append([]chan models.AuthEvent(nil), f.subs...)
	f.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// begin records a call and returns the configured failure; f.mu is held
// on return.
func (f *Fake) begin(method string) error {
	f.mu.Lock()
	f.calls = append(f.calls, method)
	return f.errs[method]
}

func (f *Fake) GetSession(ctx context.Context) (*models.Session, error) {
	err := f.begin("GetSession")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if f.session == nil {
		return nil, nil
	}
	s := *f.session
	return &s, nil
}

func (f *Fake) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	err := f.begin("SignInWithPassword")
	if err == nil {
		if pw, ok := f.users[email]; !ok || pw != password {
			err = fmt.Errorf("%w: invalid credentials", client.ErrUnauthorized)
		}
	}
	if err != nil {
		f.mu.Unlock()
		return nil, err
	}
	s := models.Session{
		AccessToken:  "at-" + email,
		RefreshToken: "rt-" + email,
		User:         models.User{ID: UserID(email), Email: email},
	}
	f.session = &s
	f.mu.Unlock()

	f.Emit(models.SignedIn{Session: s})
	return &s, nil
}

func (f *Fake) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	err := f.begin("SignUp")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if _, ok := f.users[email]; ok {
		return nil, client.ErrAlreadyExists
	}
	f.users[email] = password
	return &models.User{ID: UserID(email), Email: email}, nil
}

func (f *Fake) SignInWithOAuth(ctx context.Context, provider, redirectTo string) (string, error) {
	err := f.begin("SignInWithOAuth")
	defer f.mu.Unlock()
	if err != nil {
		return "", err
	}
	f.LastRedirect = redirectTo
	return "https://accounts.example.com/" + provider + "?redirect_to=" + redirectTo, nil
}

func (f *Fake) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	err := f.begin("ResetPasswordForEmail")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	f.LastRedirect = redirectTo
	return nil
}

func (f *Fake) UpdateUser(ctx context.Context, password string) error {
	err := f.begin("UpdateUser")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	if f.session == nil {
		return client.ErrNoSession
	}
	f.users[f.session.User.Email] = password
	f.session.Recovery = false
	return nil
}

func (f *Fake) SetSession(ctx context.Context, accessToken, refreshToken string) (*models.Session, error) {
	err := f.begin("SetSession")
	s, ok := f.tokens[accessToken]
	if err == nil && (!ok || s.RefreshToken != refreshToken) {
		err = fmt.Errorf("%w: invalid token", client.ErrUnauthorized)
	}
	if err != nil {
		f.mu.Unlock()
		return nil, err
	}
	f.session = &s
	hook := f.AfterSetSession
	f.mu.Unlock()

	if hook != nil {
		hook(s)
	}
	if s.Recovery {
		f.Emit(models.PasswordRecovery{Session: s})
	} else {
		f.Emit(models.SignedIn{Session: s})
	}
	return &s, nil
}

func (f *Fake) SignOut(ctx context.Context) error {
	err := f.begin("SignOut")
	f.session = nil
	f.mu.Unlock()

	f.Emit(models.SignedOut{})
	return err
}

func (f *Fake) Subscribe() (<-chan models.AuthEvent, func()) {
	ch := make(chan models.AuthEvent, 16)
	f.mu.Lock()
	f.subs = append(f.subs, ch)
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			for i, c := range f.subs {
				if c == ch {
					f.subs = append(f.subs[:i], f.subs[i+1:]...)
					break
				}
			}
		})
	}
}

func (f *Fake) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	err := f.begin("GetProfile")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, client.ErrNotFound
	}
	return &p, nil
}

func (f *Fake) InsertProfile(ctx context.Context, p models.Profile) (*models.Profile, error) {
	err := f.begin("InsertProfile")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if _, ok := f.profiles[p.ID]; ok {
		return nil, client.ErrAlreadyExists
	}
	f.profiles[p.ID] = p
	return &p, nil
}

func (f *Fake) UpsertProfile(ctx context.Context, p models.Profile) (*models.Profile, error) {
	err := f.begin("UpsertProfile")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	f.profiles[p.ID] = p
	f.upserts = append(f.upserts, p)
	return &p, nil
}

func (f *Fake) PresignAvatarUpload(ctx context.Context, ext string) (string, string, error) {
	err := f.begin("PresignAvatarUpload")
	defer f.mu.Unlock()
	if err != nil {
		return "", "", err
	}
	if f.session == nil {
		return "", "", client.ErrNoSession
	}
	return "avatars/" + f.session.User.ID + "/avatar." + ext, f.PresignURL, nil
}

func (f *Fake) SetAvatar(ctx context.Context, key string) (*models.Profile, error) {
	err := f.begin("SetAvatar")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if f.session == nil {
		return nil, client.ErrNoSession
	}
	p, ok := f.profiles[f.session.User.ID]
	if !ok {
		return nil, client.ErrNotFound
	}
	p.AvatarURL = AvatarBaseURL + key
	f.profiles[p.ID] = p
	return &p, nil
}

func (f *Fake) Ping(ctx context.Context) error {
	err := f.begin("Ping")
	f.mu.Unlock()
	return err
}

func (f *Fake) Close() error {
	err := f.begin("Close")
	f.mu.Unlock()
	return err
}

var _ client.Client = (*Fake)(nil)
