package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/noxus/internal/common"
	"github.com/dmitrijs2005/noxus/internal/cryptox"
	"github.com/dmitrijs2005/noxus/internal/dbx"
	"github.com/dmitrijs2005/noxus/internal/logging"
	"github.com/dmitrijs2005/noxus/internal/server/config"
	"github.com/dmitrijs2005/noxus/internal/server/models"
	"github.com/dmitrijs2005/noxus/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/noxus/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/noxus/internal/server/repositories/users"
)

var cheapParams = cryptox.Params{Time: 1, Memory: 8 * 1024, Threads: 1, SaltLen: 8, KeyLen: 16}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "k"
	cfg.AccessTokenValidityDuration = time.Hour
	cfg.RefreshTokenValidityDuration = 2 * time.Hour
	cfg.RecoveryTokenValidityDuration = 10 * time.Minute
	return cfg
}

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.sent = append(m.sent, sentMail{to, subject, body})
	return m.err
}

// --- in-memory repositories ---

type fakeUsersRepo struct {
	mu     sync.Mutex
	byID   map[string]*models.User
	getErr error
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.byID {
		if x.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	c := *u
	c.CreatedAt = time.Now()
	f.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, x := range f.byID {
		if x.Email == email {
			c := *x
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	x, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *x
	return &c, nil
}

func (f *fakeUsersRepo) UpdatePassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	x, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	x.PasswordHash = hash
	return nil
}

type fakeTokensRepo struct {
	mu        sync.Mutex
	tokens    map[string]*models.RefreshToken
	createErr error
}

func (f *fakeTokensRepo) Create(_ context.Context, userID, token string, validity time.Duration, recovery bool) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity), Recovery: recovery}
	return nil
}

func (f *fakeTokensRepo) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *t
	return &c, nil
}

func (f *fakeTokensRepo) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
	return nil
}

func (f *fakeTokensRepo) DeleteForUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, t := range f.tokens {
		if t.UserID == userID {
			delete(f.tokens, k)
		}
	}
	return nil
}

func (f *fakeTokensRepo) ClearRecovery(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.UserID == userID {
			t.Recovery = false
		}
	}
	return nil
}

func (f *fakeTokensRepo) forUser(userID string) []*models.RefreshToken {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.RefreshToken
	for _, t := range f.tokens {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

// fakeStamp is the updated_at the fake profile repository writes, as the
// database does with now().
var fakeStamp = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type fakeProfilesRepo struct {
	mu   sync.Mutex
	rows map[string]*models.Profile
}

func (f *fakeProfilesRepo) Get(_ context.Context, id string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakeProfilesRepo) Insert(_ context.Context, p *models.Profile) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[p.ID]; ok {
		return nil, common.ErrorAlreadyExists
	}
	c := *p
	c.UpdatedAt = fakeStamp
	f.rows[p.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeProfilesRepo) Upsert(_ context.Context, p *models.Profile) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *p
	if old, ok := f.rows[p.ID]; ok && c.AvatarURL == "" {
		c.AvatarURL = old.AvatarURL
	}
	c.UpdatedAt = fakeStamp
	f.rows[p.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeProfilesRepo) SetAvatar(_ context.Context, id, url string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	p.AvatarURL = url
	c := *p
	return &c, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeTokensRepo
	p *fakeProfilesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u: &fakeUsersRepo{byID: map[string]*models.User{}},
		r: &fakeTokensRepo{tokens: map[string]*models.RefreshToken{}},
		p: &fakeProfilesRepo{rows: map[string]*models.Profile{}},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.r }
func (m *fakeRepoManager) Profiles(dbx.DBTX) profiles.Repository           { return m.p }

func newUserService(t *testing.T, db *sql.DB, rm *fakeRepoManager, mailer Mailer) *UserService {
	t.Helper()
	if mailer == nil {
		mailer = &fakeMailer{}
	}
	s := NewUserService(db, rm, testConfig(), mailer, logging.Nop())
	s.hashParams = cheapParams
	return s
}
