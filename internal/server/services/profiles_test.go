package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/noxus/internal/common"
	"github.com/dmitrijs2005/noxus/internal/server/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileService(t *testing.T, rm *fakeRepoManager) *ProfileService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	return NewProfileService(db, rm)
}

func TestProfileService_OwnRowOnly(t *testing.T) {
	s := newProfileService(t, newFakeRepoManager())
	p := &models.Profile{ID: "u2", StartDate: time.Now(), CurrentLevel: "BRONZE"}

	_, err := s.Get(context.Background(), "u1", "u2")
	assert.ErrorIs(t, err, common.ErrorForbidden)
	_, err = s.Insert(context.Background(), "u1", p)
	assert.ErrorIs(t, err, common.ErrorForbidden)
	_, err = s.Upsert(context.Background(), "u1", p)
	assert.ErrorIs(t, err, common.ErrorForbidden)
	_, err = s.Get(context.Background(), "", "u2")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestProfileService_InsertGetUpsert(t *testing.T) {
	rm := newFakeRepoManager()
	s := newProfileService(t, rm)
	start := fakeStamp.AddDate(0, 0, -3)

	_, err := s.Get(context.Background(), "u1", "u1")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	// a client supplied updated_at is overwritten by the store
	stale := fakeStamp.AddDate(-1, 0, 0)
	created, err := s.Insert(context.Background(), "u1", &models.Profile{ID: "u1", StartDate: start, CurrentLevel: " BRONZE ", Email: "a@b.co", UpdatedAt: stale})
	require.NoError(t, err)
	want := &models.Profile{ID: "u1", StartDate: start, CurrentLevel: "BRONZE", Email: "a@b.co", UpdatedAt: fakeStamp}
	if diff := cmp.Diff(want, created); diff != "" {
		t.Errorf("insert mismatch (-want +got):\n%s", diff)
	}

	_, err = s.Insert(context.Background(), "u1", &models.Profile{ID: "u1", StartDate: start, CurrentLevel: "BRONZE"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	rm.p.rows["u1"].AvatarURL = "http://img/a.png"
	updated, err := s.Upsert(context.Background(), "u1", &models.Profile{ID: "u1", StartDate: start, CurrentLevel: "PRATA", HasOnboarded: true})
	require.NoError(t, err)
	assert.Equal(t, "PRATA", updated.CurrentLevel)
	assert.True(t, updated.HasOnboarded)
	assert.Equal(t, "http://img/a.png", updated.AvatarURL)

	got, err := s.Get(context.Background(), "u1", "u1")
	require.NoError(t, err)
	if diff := cmp.Diff(updated, got); diff != "" {
		t.Errorf("get mismatch (-want +got):\n%s", diff)
	}
}

func TestProfileService_Validation(t *testing.T) {
	s := newProfileService(t, newFakeRepoManager())

	_, err := s.Upsert(context.Background(), "u1", &models.Profile{ID: "u1", StartDate: time.Now()})
	assert.ErrorIs(t, err, common.ErrorValidation)
	_, err = s.Upsert(context.Background(), "u1", &models.Profile{ID: "u1", CurrentLevel: "BRONZE"})
	assert.ErrorIs(t, err, common.ErrorValidation)
}
