package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/noxus/internal/client/client"
	"github.com/dmitrijs2005/noxus/internal/client/levels"
	"github.com/dmitrijs2005/noxus/internal/client/models"
	"github.com/dmitrijs2005/noxus/internal/client/streak"
	"github.com/dmitrijs2005/noxus/internal/logging"
)

// ProfileReconciler fetches the remote profile of a session, creating it
// with defaults when the identity has none yet, and turns it into local
// state.
type ProfileReconciler struct {
	client client.Client
	table  []levels.Level
	logger logging.Logger

	// Now is the clock; tests replace it.
	Now func() time.Time
}

func NewProfileReconciler(c client.Client, table []levels.Level, l logging.Logger) *ProfileReconciler {
	return &ProfileReconciler{
		client: c,
		table:  table,
		logger: l.With("module", "reconciler"),
		Now:    time.Now,
	}
}

// Reconcile returns the local state for sess's profile. Only "not found"
// leads to creation; any other fetch error is returned as is.
func (r *ProfileReconciler) Reconcile(ctx context.Context, sess models.Session) (models.UserState, error) {
	now := r.Now()

	p, err := r.client.GetProfile(ctx, sess.User.ID)
	if errors.Is(err, client.ErrNotFound) {
		p, err = r.create(ctx, sess, now)
	}
	if err != nil {
		return models.UserState{}, err
	}

	return StateFromProfile(*p, now, r.table), nil
}

func (r *ProfileReconciler) create(ctx context.Context, sess models.Session, now time.Time) (*models.Profile, error) {
	r.logger.Info(ctx, "no profile yet, creating default", "user_id", sess.User.ID)

	p, err := r.client.InsertProfile(ctx, DefaultProfile(sess, now, r.table))
	if errors.Is(err, client.ErrAlreadyExists) {
		// created concurrently, e.g. by another device
		return r.client.GetProfile(ctx, sess.User.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return p, nil
}

// DefaultProfile is the row created for an identity without a profile: a
// zero-day streak starting now, the lowest tier, onboarding done.
func DefaultProfile(sess models.Session, now time.Time, table []levels.Level) models.Profile {
	return models.Profile{
		ID:           sess.User.ID,
		StartDate:    now,
		CurrentLevel: string(levels.Lowest(table).Key),
		HasOnboarded: true,
		Email:        sess.User.Email,
		UpdatedAt:    now,
	}
}

// StateFromProfile derives local state from a profile row at now. A row
// without a start date counts as starting now; a row without a level gets
// the lowest tier.
func StateFromProfile(p models.Profile, now time.Time, table []levels.Level) models.UserState {
	start := p.StartDate
	if start.IsZero() {
		start = now
	}
	level := p.CurrentLevel
	if level == "" {
		level = string(levels.Lowest(table).Key)
	}
	return models.UserState{
		HasOnboarded: p.HasOnboarded,
		StreakDays:   streak.Days(start, now),
		CurrentLevel: level,
		StartDate:    start,
		Email:        p.Email,
		AvatarURL:    p.AvatarURL,
	}
}
