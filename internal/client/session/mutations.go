package session

import (
	"context"
	"time"

	"github.com/dmitrijs2005/noxus/internal/client/models"
	"github.com/dmitrijs2005/noxus/internal/client/streak"
)

// mutate edits local state with fn, derives the tier and pushes the result
// when fn reports a change. Edits are refused while a password update is
// pending.
func (c *Controller) mutate(ctx context.Context, fn func(u *models.UserState, now time.Time) (bool, error)) error {
	now := c.now()

	var (
		err     error
		changed bool
	)
	c.update(func() {
		if c.state == RecoveryPending {
			err = ErrRecoveryPending
			return
		}
		if c.user == nil {
			err = ErrNoProfile
			return
		}
		u := *c.user
		if changed, err = fn(&u, now); err != nil || !changed {
			return
		}
		c.deriveLocked(&u)
		c.user = &u
	})
	if err != nil || !changed {
		return err
	}

	c.push(ctx)
	return nil
}

// EditStreakDays makes days authoritative and moves the start date to
// match.
func (c *Controller) EditStreakDays(ctx context.Context, days int) error {
	if days < 0 {
		return ErrNegativeDays
	}
	return c.mutate(ctx, func(u *models.UserState, now time.Time) (bool, error) {
		u.StreakDays = days
		u.StartDate = streak.StartForDays(days, now)
		return true, nil
	})
}

// EditStartDate makes date authoritative. Dates in the future are clamped
// to now.
func (c *Controller) EditStartDate(ctx context.Context, date time.Time) error {
	return c.mutate(ctx, func(u *models.UserState, now time.Time) (bool, error) {
		if date.After(now) {
			date = now
		}
		u.StartDate = date
		u.StreakDays = streak.DaysSinceDate(date, now)
		return true, nil
	})
}

// Relapse resets the streak to zero starting now. It destroys the current
// streak and therefore requires confirmed.
func (c *Controller) Relapse(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	return c.mutate(ctx, func(u *models.UserState, now time.Time) (bool, error) {
		u.StreakDays = 0
		u.StartDate = now
		return true, nil
	})
}

func (c *Controller) CompleteOnboarding(ctx context.Context) error {
	return c.mutate(ctx, func(u *models.UserState, _ time.Time) (bool, error) {
		c.view = models.ViewDashboard
		if u.HasOnboarded {
			return false, nil
		}
		u.HasOnboarded = true
		return true, nil
	})
}

// SetAvatar uploads the image at path and records it on the profile.
func (c *Controller) SetAvatar(ctx context.Context, path string) error {
	c.mu.Lock()
	loaded := c.user != nil
	c.mu.Unlock()
	if !loaded {
		return ErrNoProfile
	}

	p, err := c.avatars.Upload(ctx, path)
	if err != nil {
		return err
	}
	c.update(func() {
		if c.user != nil {
			u := *c.user
			u.AvatarURL = p.AvatarURL
			c.user = &u
		}
	})
	return nil
}

// Navigate switches the view. It is refused while a password update is
// pending and for views whose data is not loaded.
func (c *Controller) Navigate(v models.View) error {
	var err error
	c.update(func() {
		switch {
		case c.state == Unauthenticated:
			if v != models.ViewAuth {
				err = ErrNotSignedIn
			}
		case c.state == RecoveryPending && v != models.ViewUpdatePassword:
			err = ErrRecoveryPending
		case v == models.ViewAuth:
			err = ErrSignedIn
		case v != models.ViewUpdatePassword && c.user == nil:
			err = ErrNoProfile
		}
		if err == nil {
			c.view = v
		}
	})
	return err
}
