package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/noxus/internal/client/models"
)

const dateLayout = "2006-01-02"

// Show prints the current view.
func (a *App) Show(_ context.Context, _ []string) error {
	renderSnapshot(a.out, a.ctrl.Snapshot(), a.ctrl.Levels())
	return nil
}

// Levels prints the tier timeline.
func (a *App) Levels(_ context.Context, _ []string) error {
	days := -1
	if u := a.ctrl.Snapshot().User; u != nil {
		days = u.StreakDays
	}
	renderLevels(a.out, a.ctrl.Levels(), days)
	return nil
}

func (a *App) Navigate(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: go <dashboard|progression|profile|onboarding|update_password>")
		return nil
	}
	v, ok := models.ParseView(args[0])
	if !ok {
		return a.fail(fmt.Errorf("unknown view %q", args[0]))
	}
	if err := a.ctrl.Navigate(v); err != nil {
		return a.fail(err)
	}
	return a.Show(ctx, nil)
}

// EditDays sets the streak length in days.
func (a *App) EditDays(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: days <n>")
		return nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return a.fail(fmt.Errorf("invalid number of days %q", args[0]))
	}
	if err := a.ctrl.EditStreakDays(ctx, n); err != nil {
		return a.fail(err)
	}
	return a.Show(ctx, nil)
}

// EditDate sets the streak start date, read in local time.
func (a *App) EditDate(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: date <YYYY-MM-DD>")
		return nil
	}
	date, err := time.ParseInLocation(dateLayout, args[0], time.Local)
	if err != nil {
		return a.fail(fmt.Errorf("invalid date %q, want YYYY-MM-DD", args[0]))
	}
	if err := a.ctrl.EditStartDate(ctx, date); err != nil {
		return a.fail(err)
	}
	return a.Show(ctx, nil)
}

// Relapse resets the streak after the user confirms.
func (a *App) Relapse(ctx context.Context, _ []string) error {
	ok, err := getConfirmation(a.reader, "This resets your streak to zero. Continue?", a.out)
	if err != nil {
		return a.fail(err)
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	if err := a.ctrl.Relapse(ctx, true); err != nil {
		return a.fail(err)
	}
	return a.Show(ctx, nil)
}

func (a *App) CompleteOnboarding(ctx context.Context, _ []string) error {
	if err := a.ctrl.CompleteOnboarding(ctx); err != nil {
		return a.fail(err)
	}
	return a.Show(ctx, nil)
}

// Avatar uploads a profile picture.
func (a *App) Avatar(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: avatar <path>")
		return nil
	}
	if err := a.ctrl.SetAvatar(ctx, args[0]); err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, "Avatar updated.")
	return nil
}
