package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/noxus/internal/client/levels"
	"github.com/dmitrijs2005/noxus/internal/client/models"
	"github.com/dmitrijs2005/noxus/internal/client/session"
	"github.com/fatih/color"
)

const barWidth = 20

var (
	errorColor = color.New(color.FgRed, color.Bold)
	headColor  = color.New(color.FgCyan)
	mutedColor = color.New(color.FgHiBlack)
	warnColor  = color.New(color.FgYellow)

	tierColors = map[levels.Key]*color.Color{
		levels.Bronze:    color.New(color.FgYellow),
		levels.Silver:    color.New(color.FgWhite),
		levels.Gold:      color.New(color.FgHiYellow, color.Bold),
		levels.Diamond:   color.New(color.FgHiCyan, color.Bold),
		levels.Emerald:   color.New(color.FgGreen, color.Bold),
		levels.Guardian:  color.New(color.FgHiBlue, color.Bold),
		levels.Celestial: color.New(color.FgHiMagenta, color.Bold),
	}
)

func tierColor(k levels.Key) *color.Color {
	if c, ok := tierColors[k]; ok {
		return c
	}
	return color.New(color.Reset)
}

func viewTitle(v models.View) string {
	switch v {
	case models.ViewAuth:
		return "sign in"
	case models.ViewOnboarding:
		return "onboarding"
	case models.ViewDashboard:
		return "dashboard"
	case models.ViewProgression:
		return "progression"
	case models.ViewProfile:
		return "profile"
	case models.ViewUpdatePassword:
		return "update password"
	}
	return strings.ToLower(string(v))
}

// progressBar fills width cells in proportion to the way from from to to.
func progressBar(days, from, to, width int) string {
	filled := width
	if to > from {
		filled = (days - from) * width / (to - from)
	}
	filled = min(max(filled, 0), width)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func renderSnapshot(w io.Writer, s session.Snapshot, table []levels.Level) {
	headColor.Fprintf(w, "== %s ==\n", viewTitle(s.View))

	switch {
	case s.State == session.RecoveryPending:
		warnColor.Fprintln(w, "Password update pending: use 'password' to set a new password.")
		return
	case s.State == session.Unauthenticated:
		fmt.Fprintln(w, "Not signed in: use 'signin', 'signup', 'oauth' or 'reset'.")
		return
	case s.Loading:
		mutedColor.Fprintln(w, "Loading profile...")
		return
	case s.User == nil:
		mutedColor.Fprintln(w, "Profile not loaded yet.")
		return
	}

	u := s.User
	if s.View == models.ViewOnboarding {
		fmt.Fprintln(w, "Welcome! Use 'onboard' when you are ready to start.")
	}

	cur := levels.Resolve(u.StreakDays, table)
	fmt.Fprintf(w, "Account: %s\n", s.Email)
	fmt.Fprintf(w, "Streak:  %d days (since %s)\n", u.StreakDays, u.StartDate.Local().Format(dateLayout))
	fmt.Fprintf(w, "Tier:    %s\n", tierColor(cur.Key).Sprint(cur.Name))

	if next, remaining, ok := levels.Next(u.StreakDays, table); ok {
		fmt.Fprintf(w, "Next:    %s in %d days %s\n",
			tierColor(next.Key).Sprint(next.Name), remaining,
			progressBar(u.StreakDays, cur.DaysRequired, next.DaysRequired, barWidth))
	} else {
		fmt.Fprintln(w, "Next:    top tier reached")
	}

	if s.View == models.ViewProfile {
		avatar := u.AvatarURL
		if avatar == "" {
			avatar = "(none)"
		}
		fmt.Fprintf(w, "Avatar:  %s\n", avatar)
	}
}

// renderLevels prints the tier table, marking the tier of days when days
// is not negative.
func renderLevels(w io.Writer, table []levels.Level, days int) {
	var cur levels.Key
	if days >= 0 {
		cur = levels.Resolve(days, table).Key
	}
	for _, l := range table {
		marker := "  "
		if l.Key == cur {
			marker = "> "
		}
		fmt.Fprintf(w, "%s%-18s %4d days\n", marker, tierColor(l.Key).Sprint(l.Name), l.DaysRequired)
	}
}
