// Package streak holds the day arithmetic behind a streak: elapsed whole
// days since its start, and the start date implied by a day count.
package streak

import "time"

const day = 24 * time.Hour

// Days returns floor(|now - start| / 24h). The absolute value tolerates a
// start date slightly in the future due to clock skew.
func Days(start, now time.Time) int {
	d := now.Sub(start)
	if d < 0 {
		d = -d
	}
	return int(d / day)
}

// StartForDays returns the start date that makes a streak of days end now.
func StartForDays(days int, now time.Time) time.Time {
	return now.AddDate(0, 0, -days)
}

// DaysSinceDate counts calendar days from date's midnight to today's
// midnight, both taken in now's location. Dates in the future count as 0.
func DaysSinceDate(date, now time.Time) int {
	loc := now.Location()
	from := midnight(date.In(loc))
	to := midnight(now)

	// AddDate keeps the wall clock across DST shifts, so step by calendar
	// days instead of dividing by 24h.
	n := int(to.Sub(from).Hours() / 24)
	for from.AddDate(0, 0, n).After(to) {
		n--
	}
	for !from.AddDate(0, 0, n+1).After(to) {
		n++
	}
	return max(n, 0)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
