package models

import "strings"

// View is the screen the client currently presents.
type View string

const (
	ViewAuth           View = "AUTH"
	ViewOnboarding     View = "ONBOARDING"
	ViewDashboard      View = "DASHBOARD"
	ViewProgression    View = "PROGRESSION"
	ViewProfile        View = "PROFILE"
	ViewUpdatePassword View = "UPDATE_PASSWORD"
)

// ParseView accepts a view name in any case.
func ParseView(s string) (View, bool) {
	switch v := View(strings.ToUpper(s)); v {
	case ViewAuth, ViewOnboarding, ViewDashboard, ViewProgression, ViewProfile, ViewUpdatePassword:
		return v, true
	}
	return "", false
}
