// Package deeplink classifies the custom-scheme URLs the OS hands to the
// client: password-recovery callbacks, OAuth completions and token-bearing
// links whose fragment carries a session.
package deeplink

import (
	"net/url"
	"strings"
)

const (
	// RecoveryMarker is the path of the password-recovery callback.
	RecoveryMarker = "reset-callback"
	// RecoveryTypeMarker is the fragment marker the store adds to recovery links.
	RecoveryTypeMarker = "type=recovery"
	// OAuthMarker is the path of the OAuth provider callback.
	OAuthMarker = "google-auth"
)

type Kind int

const (
	Unrecognized Kind = iota
	TokenBearing
	OAuthSuccess
	Recovery
)

func (k Kind) String() string {
	switch k {
	case TokenBearing:
		return "token_bearing"
	case OAuthSuccess:
		return "oauth_success"
	case Recovery:
		return "recovery"
	default:
		return "unrecognized"
	}
}

// Link is a parsed deep link. Recovery and token presence are independent:
// a recovery link usually carries tokens too.
type Link struct {
	Raw string

	Recovery bool
	OAuth    bool

	AccessToken  string
	RefreshToken string

	// Error is the store's error_description (or error) when the link
	// reports a failure instead of a session.
	Error string
}

// HasTokens reports whether the fragment carried both tokens.
func (l Link) HasTokens() bool {
	return l.AccessToken != "" && l.RefreshToken != ""
}

// Kind returns the highest-priority classification of l.
func (l Link) Kind() Kind {
	switch {
	case l.Recovery:
		return Recovery
	case l.OAuth:
		return OAuthSuccess
	case l.HasTokens():
		return TokenBearing
	default:
		return Unrecognized
	}
}

// Parse classifies raw. It never fails: anything it does not understand is
// an Unrecognized link.
func Parse(raw string) Link {
	l := Link{Raw: raw}

	l.Recovery = strings.Contains(raw, RecoveryMarker) || strings.Contains(raw, RecoveryTypeMarker)
	l.OAuth = !l.Recovery && strings.Contains(raw, OAuthMarker)

	_, fragment, ok := strings.Cut(raw, "#")
	if !ok {
		return l
	}
	params := fragmentParams(fragment)

	access, refresh := params["access_token"], params["refresh_token"]
	if access != "" && refresh != "" {
		l.AccessToken, l.RefreshToken = access, refresh
	}

	if d := params["error_description"]; d != "" {
		l.Error = d
	} else {
		l.Error = params["error"]
	}
	return l
}

// fragmentParams splits key=value pairs separated by &. Values are
// unescaped when possible and kept verbatim otherwise; first key wins.
func fragmentParams(fragment string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(fragment, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		if u, err := url.QueryUnescape(v); err == nil {
			v = u
		}
		if _, seen := out[k]; !seen {
			out[k] = v
		}
	}
	return out
}

// RecoveryRedirect is the redirect URL sent with password-reset requests.
func RecoveryRedirect(scheme string) string {
	return scheme + "://" + RecoveryMarker
}

// OAuthRedirect is the redirect URL sent with OAuth sign-in requests.
func OAuthRedirect(scheme string) string {
	return scheme + "://" + OAuthMarker
}
