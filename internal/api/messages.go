package api

import (
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"
)

type Empty struct{}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Session is an access/refresh token pair issued for a user. Recovery marks
// a session minted by a password-reset email.
type Session struct {
	AccessToken  string                 `json:"access_token"`
	RefreshToken string                 `json:"refresh_token"`
	TokenType    string                 `json:"token_type"`
	ExpiresIn    int64                  `json:"expires_in"`
	ExpiresAt    *timestamppb.Timestamp `json:"expires_at,omitempty"`
	User         User                   `json:"user"`
	Recovery     bool                   `json:"recovery,omitempty"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	Session Session `json:"session"`
}

type SignUpResponse struct {
	User User `json:"user"`
}

type RefreshSessionRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type GetUserResponse struct {
	User      User                   `json:"user"`
	Recovery  bool                   `json:"recovery,omitempty"`
	ExpiresAt *timestamppb.Timestamp `json:"expires_at,omitempty"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ResetPasswordRequest struct {
	Email      string `json:"email"`
	RedirectTo string `json:"redirect_to"`
}

type UpdateUserRequest struct {
	Password string `json:"password"`
}

type OAuthRequest struct {
	Provider   string `json:"provider"`
	RedirectTo string `json:"redirect_to"`
}

type OAuthResponse struct {
	URL string `json:"url"`
}

// Profile is the per-user progress row.
type Profile struct {
	ID           string                 `json:"id"`
	StartDate    *timestamppb.Timestamp `json:"start_date,omitempty"`
	CurrentLevel string                 `json:"current_level"`
	HasOnboarded bool                   `json:"has_onboarded"`
	AvatarURL    string                 `json:"avatar_url,omitempty"`
	Email        string                 `json:"email,omitempty"`
	UpdatedAt    *timestamppb.Timestamp `json:"updated_at,omitempty"`
}

type GetProfileRequest struct {
	ID string `json:"id"`
}

type ProfileRequest struct {
	Profile Profile `json:"profile"`
}

type ProfileResponse struct {
	Profile Profile `json:"profile"`
}

type PresignAvatarRequest struct {
	Ext string `json:"ext"`
}

type PresignAvatarResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type SetAvatarRequest struct {
	Key string `json:"key"`
}

// Timestamp converts t for the wire; the zero time becomes nil.
func Timestamp(t time.Time) *timestamppb.Timestamp {
	if t.IsZero() {
		return nil
	}
	return timestamppb.New(t)
}

// Time is the inverse of Timestamp.
func Time(ts *timestamppb.Timestamp) time.Time {
	if ts == nil {
		return time.Time{}
	}
	return ts.AsTime()
}
