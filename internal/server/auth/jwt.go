// Package auth mints and verifies the JWTs of the identity store: access
// tokens carried by sessions and the signed state of OAuth round trips.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/noxus/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const (
	audienceAccess = "authenticated"
	audienceState  = "oauth-state"
)

// Claims carries the identity of an access token. Recovery marks tokens
// minted by a password-reset email.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"uid"`
	Email    string `json:"email,omitempty"`
	Recovery bool   `json:"recovery,omitempty"`
}

// StateClaims is the payload of the OAuth state parameter.
type StateClaims struct {
	jwt.RegisteredClaims
	Provider   string `json:"provider"`
	RedirectTo string `json:"redirect_to"`
}

// GenerateToken signs an access token for the identity in c and returns it
// with its expiry.
func GenerateToken(c Claims, secretKey []byte, validityDuration time.Duration) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(validityDuration)

	c.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   c.UserID,
		Audience:  jwt.ClaimStrings{audienceAccess},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expires, nil
}

// ParseToken verifies tokenString. An expired token yields
// common.ErrTokenExpired; any other failure common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}
	if err := parse(tokenString, claims, audienceAccess, secretKey); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing uid", common.ErrInvalidToken)
	}
	return claims, nil
}

func GenerateState(provider, redirectTo string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	c := StateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{audienceState},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Provider:   provider,
		RedirectTo: redirectTo,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secretKey)
}

func ParseState(state string, secretKey []byte) (*StateClaims, error) {
	claims := &StateClaims{}
	if err := parse(state, claims, audienceState, secretKey); err != nil {
		return nil, err
	}
	return claims, nil
}

func parse(tokenString string, claims jwt.Claims, audience string, secretKey []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return common.ErrTokenExpired
		}
		return fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return common.ErrInvalidToken
	}
	return nil
}
