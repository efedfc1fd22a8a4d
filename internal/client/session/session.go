// Package session carries the authenticated user's identity for the current
// client session. The authentication protocol itself is handled elsewhere;
// this package only reads the identity claims the hosted service embeds in
// the access token it issued.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoSubject = errors.New("access token carries no subject")

// Session identifies the signed-in user. All reservoir tables and gateway
// calls are scoped by UserID.
type Session struct {
	// AccessToken is the bearer token presented on every gateway call.
	AccessToken string

	// UserID is the subject claim of the access token.
	UserID string

	// ExpiresAt is the token expiry, zero if the token carries none.
	ExpiresAt time.Time
}

// FromAccessToken builds a Session from a token issued by the hosted
// service. The signature is verified server-side on every request; locally
// the claims are only parsed, not verified.
func FromAccessToken(token string) (*Session, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrNoSubject
	}

	s := &Session{AccessToken: token, UserID: sub}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time
	}
	return s, nil
}

// Expired reports whether the token expiry has passed. Tokens without an
// expiry never expire locally.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
