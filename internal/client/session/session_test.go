package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestFromAccessToken_ReadsSubjectAndExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})

	s, err := FromAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, token, s.AccessToken)
	assert.True(t, s.ExpiresAt.Equal(exp))
	assert.False(t, s.Expired(time.Now()))
	assert.True(t, s.Expired(exp.Add(time.Second)))
}

func TestFromAccessToken_NoExpiryNeverExpiresLocally(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "u1"})

	s, err := FromAccessToken(token)
	require.NoError(t, err)
	assert.False(t, s.Expired(time.Now().Add(100 * 365 * 24 * time.Hour)))
}

func TestFromAccessToken_MissingSubject(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"exp": time.Now().Unix()})

	_, err := FromAccessToken(token)
	assert.ErrorIs(t, err, ErrNoSubject)
}

func TestFromAccessToken_Garbage(t *testing.T) {
	_, err := FromAccessToken("not-a-token")
	assert.Error(t, err)
}
