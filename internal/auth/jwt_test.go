package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/mediaverse-be/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_IssueAndVerify(t *testing.T) {
	t.Parallel()

	s := NewTokenService("super-secret", 0)

	tok, err := s.Issue("user-123")
	require.NoError(t, err)

	got, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", got)
}

func TestTokenService_NoExpiryByDefault(t *testing.T) {
	t.Parallel()

	s := NewTokenService("k", 0)
	tok, err := s.Issue("u1")
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}

func TestTokenService_Expired(t *testing.T) {
	t.Parallel()

	s := NewTokenService("k", time.Minute)
	tok, err := s.Issue("u1")
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = s.Verify(tok)
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestTokenService_VerifyFailures(t *testing.T) {
	t.Parallel()

	s := NewTokenService("right-secret", 0)
	other, err := NewTokenService("wrong-secret", 0).Issue("u1")
	require.NoError(t, err)

	noID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{}).SignedString([]byte("right-secret"))
	require.NoError(t, err)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{ID: "u1"}).SignedString([]byte("right-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"malformed", "not.a.jwt"},
		{"wrong signature", other},
		{"no id claim", noID},
		{"unexpected method", wrongAlg},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Verify(tc.token)
			assert.True(t, errors.Is(err, common.ErrInvalidToken), "got %v", err)
		})
	}
}
