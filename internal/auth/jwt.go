package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/mediaverse-be/internal/common"
)

// Claims defines the JWT claims structure.
type Claims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed session tokens.
type TokenService struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewTokenService creates a TokenService signing with secret. A zero ttl
// issues tokens without an expiry claim.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{key: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a new token for userID.
func (s *TokenService) Issue(userID string) (string, error) {
	claims := &Claims{ID: userID}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(s.now().Add(s.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

// Verify parses tokenStr and returns the user id it carries. Every failure
// is reported as common.ErrInvalidToken.
func (s *TokenService) Verify(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", common.ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrInvalidToken.WithMessage("Not authorized, token expired")
		}
		return "", common.ErrInvalidToken
	}
	if !token.Valid || claims.ID == "" {
		return "", common.ErrInvalidToken
	}
	return claims.ID, nil
}
