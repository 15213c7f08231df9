package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByKind(t *testing.T) {
	custom := ErrNotFound.WithMessage("User not found")
	wrapped := fmt.Errorf("loading user: %w", custom)

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrForbidden))
	assert.Equal(t, "User not found", custom.Error())
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"duplicate email", ErrDuplicateEmail, http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("x: %w", ErrNotFound), http.StatusNotFound},
		{"invalid credentials", ErrInvalidCredentials, http.StatusUnauthorized},
		{"invalid token", ErrInvalidToken, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"weak password", ErrWeakPassword, http.StatusBadRequest},
		{"infrastructure", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusCode(tc.err))
		})
	}
}

func TestPublicMessage_HidesInfrastructureErrors(t *testing.T) {
	assert.Equal(t, "Something went wrong!", PublicMessage(errors.New("dial tcp: refused")))
	assert.Equal(t, ErrForbidden.Message, PublicMessage(fmt.Errorf("wrap: %w", ErrForbidden)))
}
