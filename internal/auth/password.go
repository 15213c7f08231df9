package auth

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/isdelr/mediaverse-be/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and checks passwords with bcrypt.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher using cost, clamped to bcrypt's valid range.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt hash of password.
func (h *Hasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare checks password against hash. A mismatch is reported as
// common.ErrInvalidCredentials.
func (h *Hasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return common.ErrInvalidCredentials
	}
	return fmt.Errorf("failed to compare password: %w", err)
}

// RandomHash hashes a random password, for accounts that sign in through a
// third party and never set one.
func (h *Hasher) RandomHash() (string, error) {
	return h.Hash(uuid.NewString())
}
