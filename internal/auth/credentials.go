// Package auth hashes and verifies passwords and mints opaque bearer tokens.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

const tokenBytes = 32

var (
	// ErrHashing is returned when a password cannot be hashed.
	ErrHashing = errors.New("password hashing failed")

	// ErrVerification is returned when a stored hash is malformed.
	ErrVerification = errors.New("password verification failed")
)

// randRead is swapped in tests.
var randRead = rand.Read

// PasswordHasher wraps bcrypt with a fixed cost.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher using cost, or bcrypt.DefaultCost when
// cost is outside bcrypt's accepted range.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Cost returns the bcrypt cost used for new hashes.
func (h *PasswordHasher) Cost() int {
	return h.cost
}

// Hash returns a salted bcrypt encoding of password. Empty passwords and
// passwords longer than MaxPasswordBytes are rejected with ErrHashing.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: empty password", ErrHashing)
	}
	if len(password) > MaxPasswordBytes {
		return "", fmt.Errorf("%w: password exceeds %d bytes", ErrHashing, MaxPasswordBytes)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashing, err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash. A mismatch is (false, nil);
// only a malformed hash produces ErrVerification. Passwords longer than
// MaxPasswordBytes never match, but still pay for a comparison.
func (h *PasswordHasher) Verify(password, hash string) (bool, error) {
	tooLong := len(password) > MaxPasswordBytes
	if tooLong {
		password = password[:MaxPasswordBytes]
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return !tooLong, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrVerification, err)
	}
}

// GenerateToken returns a URL-safe base64 string of 32 bytes read from crypto/rand.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := randRead(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
