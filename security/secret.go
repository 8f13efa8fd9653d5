package security

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrSecretMismatch is returned when a presented secret does not match its hash.
var ErrSecretMismatch = errors.New("secret mismatch")

// HashSecret hashes a client secret or user password for storage.
func HashSecret(secret string) (string, error) {
	if secret == "" {
		return "", nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hash), nil
}

// CompareSecret checks a presented secret against a stored bcrypt hash.
// An empty hash only matches an empty secret (public clients).
func CompareSecret(hash, secret string) error {
	if hash == "" {
		if secret == "" {
			return nil
		}
		return ErrSecretMismatch
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		return ErrSecretMismatch
	}
	return nil
}

// ConstantTimeEqual compares two strings without leaking timing information.
func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// dummyHash stands in for the hash of a client or user that does not exist.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// CompareUnknown spends the same bcrypt work as CompareSecret for a subject
// that was not found, so response timing does not reveal which ids exist.
// It always returns ErrSecretMismatch.
func CompareUnknown(secret string) error {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(secret))
	return ErrSecretMismatch
}
