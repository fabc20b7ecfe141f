package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Password-related errors
var (
	// ErrPasswordTooShort is returned when the password is too short.
	ErrPasswordTooShort = errors.New("password is too short")
	// ErrPasswordMismatch is returned when a password does not match its hash.
	ErrPasswordMismatch = errors.New("password does not match")
)

// DefaultBCryptCost is the default cost factor for password hashing.
const DefaultBCryptCost = bcrypt.DefaultCost

// MinPasswordLength is the shortest password HashPassword accepts.
const MinPasswordLength = 8

// HashPassword hashes password with the default bcrypt cost.
func HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, DefaultBCryptCost)
}

// HashPasswordWithCost hashes password with a specific bcrypt cost.
func HashPasswordWithCost(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return "", fmt.Errorf("cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword returns nil if password matches storedHash.
func CheckPassword(password, storedHash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}

// NeedsRehash reports whether storedHash was created with a lower cost than
// the current default.
func NeedsRehash(storedHash string) bool {
	cost, err := bcrypt.Cost([]byte(storedHash))
	if err != nil {
		return false
	}
	return cost < DefaultBCryptCost
}
