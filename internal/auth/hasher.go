// Package auth provides password hashing for stored user credentials.
package auth

//go:generate mockgen -source=hasher.go -destination=mocks/hasher_mock.go -package=mocks

import (
	"errors"
	"fmt"
)

// Supported hasher names for configuration.
const (
	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"
)

var (
	// ErrPasswordTooLong is returned when the hasher cannot accept the input.
	ErrPasswordTooLong = errors.New("password too long")
	// ErrUnknownHasher is returned by NewHasher for an unsupported name.
	ErrUnknownHasher = errors.New("unknown password hasher")
)

// PasswordHasher turns plaintext passwords into salted one-way hashes.
type PasswordHasher interface {
	// Hash returns a new salted hash. Two calls with the same input
	// return different values.
	Hash(password string) (string, error)
	// Matches reports whether password produced hash.
	Matches(password, hash string) bool
}

// NewHasher returns the hasher selected by name.
func NewHasher(name string, bcryptCost int) (PasswordHasher, error) {
	switch name {
	case HasherBcrypt, "":
		h, err := NewBcryptHasher(bcryptCost)
		if err != nil {
			return nil, err
		}
		return h, nil
	case HasherArgon2id:
		return NewArgon2Hasher(DefaultArgon2Params()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHasher, name)
	}
}
