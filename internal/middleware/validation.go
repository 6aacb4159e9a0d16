package middleware

import (
	"errors"
	"regexp"
)

// MaxUserIDLength bounds path ids before they reach a store.
const MaxUserIDLength = 64

// ID validation errors.
var (
	ErrUserIDEmpty   = errors.New("user id is empty")
	ErrUserIDTooLong = errors.New("user id exceeds maximum length")
	ErrUserIDInvalid = errors.New("user id contains invalid characters")
)

// ULIDs and ObjectID hex strings both fit this alphabet.
var validUserIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateUserID checks a user id taken from the request path. Ids that
// fail here can never name a stored record.
func ValidateUserID(id string) error {
	if id == "" {
		return ErrUserIDEmpty
	}
	if len(id) > MaxUserIDLength {
		return ErrUserIDTooLong
	}
	if !validUserIDPattern.MatchString(id) {
		return ErrUserIDInvalid
	}
	return nil
}
