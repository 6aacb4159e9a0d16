package repository

//go:generate mockgen -source=store.go -destination=mocks/store_mock.go -package=mocks

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"

	"github.com/useradmin/useradmin/internal/model"
)

// Common errors for user store operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
)

// UserStore persists user records. Implementations return ErrUserNotFound
// for an absent id and ErrEmailExists when an email is already taken.
type UserStore interface {
	// CreateUser inserts user and fills in ID and timestamps.
	CreateUser(ctx context.Context, user *model.User) error
	// ListUsers returns all users in creation order.
	ListUsers(ctx context.Context) ([]*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// UpdateUser applies the present patch fields and returns the stored result.
	UpdateUser(ctx context.Context, id string, patch model.UserPatch) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// NewID returns a new lexicographically sortable record ID.
func NewID() string {
	return ulid.Make().String()
}
