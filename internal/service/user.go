// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/useradmin/useradmin/internal/auth"
	"github.com/useradmin/useradmin/internal/metrics"
	"github.com/useradmin/useradmin/internal/model"
	"github.com/useradmin/useradmin/internal/repository"
	"github.com/useradmin/useradmin/internal/validation"
)

// Service errors.
var (
	ErrUserNotFound = errors.New("user not found")
)

// UserService runs the create and update pipelines:
// validate, normalize email, hash a present password, persist.
type UserService struct {
	store     repository.UserStore
	hasher    auth.PasswordHasher
	validator *validation.Validator
	metrics   metrics.Recorder
	logger    *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	store repository.UserStore,
	hasher auth.PasswordHasher,
	validator *validation.Validator,
	recorder metrics.Recorder,
	logger *slog.Logger,
) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if validator == nil {
		validator = validation.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		store:     store,
		hasher:    hasher,
		validator: validator,
		metrics:   recorder,
		logger:    logger,
	}
}

// CreateUserInput defines input for creating a user.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
}

// ListUsers returns all users.
func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// CreateUser validates input and persists a new user with a hashed password.
// Rule violations are returned as validation.Errors and nothing is stored.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	if errs := s.validator.Validate(validation.Input{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	}); errs != nil {
		s.metrics.IncValidationFailed(metrics.OpCreate)
		return nil, errs
	}

	hash, err := s.hashPassword(input.Password, metrics.OpCreate)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     input.Name,
		Email:    validation.NormalizeEmail(input.Email),
		Password: hash,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			s.metrics.IncValidationFailed(metrics.OpCreate)
			return nil, emailTaken()
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.IncUserCreated()
	s.logger.InfoContext(ctx, "user_created", "user_id", user.ID)

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateUser validates and applies the fields present in patch. The
// password is hashed only when the patch carries one.
func (s *UserService) UpdateUser(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	if patch.IsEmpty() {
		return s.GetUser(ctx, id)
	}

	if errs := s.validator.ValidatePatch(patch); errs != nil {
		s.metrics.IncValidationFailed(metrics.OpUpdate)
		return nil, errs
	}

	if patch.Email != nil {
		email := validation.NormalizeEmail(*patch.Email)
		patch.Email = &email
	}

	if patch.Password != nil {
		hash, err := s.hashPassword(*patch.Password, metrics.OpUpdate)
		if err != nil {
			return nil, err
		}
		patch.Password = &hash
	}

	user, err := s.store.UpdateUser(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrEmailExists):
			s.metrics.IncValidationFailed(metrics.OpUpdate)
			return nil, emailTaken()
		default:
			return nil, fmt.Errorf("update user: %w", err)
		}
	}

	s.metrics.IncUserUpdated()
	s.logger.InfoContext(ctx, "user_updated",
		"user_id", user.ID,
		"password_changed", patch.Password != nil,
	)

	return user, nil
}

// DeleteUser removes a user by ID.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.metrics.IncUserDeleted()
	s.logger.InfoContext(ctx, "user_deleted", "user_id", id)

	return nil
}

func (s *UserService) hashPassword(password, op string) (string, error) {
	start := time.Now()
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			s.metrics.IncValidationFailed(op)
			return "", validation.Errors{validation.NewFieldError(validation.FieldPassword, validation.CodeTooLong)}
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	s.metrics.ObservePasswordHash(time.Since(start))
	return hash, nil
}

func emailTaken() validation.Errors {
	return validation.Errors{validation.NewFieldError(validation.FieldEmail, validation.CodeTaken)}
}
