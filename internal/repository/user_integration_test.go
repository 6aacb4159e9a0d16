//go:build integration

package repository

import (
	"errors"
	"testing"

	"github.com/useradmin/useradmin/internal/model"
	"github.com/useradmin/useradmin/internal/testutil"
)

// ============================================================================
// User Repository Integration Tests
// ============================================================================

func TestIntegrationUserRepository_CreateUser(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	email := testutil.UniqueEmail("create")
	user := testutil.NewTestUser(t, email)

	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.ID == "" {
		t.Fatal("ID should be assigned")
	}

	retrieved, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if retrieved.Email != email {
		t.Errorf("Email mismatch: got %q, want %q", retrieved.Email, email)
	}
	if retrieved.Password != user.Password {
		t.Errorf("Password mismatch: got %q, want %q", retrieved.Password, user.Password)
	}
	if retrieved.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestIntegrationUserRepository_CreateUser_DuplicateEmail(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	email := testutil.UniqueEmail("dup")
	if err := repo.CreateUser(ctx, testutil.NewTestUser(t, email)); err != nil {
		t.Fatalf("CreateUser (first) failed: %v", err)
	}

	err := repo.CreateUser(ctx, testutil.NewTestUser(t, email))
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("Expected ErrEmailExists, got: %v", err)
	}
}

func TestIntegrationUserRepository_ListUsers(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	users, err := repo.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("expected empty list, got %d", len(users))
	}

	first := testutil.NewTestUser(t, testutil.UniqueEmail("first"))
	second := testutil.NewTestUser(t, testutil.UniqueEmail("second"))
	for _, u := range []*model.User{first, second} {
		if err := repo.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	users, err = repo.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].ID != first.ID || users[1].ID != second.ID {
		t.Errorf("users not in creation order: %s, %s", users[0].ID, users[1].ID)
	}
}

func TestIntegrationUserRepository_UpdateUser_Partial(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("update"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	name := "Renamed"
	updated, err := repo.UpdateUser(ctx, user.ID, model.UserPatch{Name: &name})
	if err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	if updated.Name != name {
		t.Errorf("Name = %q, want %q", updated.Name, name)
	}
	if updated.Email != user.Email {
		t.Errorf("Email changed: %q", updated.Email)
	}
	if updated.Password != user.Password {
		t.Error("Password must be untouched when absent from the patch")
	}
	if !updated.UpdatedAt.After(user.UpdatedAt) && !updated.UpdatedAt.Equal(user.UpdatedAt) {
		t.Error("UpdatedAt should not move backwards")
	}
}

func TestIntegrationUserRepository_UpdateUser_EmailConflict(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	a := testutil.NewTestUser(t, testutil.UniqueEmail("a"))
	b := testutil.NewTestUser(t, testutil.UniqueEmail("b"))
	for _, u := range []*model.User{a, b} {
		if err := repo.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	_, err := repo.UpdateUser(ctx, b.ID, model.UserPatch{Email: &a.Email})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("Expected ErrEmailExists, got: %v", err)
	}
}

func TestIntegrationUserRepository_NotFound(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	missing := NewID()

	if _, err := repo.GetUserByID(ctx, missing); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUserByID: expected ErrUserNotFound, got %v", err)
	}

	name := "x"
	if _, err := repo.UpdateUser(ctx, missing, model.UserPatch{Name: &name}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("UpdateUser: expected ErrUserNotFound, got %v", err)
	}

	if err := repo.DeleteUser(ctx, missing); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("DeleteUser: expected ErrUserNotFound, got %v", err)
	}
}

func TestIntegrationUserRepository_DeleteUser(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("delete"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := repo.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if _, err := repo.GetUserByID(ctx, user.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound after delete, got %v", err)
	}
}
