package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/useradmin/useradmin/internal/auth"
	authmocks "github.com/useradmin/useradmin/internal/auth/mocks"
	"github.com/useradmin/useradmin/internal/metrics"
	"github.com/useradmin/useradmin/internal/model"
	"github.com/useradmin/useradmin/internal/repository"
	storemocks "github.com/useradmin/useradmin/internal/repository/mocks"
	"github.com/useradmin/useradmin/internal/validation"
)

func strPtr(s string) *string { return &s }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testEnv struct {
	svc     *UserService
	store   *repository.MemoryStore
	hasher  *auth.BcryptHasher
	metrics *metrics.InMemoryRecorder
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	hasher, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	store := repository.NewMemoryStore()
	rec := metrics.NewInMemory()

	return testEnv{
		svc:     NewUserService(store, hasher, validation.New(), rec, discardLogger()),
		store:   store,
		hasher:  hasher,
		metrics: rec,
	}
}

func TestCreateUser_ValidInput(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.svc.CreateUser(ctx, CreateUserInput{Name: "Ana", Email: "Ana@X.com", Password: "Abcde!1"})
	require.NoError(t, err)

	stored, err := env.store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)

	assert.Equal(t, "Ana", stored.Name)
	assert.Equal(t, "ana@x.com", stored.Email)
	assert.NotEqual(t, "Abcde!1", stored.Password)
	assert.True(t, env.hasher.Matches("Abcde!1", stored.Password))

	snap := env.metrics.Snapshot()
	assert.EqualValues(t, 1, snap.UsersCreated)
	assert.EqualValues(t, 1, snap.PasswordHashCount)
}

func TestCreateUser_InvalidInput_NothingPersisted(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.CreateUser(ctx, CreateUserInput{Name: "", Email: "bad", Password: "ab"})

	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, []string{validation.FieldName, validation.FieldEmail, validation.FieldPassword}, verrs.Fields())
	assert.True(t, verrs.Has(validation.FieldPassword, validation.CodeTooShort))
	assert.True(t, verrs.Has(validation.FieldPassword, validation.CodeComplexity))

	users, err := env.store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	snap := env.metrics.Snapshot()
	assert.EqualValues(t, 1, snap.CreateValidationFailed)
	assert.EqualValues(t, 0, snap.PasswordHashCount)
}

func TestCreateUser_DuplicateEmailIsFieldError(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.CreateUser(ctx, CreateUserInput{Name: "Ana", Email: "ana@x.com", Password: "Abcde!1"})
	require.NoError(t, err)

	// Same address after normalization.
	_, err = env.svc.CreateUser(ctx, CreateUserInput{Name: "Ana 2", Email: "ANA@x.com", Password: "Abcde!1"})

	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.True(t, verrs.Has(validation.FieldEmail, validation.CodeTaken))
}

func TestCreateUser_PasswordTooLongIsFieldError(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	long := "A!" + "abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyz"
	_, err := env.svc.CreateUser(context.Background(), CreateUserInput{Name: "Ana", Email: "a@x.com", Password: long})

	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.True(t, verrs.Has(validation.FieldPassword, validation.CodeTooLong))
}

func TestUpdateUser_PasswordIsHashed(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.svc.CreateUser(ctx, CreateUserInput{Name: "Ana", Email: "ana@x.com", Password: "Abcde!1"})
	require.NoError(t, err)
	oldHash := user.Password

	updated, err := env.svc.UpdateUser(ctx, user.ID, model.UserPatch{Password: strPtr("Plain!text")})
	require.NoError(t, err)

	assert.NotEqual(t, "Plain!text", updated.Password)
	assert.NotEqual(t, oldHash, updated.Password)
	assert.True(t, env.hasher.Matches("Plain!text", updated.Password))
	assert.False(t, env.hasher.Matches("Abcde!1", updated.Password))
}

func TestUpdateUser_InvalidPasswordRejected(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.svc.CreateUser(ctx, CreateUserInput{Name: "Ana", Email: "ana@x.com", Password: "Abcde!1"})
	require.NoError(t, err)

	_, err = env.svc.UpdateUser(ctx, user.ID, model.UserPatch{Password: strPtr("plaintext")})

	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.True(t, verrs.Has(validation.FieldPassword, validation.CodeComplexity))

	stored, _ := env.store.GetUserByID(ctx, user.ID)
	assert.Equal(t, user.Password, stored.Password)
	assert.EqualValues(t, 1, env.metrics.Snapshot().UpdateValidationFailed)
}

func TestUpdateUser_NormalizesEmail(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.svc.CreateUser(ctx, CreateUserInput{Name: "Ana", Email: "ana@x.com", Password: "Abcde!1"})
	require.NoError(t, err)

	updated, err := env.svc.UpdateUser(ctx, user.ID, model.UserPatch{Email: strPtr("New.Name+tag@GMAIL.com")})
	require.NoError(t, err)
	assert.Equal(t, "newname@gmail.com", updated.Email)
	assert.Equal(t, user.Password, updated.Password)
}

func TestUpdateUser_NotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	_, err := env.svc.UpdateUser(context.Background(), "missing", model.UserPatch{Name: strPtr("x")})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.svc.UpdateUser(context.Background(), "missing", model.UserPatch{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateUser_WithoutPasswordNeverHashes(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	hasher := authmocks.NewMockPasswordHasher(ctrl)
	hasher.EXPECT().Hash(gomock.Any()).Times(0)

	store := repository.NewMemoryStore()
	ctx := context.Background()
	existing := &model.User{Name: "Ana", Email: "ana@x.com", Password: "$2a$10$existinghash"}
	require.NoError(t, store.CreateUser(ctx, existing))

	svc := NewUserService(store, hasher, nil, nil, discardLogger())

	updated, err := svc.UpdateUser(ctx, existing.ID, model.UserPatch{Name: strPtr("Ana Maria")})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", updated.Name)
	assert.Equal(t, "$2a$10$existinghash", updated.Password)
}

func TestUpdateUser_HashesExactlyOnceWhenPresent(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	hasher := authmocks.NewMockPasswordHasher(ctrl)
	hasher.EXPECT().Hash("Secret!1").Return("hashed-secret", nil).Times(1)

	store := storemocks.NewMockUserStore(ctrl)
	store.EXPECT().
		UpdateUser(gomock.Any(), "u1", model.UserPatch{Password: strPtr("hashed-secret")}).
		Return(&model.User{ID: "u1", Password: "hashed-secret"}, nil)

	svc := NewUserService(store, hasher, nil, nil, discardLogger())

	user, err := svc.UpdateUser(context.Background(), "u1", model.UserPatch{Password: strPtr("Secret!1")})
	require.NoError(t, err)
	assert.Equal(t, "hashed-secret", user.Password)
}

func TestUpdateUser_EmailTaken(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	store := storemocks.NewMockUserStore(ctrl)
	store.EXPECT().UpdateUser(gomock.Any(), "u1", gomock.Any()).Return(nil, repository.ErrEmailExists)

	svc := NewUserService(store, authmocks.NewMockPasswordHasher(ctrl), nil, nil, discardLogger())

	_, err := svc.UpdateUser(context.Background(), "u1", model.UserPatch{Email: strPtr("b@x.com")})

	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.True(t, verrs.Has(validation.FieldEmail, validation.CodeTaken))
}

func TestStoreErrorsAreWrapped(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("connection refused")

	ctrl := gomock.NewController(t)
	store := storemocks.NewMockUserStore(ctrl)
	hasher := authmocks.NewMockPasswordHasher(ctrl)

	store.EXPECT().ListUsers(gomock.Any()).Return(nil, storeErr)
	store.EXPECT().GetUserByID(gomock.Any(), "u1").Return(nil, storeErr)
	store.EXPECT().DeleteUser(gomock.Any(), "u1").Return(storeErr)
	store.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(storeErr)
	hasher.EXPECT().Hash("Abcde!1").Return("h", nil)

	svc := NewUserService(store, hasher, nil, nil, discardLogger())
	ctx := context.Background()

	_, err := svc.ListUsers(ctx)
	assert.ErrorIs(t, err, storeErr)

	_, err = svc.GetUser(ctx, "u1")
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, svc.DeleteUser(ctx, "u1"), storeErr)

	_, err = svc.CreateUser(ctx, CreateUserInput{Name: "Ana", Email: "a@x.com", Password: "Abcde!1"})
	assert.ErrorIs(t, err, storeErr)
}

func TestHasherFailureIsNotValidationError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	hasher := authmocks.NewMockPasswordHasher(ctrl)
	hasher.EXPECT().Hash(gomock.Any()).Return("", errors.New("entropy exhausted"))

	svc := NewUserService(repository.NewMemoryStore(), hasher, nil, nil, discardLogger())

	_, err := svc.CreateUser(context.Background(), CreateUserInput{Name: "Ana", Email: "a@x.com", Password: "Abcde!1"})
	require.Error(t, err)

	var verrs validation.Errors
	assert.False(t, errors.As(err, &verrs))
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.svc.CreateUser(ctx, CreateUserInput{Name: "Ana", Email: "ana@x.com", Password: "Abcde!1"})
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteUser(ctx, user.ID))
	assert.ErrorIs(t, env.svc.DeleteUser(ctx, user.ID), ErrUserNotFound)

	_, err = env.svc.GetUser(ctx, user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.EqualValues(t, 1, env.metrics.Snapshot().UsersDeleted)
}

func TestListUsers(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	users, err := env.svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = env.svc.CreateUser(ctx, CreateUserInput{Name: "Ana", Email: "ana@x.com", Password: "Abcde!1"})
	require.NoError(t, err)

	users, err = env.svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
