package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/useradmin/useradmin/internal/model"
)

// MemoryStore is an in-process UserStore for development and tests.
// Records are copied on the way in and out.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]*model.User
	byEmail map[string]string
	now     func() time.Time
}

var _ UserStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]*model.User),
		byEmail: make(map[string]string),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateUser stores a copy of user.
func (s *MemoryStore) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[user.Email]; taken {
		return ErrEmailExists
	}

	if user.ID == "" {
		user.ID = NewID()
	}
	now := s.now()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	s.users[stored.ID] = &stored
	s.byEmail[stored.Email] = stored.ID
	return nil
}

// ListUsers returns copies of all users ordered by creation time.
func (s *MemoryStore) ListUsers(ctx context.Context) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		users = append(users, &cp)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// GetUserByID returns a copy of the user with id.
func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// UpdateUser applies patch to the stored user.
func (s *MemoryStore) UpdateUser(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}

	if patch.Email != nil && *patch.Email != u.Email {
		if _, taken := s.byEmail[*patch.Email]; taken {
			return nil, ErrEmailExists
		}
		delete(s.byEmail, u.Email)
		s.byEmail[*patch.Email] = id
	}

	patch.Apply(u, s.now())
	cp := *u
	return &cp, nil
}

// DeleteUser removes the user with id.
func (s *MemoryStore) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	delete(s.byEmail, u.Email)
	delete(s.users, id)
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
