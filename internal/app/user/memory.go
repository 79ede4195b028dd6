package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded Store for development and tests.
// Create checks and inserts under one lock, so uniqueness holds across goroutines.
type MemoryStore struct {
	mu         sync.RWMutex
	byID       map[string]User
	byUsername map[string]string
	byEmail    map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[string]User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

func (s *MemoryStore) Create(_ context.Context, nu NewUser) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byUsername[nu.Username]; ok {
		return User{}, ErrUsernameTaken
	}
	if _, ok := s.byEmail[nu.Email]; ok {
		return User{}, ErrEmailTaken
	}

	u := User{
		ID:           uuid.NewString(),
		Username:     nu.Username,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.byID[u.ID] = u
	s.byUsername[u.Username] = u.ID
	s.byEmail[u.Email] = u.ID

	return u, nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) FindByUsername(ctx context.Context, username string) (User, error) {
	s.mu.RLock()
	id, ok := s.byUsername[username]
	s.mu.RUnlock()

	if !ok {
		return User{}, ErrNotFound
	}
	return s.FindByID(ctx, id)
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (User, error) {
	s.mu.RLock()
	id, ok := s.byEmail[email]
	s.mu.RUnlock()

	if !ok {
		return User{}, ErrNotFound
	}
	return s.FindByID(ctx, id)
}
