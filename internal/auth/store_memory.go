package auth

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

type MemStore struct {
	mu         sync.RWMutex
	byEmail    map[string]User
	byExternal map[string]User
}

func NewMemStore() *MemStore {
	return &MemStore{
		byEmail:    make(map[string]User),
		byExternal: make(map[string]User),
	}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Create(ctx context.Context, email, password, role, id string) error {
	email = normalizeEmail(email)
	password = strings.TrimSpace(password)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[email]; ok {
		return ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.byEmail[email] = User{ID: id, Email: email, Hash: hash, Role: role}
	return nil
}

func (s *MemStore) Verify(ctx context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)

	s.mu.RLock()
	u, ok := s.byEmail[email]
	s.mu.RUnlock()

	if !ok || len(u.Hash) == 0 {
		return User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(u.Hash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	return u, nil
}

func (s *MemStore) FindOrCreateExternal(ctx context.Context, provider, providerID, email, newID string) (User, error) {
	key := provider + "/" + providerID
	email = normalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.byExternal[key]; ok {
		u.Email = email
		s.byExternal[key] = u
		return u, nil
	}

	u := User{
		ID:         newID,
		Email:      email,
		Role:       "user",
		Provider:   provider,
		ProviderID: providerID,
	}
	s.byExternal[key] = u
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
