package auth

import (
	"context"
	"errors"
)

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type User struct {
	ID    string
	Email string
	Hash  []byte
	Role  string

	// Provider/ProviderID identify an external OAuth identity, empty for
	// password accounts.
	Provider   string
	ProviderID string
}

type UserStore interface {
	Create(ctx context.Context, email, password, role, id string) error
	Verify(ctx context.Context, email, password string) (User, error)

	// FindOrCreateExternal resolves an OAuth identity to a local user,
	// creating one with newID on first login. The stored email is
	// refreshed from the provider on every login.
	FindOrCreateExternal(ctx context.Context, provider, providerID, email, newID string) (User, error)

	Ping(ctx context.Context) error
}
