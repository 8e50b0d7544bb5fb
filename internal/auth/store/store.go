package store

import (
	"context"
	"errors"

	"github.com/rohllet/identity/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. It exposes sub-repositories to keep concerns
// tidy and testable.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail returns a user by its normalized email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// ExistsByEmail reports whether a record exists for the email. Callers
	// must not rely on this alone for uniqueness; CreateUser is the
	// authoritative check.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// CreateUser inserts a new user (id and timestamps are provided by
	// the caller).
	// Returns ErrAlreadyExists when the email uniqueness constraint
	// rejects the insert.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// UpdateLastLogin stamps last_login_at for the user.
	UpdateLastLogin(ctx context.Context, userID string) error
}
