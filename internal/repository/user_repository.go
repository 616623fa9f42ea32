package repository

import (
	"context"

	"github.com/omkarr10/Vagabond/internal/domain"
)

// UserRepository defines persistence operations for users
type UserRepository interface {
	// Create inserts a new user. The database unique constraints on
	// username and email are the authoritative uniqueness check; Create
	// returns domain.ErrUserExists when either is violated.
	Create(ctx context.Context, user *domain.User) error
	// GetByID retrieves a user by ID, nil when not found
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByUsername retrieves a user by exact, case-sensitive username
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// GetByEmail retrieves a user by email, nil when not found
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// ExistsByUsername checks if a username is taken (advisory pre-check)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// ExistsByEmail checks if an email is taken (advisory pre-check)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
