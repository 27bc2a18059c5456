package driven

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/yurizz-crypto/passvault/internal/domain/model"
)

// Sentinel errors returned by UserStore implementations.
var (
	// ErrUserNotFound indicates no user matched the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken indicates another account already uses the email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrUsernameTaken indicates another account already uses the username.
	ErrUsernameTaken = errors.New("username already registered")
)

// UserStore defines the driven port for account persistence.
type UserStore interface {
	// Create inserts a new user. Returns ErrEmailTaken or ErrUsernameTaken
	// when the corresponding unique constraint is violated.
	Create(ctx context.Context, user model.User) error

	// GetByEmail retrieves a user by email. Returns ErrUserNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByID retrieves a user by id. Returns ErrUserNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}
