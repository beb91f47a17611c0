package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Repository is the credential store. Email is unique across accounts and is
// expected to be normalized by the caller.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*User, error)
	// GetByID never loads the password hash.
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetCredentialsByEmail(ctx context.Context, email string) (*User, error)
	GetCredentialsByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Ping(ctx context.Context) error
}

// now is truncated to milliseconds, the finest precision every backend keeps.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
