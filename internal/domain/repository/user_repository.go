package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopit-dev/shopit-backend/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no document matches the query.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned by Create when the unique email index rejects the insert.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository defines the document-store operations the account and cart
// services need. The password field is hidden by default; only GetByEmail can
// ask for it explicitly.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByIDWithPassword loads a user by id including the stored hash
	// (password update flow).
	GetByIDWithPassword(ctx context.Context, id string) (*entity.User, error)
	// GetByEmail loads a user by email. includePassword controls whether the
	// stored hash is projected into the result.
	GetByEmail(ctx context.Context, email string, includePassword bool) (*entity.User, error)
	// GetByResetToken matches a hashed reset token whose expiry is strictly
	// after now.
	GetByResetToken(ctx context.Context, hashedToken string, now time.Time) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	// SetFields applies a partial $set-style update to the user document.
	// Keys are raw document field names; unknown keys are written as-is.
	SetFields(ctx context.Context, id string, fields map[string]any) error
	// UnsetFields removes the named fields from the user document.
	UnsetFields(ctx context.Context, id string, fields ...string) error
	Delete(ctx context.Context, id string) error

	// PushCartLine appends a line to the user's embedded cart array.
	PushCartLine(ctx context.Context, id string, line entity.CartLine) error
	// PullCartLine atomically removes the cart line with the given id.
	PullCartLine(ctx context.Context, id string, lineID string) error
}
