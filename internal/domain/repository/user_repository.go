package repository

import (
	"context"
	"errors"

	"github.com/iwa-store/user-service/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no user document exists for the given key.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when registration collides on the unique email.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrVersionConflict is returned when a whole-document save lost the race
	// against a concurrent writer. Callers reload and retry.
	ErrVersionConflict = errors.New("document version conflict")
)

// UserRepository is the profile store adapter: one user document per user,
// sub-collections included. Every write is a whole-document re-save.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Save(ctx context.Context, u *entity.User) error
}
