package repository

import (
	"context"

	"github.com/oksasatya/starter-webapi/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
// Lookups that match nothing return entity.ErrUserNotFound.
type UserRepository interface {
	CreateUser(ctx context.Context, u *entity.User) (*entity.User, error)
	ReadUser(ctx context.Context, id string) (*entity.User, error)
	// ReadUserByCredentials matches email and hashed password together and
	// does not report which of the two failed.
	ReadUserByCredentials(ctx context.Context, email, hashedPassword string) (*entity.User, error)
	UpdateUser(ctx context.Context, id string, u *entity.User) (*entity.User, error)
	DeleteUser(ctx context.Context, id string) error
}
