package interfaces

import (
	"context"
	"time"

	"prompt-manager/internal/models"

	"github.com/google/uuid"
)

// UserRepository defines persistence for users.
type UserRepository interface {
	// CreateUser returns models.ErrEmailAlreadyExists on a duplicate e-mail.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastSignIn(ctx context.Context, id uuid.UUID, at time.Time) error
}
