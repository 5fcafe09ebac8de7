package service

import (
	"context"

	"prompt-manager/internal/models"

	"github.com/google/uuid"
)

// AuthService defines the interface for authentication logic.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.TokenDetails, error)
	Logout(ctx context.Context, userID uuid.UUID, accessUUID, refreshUUID string) error
	Refresh(ctx context.Context, refreshToken string) (*models.TokenDetails, error)
	VerifyAccessToken(ctx context.Context, tokenString string) (*models.Claims, error)
	// ParseRefreshToken проверяет подпись и срок refresh-токена, не обращаясь к хранилищу.
	ParseRefreshToken(tokenString string) (*models.Claims, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
}
