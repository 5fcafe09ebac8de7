package interfaces

import (
	"context"

	"prompt-manager/internal/models"

	"github.com/google/uuid"
)

// TokenRepository хранит UUID выданных токенов (Redis).
type TokenRepository interface {
	// SetToken stores Access & Refresh UUIDs mapped to the UserID with their TTLs.
	SetToken(ctx context.Context, userID uuid.UUID, td *models.TokenDetails) error

	// DeleteTokens removes the given token UUIDs. Returns the number of keys deleted.
	DeleteTokens(ctx context.Context, userID uuid.UUID, accessUUID, refreshUUID string) (int64, error)

	// GetUserIDByAccessUUID returns models.ErrTokenNotFound if the token is unknown or expired.
	GetUserIDByAccessUUID(ctx context.Context, accessUUID string) (uuid.UUID, error)

	// GetUserIDByRefreshUUID returns models.ErrTokenNotFound if the token is unknown or expired.
	GetUserIDByRefreshUUID(ctx context.Context, refreshUUID string) (uuid.UUID, error)

	// DeleteTokensByUserID завершает все сессии пользователя.
	DeleteTokensByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
}
