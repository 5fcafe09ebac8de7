package models

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims - поля JWT. ID (jti) совпадает с UUID токена в Redis.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}

// contextKey - приватный тип для ключей контекста.
type contextKey string

// UserContextKey хранит UserID в context.Context запроса.
const UserContextKey contextKey = "userID"

// WithUserID кладет UserID в контекст.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserContextKey, userID)
}

// GetUserIDFromContext извлекает UserID из контекста.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserContextKey).(uuid.UUID)
	return userID, ok && userID != uuid.Nil
}
