package handler

import (
	"strings"

	"prompt-manager/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ctxKeyUserID     = "user_id"
	ctxKeyAccessUUID = "access_uuid"
)

// AuthMiddleware проверяет access-токен из заголовка Authorization.
// UserID попадает и в gin.Context, и в context.Context запроса.
func (h *AuthHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			zap.L().Warn("Authorization header missing", zap.String("path", c.Request.URL.Path))
			tokenVerificationsTotal.WithLabelValues("access", "failure").Inc()
			handleServiceError(c, models.ErrUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			zap.L().Warn("Invalid Authorization header format")
			tokenVerificationsTotal.WithLabelValues("access", "failure").Inc()
			handleServiceError(c, models.ErrTokenInvalid)
			return
		}

		claims, err := h.authService.VerifyAccessToken(c.Request.Context(), parts[1])
		if err != nil {
			zap.L().Warn("Access token verification failed", zap.Error(err))
			tokenVerificationsTotal.WithLabelValues("access", "failure").Inc()
			handleServiceError(c, err)
			return
		}

		tokenVerificationsTotal.WithLabelValues("access", "success").Inc()
		c.Set(ctxKeyUserID, claims.UserID)
		c.Set(ctxKeyAccessUUID, claims.ID)
		c.Request = c.Request.WithContext(models.WithUserID(c.Request.Context(), claims.UserID))
		zap.L().Debug("Access token verified successfully", zap.String("userID", claims.UserID.String()), zap.String("accessUUID", claims.ID))
		c.Next()
	}
}

// getUserIDFromContext достает UserID, положенный AuthMiddleware.
// При отсутствии отвечает 401 и возвращает false.
func getUserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get(ctxKeyUserID)
	if !exists {
		zap.L().Error("User ID missing in context", zap.String("path", c.Request.URL.Path))
		handleServiceError(c, models.ErrUnauthorized)
		return uuid.Nil, false
	}
	userID, ok := raw.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		zap.L().Error("Invalid user ID in context", zap.Any("raw", raw))
		handleServiceError(c, models.ErrUnauthorized)
		return uuid.Nil, false
	}
	return userID, true
}

// parseIDParam разбирает UUID из параметра пути.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}
