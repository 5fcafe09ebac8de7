package handler

import (
	"prompt-manager/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRoutes вешает /auth/* (с ограничением частоты запросов) и /api/me.
// rateLimitMiddleware может быть nil, например в тестах.
func (h *AuthHandler) RegisterRoutes(router *gin.Engine, rateLimitMiddleware gin.HandlerFunc) {
	authGroup := router.Group("/auth")
	if rateLimitMiddleware != nil {
		authGroup.Use(rateLimitMiddleware)
	}
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
		authGroup.POST("/logout", h.AuthMiddleware(), h.logout)
		authGroup.POST("/refresh", h.refresh)
	}

	protected := router.Group("/api")
	protected.Use(h.AuthMiddleware())
	{
		protected.GET("/me", h.getMe)
	}
}
