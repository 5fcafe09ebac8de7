package handler

import (
	"errors"
	"net/http"

	"prompt-manager/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @Summary Регистрация нового пользователя
// @Description Создает новый аккаунт по email и паролю
// @Tags auth
// @Accept json
// @Produce json
// @Param request body registerRequest true "Данные для регистрации"
// @Success 201 {object} registerResponse "Успешная регистрация"
// @Failure 400 {object} models.ErrorResponse "Неверные данные запроса"
// @Failure 409 {object} models.ErrorResponse "Email уже занят"
// @Router /auth/register [post]
func (h *AuthHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data: "+err.Error())
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	registrationsTotal.Inc()

	c.JSON(http.StatusCreated, registerResponse{
		ID:    user.ID.String(),
		Email: user.Email,
	})
}

// @Summary Вход в систему
// @Description Аутентификация пользователя и получение пары токенов
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Данные для входа"
// @Success 200 {object} models.TokenDetails "Токены доступа"
// @Failure 400 {object} models.ErrorResponse "Неверные данные запроса"
// @Failure 401 {object} models.ErrorResponse "Неверные учетные данные"
// @Router /auth/login [post]
func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	tokens, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// @Summary Выход из системы
// @Description Отзыв access токена из заголовка и refresh токена из тела
// @Tags auth
// @Accept json
// @Produce json
// @Param request body logoutRequest true "Refresh токен для отзыва"
// @Success 200 {object} models.MessageResponse "Успешный выход"
// @Failure 400 {object} models.ErrorResponse "Неверные данные запроса"
// @Failure 401 {object} models.ErrorResponse "Неверный токен"
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *AuthHandler) logout(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	accessUUID := c.GetString(ctxKeyAccessUUID)
	if accessUUID == "" {
		zap.L().Error("Access UUID missing in context during logout")
		handleServiceError(c, errors.New("context missing access uuid"))
		return
	}

	var req logoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Missing or invalid refresh_token in request body: "+err.Error())
		return
	}

	claims, err := h.authService.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	// Нельзя отозвать чужой refresh-токен
	if claims.UserID != userID {
		zap.L().Warn("Refresh token owner mismatch during logout",
			zap.String("userID", userID.String()),
			zap.String("tokenUserID", claims.UserID.String()),
		)
		handleServiceError(c, models.ErrTokenInvalid)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), userID, accessUUID, claims.ID); err != nil {
		zap.L().Error("Failed to perform logout in service",
			zap.Error(err),
			zap.String("accessUUID", accessUUID),
			zap.String("refreshUUID", claims.ID),
		)
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Successfully logged out"})
}

// @Summary Обновление токенов
// @Description Получение новой пары токенов по refresh токену
// @Tags auth
// @Accept json
// @Produce json
// @Param request body refreshRequest true "Refresh токен"
// @Success 200 {object} models.TokenDetails "Новые токены"
// @Failure 400 {object} models.ErrorResponse "Неверные данные запроса"
// @Failure 401 {object} models.ErrorResponse "Неверный или истекший токен"
// @Router /auth/refresh [post]
func (h *AuthHandler) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	tokens, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		tokenVerificationsTotal.WithLabelValues("refresh", "failure").Inc()
		handleServiceError(c, err)
		return
	}

	refreshesTotal.Inc()
	tokenVerificationsTotal.WithLabelValues("refresh", "success").Inc()

	c.JSON(http.StatusOK, tokens)
}

// @Summary Текущий пользователь
// @Tags auth
// @Produce json
// @Success 200 {object} meResponse
// @Failure 401 {object} models.ErrorResponse "Не авторизован"
// @Failure 404 {object} models.ErrorResponse "Пользователь не найден"
// @Security BearerAuth
// @Router /api/me [get]
func (h *AuthHandler) getMe(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, meResponse{
		ID:           user.ID,
		Email:        user.Email,
		CreatedAt:    user.CreatedAt,
		LastSignInAt: user.LastSignInAt,
	})
}
