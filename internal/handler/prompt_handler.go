package handler

import (
	"net/http"
	"strconv"
	"strings"

	"prompt-manager/internal/models"
	"prompt-manager/internal/service"
	"prompt-manager/internal/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PromptHandler обслуживает CRUD и поиск промптов.
type PromptHandler struct {
	promptService service.PromptService
	logger        *zap.Logger
}

func NewPromptHandler(promptService service.PromptService, logger *zap.Logger) *PromptHandler {
	return &PromptHandler{
		promptService: promptService,
		logger:        logger.Named("PromptHandler"),
	}
}

// RegisterRoutes ожидает группу, уже защищенную AuthMiddleware.
func (h *PromptHandler) RegisterRoutes(api *gin.RouterGroup) {
	prompts := api.Group("/prompts")
	{
		prompts.GET("", h.searchPrompts)
		prompts.POST("", h.createPrompt)
		prompts.GET("/:id", h.getPrompt)
		prompts.PATCH("/:id", h.updatePrompt)
		prompts.DELETE("/:id", h.deletePrompt)
	}
	api.GET("/tags", h.listTags)
}

// parseFilter собирает фильтр из query-параметров q, tags, tag_mode, favorite.
func parseFilter(c *gin.Context) (models.PromptFilter, error) {
	filter := models.DefaultPromptFilter()
	filter.Query = c.Query("q")
	if raw := c.Query("tags"); raw != "" {
		filter.Tags = validation.SplitTags(raw)
	}

	mode, err := models.ParseTagMode(c.Query("tag_mode"))
	if err != nil {
		return filter, err
	}
	filter.TagMode = mode

	if raw := strings.TrimSpace(c.Query("favorite")); raw != "" {
		fav, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, models.NewValidationError("favorite", "favorite must be true or false")
		}
		filter.IsFavorite = &fav
	}
	return filter.Normalized(), nil
}

// @Summary Поиск промптов
// @Description Возвращает промпты пользователя, отсортированные по дате изменения
// @Tags prompts
// @Produce json
// @Param q query string false "Подстрока в заголовке или тексте"
// @Param tags query string false "Теги через запятую"
// @Param tag_mode query string false "all или any"
// @Param favorite query bool false "Фильтр по избранному"
// @Success 200 {object} promptListResponse
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/prompts [get]
func (h *PromptHandler) searchPrompts(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	filter, err := parseFilter(c)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	prompts, err := h.promptService.Search(c.Request.Context(), userID, filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if prompts == nil {
		prompts = []models.Prompt{}
	}

	c.JSON(http.StatusOK, promptListResponse{Data: prompts, Count: len(prompts)})
}

// @Summary Создание промпта
// @Tags prompts
// @Accept json
// @Produce json
// @Param request body models.PromptInput true "Новый промпт"
// @Success 201 {object} models.Prompt
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/prompts [post]
func (h *PromptHandler) createPrompt(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	var input models.PromptInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	prompt, err := h.promptService.Create(c.Request.Context(), userID, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	promptOperationsTotal.WithLabelValues("create").Inc()
	c.JSON(http.StatusCreated, prompt)
}

// @Summary Получение промпта
// @Tags prompts
// @Produce json
// @Param id path string true "ID промпта"
// @Success 200 {object} models.Prompt
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/prompts/{id} [get]
func (h *PromptHandler) getPrompt(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	prompt, err := h.promptService.Get(c.Request.Context(), userID, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, prompt)
}

// @Summary Частичное обновление промпта
// @Description Меняются только переданные поля. Пустой список тегов очищает теги.
// @Tags prompts
// @Accept json
// @Produce json
// @Param id path string true "ID промпта"
// @Param request body models.PromptUpdate true "Изменяемые поля"
// @Success 200 {object} models.Prompt
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/prompts/{id} [patch]
func (h *PromptHandler) updatePrompt(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var upd models.PromptUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	prompt, err := h.promptService.Update(c.Request.Context(), userID, id, upd)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	promptOperationsTotal.WithLabelValues("update").Inc()
	c.JSON(http.StatusOK, prompt)
}

// @Summary Удаление промпта
// @Tags prompts
// @Param id path string true "ID промпта"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/prompts/{id} [delete]
func (h *PromptHandler) deletePrompt(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.promptService.Delete(c.Request.Context(), userID, id); err != nil {
		handleServiceError(c, err)
		return
	}

	promptOperationsTotal.WithLabelValues("delete").Inc()
	c.Status(http.StatusNoContent)
}

// @Summary Список тегов пользователя
// @Tags prompts
// @Produce json
// @Success 200 {object} tagsResponse
// @Security BearerAuth
// @Router /api/tags [get]
func (h *PromptHandler) listTags(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	tags, err := h.promptService.ListTags(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if tags == nil {
		tags = []string{}
	}
	c.JSON(http.StatusOK, tagsResponse{Tags: tags})
}
