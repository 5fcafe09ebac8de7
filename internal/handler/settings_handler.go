package handler

import (
	"net/http"

	"prompt-manager/internal/models"
	"prompt-manager/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxImportBodyBytes ограничивает размер файла импорта.
const maxImportBodyBytes = 20 << 20

// SettingsHandler - статистика, экспорт, импорт и удаление данных аккаунта.
type SettingsHandler struct {
	settingsService service.SettingsService
	logger          *zap.Logger
}

func NewSettingsHandler(settingsService service.SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		logger:          logger.Named("SettingsHandler"),
	}
}

func (h *SettingsHandler) RegisterRoutes(api *gin.RouterGroup) {
	settings := api.Group("/settings")
	{
		settings.GET("/statistics", h.getStatistics)
		settings.GET("/export", h.exportPrompts)
		settings.POST("/import", h.importPrompts)
	}
	api.DELETE("/account", h.deleteAccount)
}

// @Summary Статистика промптов
// @Tags settings
// @Produce json
// @Success 200 {object} models.Statistics
// @Security BearerAuth
// @Router /api/settings/statistics [get]
func (h *SettingsHandler) getStatistics(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	stats, err := h.settingsService.GetStatistics(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary Экспорт промптов
// @Description Отдает все промпты пользователя файлом prompts_export_YYYYMMDD.json
// @Tags settings
// @Produce json
// @Success 200 {object} models.ExportBundle
// @Security BearerAuth
// @Router /api/settings/export [get]
func (h *SettingsHandler) exportPrompts(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	bundle, err := h.settingsService.Export(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	exportsTotal.Inc()
	fileName := models.ExportFileName(bundle.ExportedAt)
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.IndentedJSON(http.StatusOK, bundle)
}

// @Summary Импорт промптов
// @Description Импортирует валидные записи, невалидные перечисляет в errors
// @Tags settings
// @Accept json
// @Produce json
// @Param request body models.ImportBundle true "Файл экспорта"
// @Success 200 {object} models.ImportResult
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/settings/import [post]
func (h *SettingsHandler) importPrompts(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBodyBytes)
	var bundle models.ImportBundle
	if err := c.ShouldBindJSON(&bundle); err != nil {
		badRequest(c, "Invalid import file: "+err.Error())
		return
	}

	result, err := h.settingsService.Import(c.Request.Context(), userID, &bundle)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	importedPromptsTotal.WithLabelValues("imported").Add(float64(result.ImportedCount))
	importedPromptsTotal.WithLabelValues("failed").Add(float64(result.FailedCount))
	if result.FailedCount > 0 {
		h.logger.Info("Import finished with rejected records",
			zap.String("userID", userID.String()),
			zap.Int("imported", result.ImportedCount),
			zap.Int("failed", result.FailedCount),
		)
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Удаление данных аккаунта
// @Description Удаляет все промпты и завершает все сессии пользователя
// @Tags settings
// @Produce json
// @Success 200 {object} models.AccountDeletionResult
// @Security BearerAuth
// @Router /api/account [delete]
func (h *SettingsHandler) deleteAccount(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	result, err := h.settingsService.DeleteAccount(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	accountPurgesTotal.Inc()
	c.JSON(http.StatusOK, result)
}
