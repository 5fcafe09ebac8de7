package handler

import (
	"prompt-manager/internal/realtime"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EventsHandler отдает события изменения промптов по WebSocket.
type EventsHandler struct {
	hub    *realtime.Hub
	logger *zap.Logger
}

func NewEventsHandler(hub *realtime.Hub, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{hub: hub, logger: logger.Named("EventsHandler")}
}

func (h *EventsHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/events", h.serveEvents)
}

// @Summary Поток событий изменения промптов
// @Tags events
// @Security BearerAuth
// @Router /api/events [get]
func (h *EventsHandler) serveEvents(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	if err := h.hub.ServeWS(c.Writer, c.Request, userID); err != nil {
		h.logger.Warn("Failed to open event stream", zap.String("userID", userID.String()), zap.Error(err))
		c.Abort()
	}
}
