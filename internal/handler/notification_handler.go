package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mizan-legal/mizan-api/internal/service"
	"github.com/mizan-legal/mizan-api/pkg/response"
)

// NotificationHandler exposes the unviewed-request badge counter.
type NotificationHandler struct {
	notifications *service.NotificationService
}

// NewNotificationHandler constructs NotificationHandler.
func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// UnviewedCount godoc
// @Summary Unviewed request count for the authenticated client
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications/count [get]
func (h *NotificationHandler) UnviewedCount(c *gin.Context) {
	count, err := h.notifications.UnviewedCount(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, count, nil)
}
