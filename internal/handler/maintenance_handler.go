package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mizan-legal/mizan-api/internal/service"
	"github.com/mizan-legal/mizan-api/pkg/response"
)

// MaintenanceHandler exposes the on-demand reconciliation endpoint. The same
// routines run on the cron schedule; this lets an operator trigger them early.
type MaintenanceHandler struct {
	payments      *service.PaymentService
	notifications *service.NotificationService
}

// NewMaintenanceHandler constructs MaintenanceHandler.
func NewMaintenanceHandler(payments *service.PaymentService, notifications *service.NotificationService) *MaintenanceHandler {
	return &MaintenanceHandler{payments: payments, notifications: notifications}
}

// Reconcile godoc
// @Summary Repair payment mirrors and reset notification counters
// @Tags Maintenance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/maintenance/reconcile [post]
func (h *MaintenanceHandler) Reconcile(c *gin.Context) {
	repaired, err := h.payments.Reconcile(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.notifications.Reconcile(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"payments_repaired": repaired}, nil)
}
