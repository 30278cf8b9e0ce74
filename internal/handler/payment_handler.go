package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mizan-legal/mizan-api/internal/models"
	"github.com/mizan-legal/mizan-api/internal/service"
	appErrors "github.com/mizan-legal/mizan-api/pkg/errors"
	"github.com/mizan-legal/mizan-api/pkg/response"
)

// PaymentHandler exposes payment lookup and administration endpoints.
type PaymentHandler struct {
	payments *service.PaymentService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Details godoc
// @Summary Payment details by ID
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Router /payments/{id} [get]
func (h *PaymentHandler) Details(c *gin.Context) {
	details, err := h.payments.Details(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, nil)
}

// DetailsByRequest godoc
// @Summary Payment details for a service request
// @Tags Payments
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/payment [get]
func (h *PaymentHandler) DetailsByRequest(c *gin.Context) {
	details, err := h.payments.DetailsByRequest(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, nil)
}

// DetailsByReference godoc
// @Summary Payment details by reference number
// @Tags Payments
// @Produce json
// @Param reference query string true "Payment reference"
// @Success 200 {object} response.Envelope
// @Router /payments/lookup [get]
func (h *PaymentHandler) DetailsByReference(c *gin.Context) {
	reference := strings.TrimSpace(c.Query("reference"))
	if reference == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "reference required"))
		return
	}
	details, err := h.payments.DetailsByReference(c.Request.Context(), claimsFromContext(c), reference)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, nil)
}

// List godoc
// @Summary List payments
// @Tags Payments
// @Produce json
// @Param status query string false "Filter by payment status"
// @Param method query string false "Filter by payment method"
// @Param search query string false "Search references and transactions"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	filter := paymentFilterFromQuery(c)
	payments, pagination, err := h.payments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, pagination)
}

// RequirePayment godoc
// @Summary Attach a payment requirement to a request
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.RequirePaymentInput true "Payment requirement"
// @Success 201 {object} response.Envelope
// @Router /admin/payments [post]
func (h *PaymentHandler) RequirePayment(c *gin.Context) {
	var input service.RequirePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment payload"))
		return
	}

	payment, err := h.payments.RequirePayment(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}

// UpdateStatus godoc
// @Summary Update payment status
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Payment ID"
// @Param payload body service.UpdatePaymentStatusInput true "Status update"
// @Success 200 {object} response.Envelope
// @Router /admin/payments/{id}/status [patch]
func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	var input service.UpdatePaymentStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	payment, err := h.payments.UpdateStatus(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}

// Receipt godoc
// @Summary Download a PDF receipt for a completed payment
// @Tags Payments
// @Produce application/pdf
// @Param id path string true "Payment ID"
// @Param lang query string false "Receipt language (ar, fr, en)"
// @Success 200 {file} binary
// @Router /payments/{id}/receipt [get]
func (h *PaymentHandler) Receipt(c *gin.Context) {
	pdf, err := h.payments.Receipt(c.Request.Context(), claimsFromContext(c), c.Param("id"), langFromRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", c.Param("id")))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// ExportCSV godoc
// @Summary Export payments as CSV
// @Tags Payments
// @Produce text/csv
// @Param status query string false "Filter by payment status"
// @Param method query string false "Filter by payment method"
// @Success 200 {file} binary
// @Router /admin/payments/export [get]
func (h *PaymentHandler) ExportCSV(c *gin.Context) {
	filter := paymentFilterFromQuery(c)
	data, err := h.payments.ExportCSV(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=payments.csv")
	c.Data(http.StatusOK, "text/csv", data)
}

func paymentFilterFromQuery(c *gin.Context) models.PaymentFilter {
	var filter models.PaymentFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	if status := c.Query("status"); status != "" {
		s := models.PaymentStatus(status)
		filter.Status = &s
	}
	if method := c.Query("method"); method != "" {
		m := models.PaymentMethod(method)
		filter.Method = &m
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")
	return filter
}
