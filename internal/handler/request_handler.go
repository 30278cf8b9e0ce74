package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mizan-legal/mizan-api/internal/models"
	"github.com/mizan-legal/mizan-api/internal/service"
	appErrors "github.com/mizan-legal/mizan-api/pkg/errors"
	"github.com/mizan-legal/mizan-api/pkg/response"
)

// RequestHandler exposes the service-request endpoints. Detail views record a
// fire-and-forget view event so unread counters converge without blocking the
// response.
type RequestHandler struct {
	requests *service.RequestService
	tracker  *service.TrackerService
}

// NewRequestHandler constructs RequestHandler.
func NewRequestHandler(requests *service.RequestService, tracker *service.TrackerService) *RequestHandler {
	return &RequestHandler{requests: requests, tracker: tracker}
}

// List godoc
// @Summary List the authenticated client's requests
// @Tags Requests
// @Produce json
// @Param status query string false "Filter by workflow status"
// @Param search query string false "Search across localized display fields"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param refresh query bool false "Bypass the cached page"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	var opts service.ListRequestsOptions
	opts.Search = strings.TrimSpace(c.Query("search"))
	if status := c.Query("status"); status != "" {
		s := models.RequestStatus(status)
		opts.Status = &s
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		opts.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		opts.PageSize = size
	}
	opts.ForceRefresh = c.Query("refresh") == "true"

	requests, pagination, err := h.requests.List(c.Request.Context(), claimsFromContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, pagination)
}

// Get godoc
// @Summary Get request detail
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	display, err := h.requests.Get(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.tracker != nil && claims != nil && claims.Role == models.RoleClient {
		h.tracker.RecordView(display.ID, claims.UserID)
	}

	response.JSON(c, http.StatusOK, display, nil)
}

// Create godoc
// @Summary Submit a new service request
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body service.CreateRequestInput true "Request payload"
// @Success 201 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	var input service.CreateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request payload"))
		return
	}

	request, err := h.requests.Create(c.Request.Context(), claimsFromContext(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// AdminList godoc
// @Summary List requests across all clients
// @Tags Requests
// @Produce json
// @Param clientId query string false "Filter by client"
// @Param status query string false "Filter by workflow status"
// @Param search query string false "Search descriptions"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/requests [get]
func (h *RequestHandler) AdminList(c *gin.Context) {
	var filter models.ServiceRequestFilter
	filter.ClientID = c.Query("clientId")
	filter.Search = strings.TrimSpace(c.Query("search"))
	if status := c.Query("status"); status != "" {
		s := models.RequestStatus(status)
		filter.Status = &s
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	requests, pagination, err := h.requests.AdminList(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, pagination)
}

// UpdateStatus godoc
// @Summary Update request workflow status
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body object true "New status"
// @Success 200 {object} response.Envelope
// @Router /admin/requests/{id}/status [patch]
func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	var payload struct {
		Status models.RequestStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "status required"))
		return
	}

	request, err := h.requests.UpdateStatus(c.Request.Context(), c.Param("id"), payload.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Assign godoc
// @Summary Assign a consultant to a request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body object true "Consultant ID"
// @Success 200 {object} response.Envelope
// @Router /admin/requests/{id}/assign [post]
func (h *RequestHandler) Assign(c *gin.Context) {
	var payload struct {
		ConsultantID string `json:"consultant_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "consultant_id required"))
		return
	}

	request, err := h.requests.Assign(c.Request.Context(), c.Param("id"), payload.ConsultantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Reply godoc
// @Summary Append a staff reply to a request thread
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body service.ReplyInput true "Reply payload"
// @Success 201 {object} response.Envelope
// @Router /admin/requests/{id}/replies [post]
func (h *RequestHandler) Reply(c *gin.Context) {
	var input service.ReplyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "message required"))
		return
	}

	reply, err := h.requests.Reply(c.Request.Context(), claimsFromContext(c), c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reply)
}
