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

// ConsultantHandler exposes consultant management endpoints.
type ConsultantHandler struct {
	consultants *service.ConsultantService
}

// NewConsultantHandler constructs ConsultantHandler.
func NewConsultantHandler(consultants *service.ConsultantService) *ConsultantHandler {
	return &ConsultantHandler{consultants: consultants}
}

// List godoc
// @Summary List consultants
// @Tags Consultants
// @Produce json
// @Param search query string false "Search by name or speciality"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/consultants [get]
func (h *ConsultantHandler) List(c *gin.Context) {
	var filter models.ConsultantFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	if active := c.Query("active"); active != "" {
		if active == "true" {
			v := true
			filter.Active = &v
		} else if active == "false" {
			v := false
			filter.Active = &v
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	consultants, pagination, err := h.consultants.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, consultants, pagination)
}

// Get godoc
// @Summary Get consultant detail
// @Tags Consultants
// @Produce json
// @Param id path string true "Consultant ID"
// @Success 200 {object} response.Envelope
// @Router /admin/consultants/{id} [get]
func (h *ConsultantHandler) Get(c *gin.Context) {
	consultant, err := h.consultants.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, consultant, nil)
}

// Create godoc
// @Summary Create consultant
// @Tags Consultants
// @Accept json
// @Produce json
// @Param payload body service.CreateConsultantRequest true "Consultant payload"
// @Success 201 {object} response.Envelope
// @Router /admin/consultants [post]
func (h *ConsultantHandler) Create(c *gin.Context) {
	var req service.CreateConsultantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	consultant, err := h.consultants.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, consultant)
}

// Update godoc
// @Summary Update consultant
// @Tags Consultants
// @Accept json
// @Produce json
// @Param id path string true "Consultant ID"
// @Param payload body service.UpdateConsultantRequest true "Consultant payload"
// @Success 200 {object} response.Envelope
// @Router /admin/consultants/{id} [put]
func (h *ConsultantHandler) Update(c *gin.Context) {
	var req service.UpdateConsultantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	consultant, err := h.consultants.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, consultant, nil)
}

// Delete godoc
// @Summary Deactivate consultant
// @Tags Consultants
// @Produce json
// @Param id path string true "Consultant ID"
// @Success 204
// @Router /admin/consultants/{id} [delete]
func (h *ConsultantHandler) Delete(c *gin.Context) {
	if err := h.consultants.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
