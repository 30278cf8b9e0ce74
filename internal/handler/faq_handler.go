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

// FAQHandler exposes FAQ endpoints.
type FAQHandler struct {
	faqs *service.FAQService
}

// NewFAQHandler constructs FAQHandler.
func NewFAQHandler(faqs *service.FAQService) *FAQHandler {
	return &FAQHandler{faqs: faqs}
}

// PublicList godoc
// @Summary List published FAQ entries
// @Tags FAQ
// @Produce json
// @Param categoryId query string false "Filter by category"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /faqs [get]
func (h *FAQHandler) PublicList(c *gin.Context) {
	filter := faqFilterFromQuery(c)
	published := true
	filter.Published = &published

	faqs, pagination, err := h.faqs.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faqs, pagination)
}

// List godoc
// @Summary List all FAQ entries
// @Tags FAQ
// @Produce json
// @Param search query string false "Search questions"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/faqs [get]
func (h *FAQHandler) List(c *gin.Context) {
	faqs, pagination, err := h.faqs.List(c.Request.Context(), faqFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faqs, pagination)
}

// Get godoc
// @Summary Get FAQ entry
// @Tags FAQ
// @Produce json
// @Param id path string true "FAQ ID"
// @Success 200 {object} response.Envelope
// @Router /admin/faqs/{id} [get]
func (h *FAQHandler) Get(c *gin.Context) {
	faq, err := h.faqs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faq, nil)
}

// Create godoc
// @Summary Create FAQ entry
// @Tags FAQ
// @Accept json
// @Produce json
// @Param payload body service.FAQRequest true "FAQ payload"
// @Success 201 {object} response.Envelope
// @Router /admin/faqs [post]
func (h *FAQHandler) Create(c *gin.Context) {
	var req service.FAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	faq, err := h.faqs.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, faq)
}

// Update godoc
// @Summary Update FAQ entry
// @Tags FAQ
// @Accept json
// @Produce json
// @Param id path string true "FAQ ID"
// @Param payload body service.FAQRequest true "FAQ payload"
// @Success 200 {object} response.Envelope
// @Router /admin/faqs/{id} [put]
func (h *FAQHandler) Update(c *gin.Context) {
	var req service.FAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	faq, err := h.faqs.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faq, nil)
}

// Delete godoc
// @Summary Delete FAQ entry
// @Tags FAQ
// @Produce json
// @Param id path string true "FAQ ID"
// @Success 204
// @Router /admin/faqs/{id} [delete]
func (h *FAQHandler) Delete(c *gin.Context) {
	if err := h.faqs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func faqFilterFromQuery(c *gin.Context) models.FAQFilter {
	var filter models.FAQFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	if categoryID := c.Query("categoryId"); categoryID != "" {
		filter.CategoryID = &categoryID
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	return filter
}
