package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mizan-legal/mizan-api/internal/service"
	appErrors "github.com/mizan-legal/mizan-api/pkg/errors"
	"github.com/mizan-legal/mizan-api/pkg/response"
)

// ContactHandler exposes the firm's contact-information endpoints.
type ContactHandler struct {
	contacts *service.ContactService
}

// NewContactHandler constructs ContactHandler.
func NewContactHandler(contacts *service.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// List godoc
// @Summary List contact entries
// @Tags Contact
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /contact [get]
func (h *ContactHandler) List(c *gin.Context) {
	contacts, err := h.contacts.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, contacts, nil)
}

// Get godoc
// @Summary Get a contact entry by key
// @Tags Contact
// @Produce json
// @Param key path string true "Contact key"
// @Success 200 {object} response.Envelope
// @Router /contact/{key} [get]
func (h *ContactHandler) Get(c *gin.Context) {
	contact, err := h.contacts.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, contact, nil)
}

// Upsert godoc
// @Summary Create or update a contact entry
// @Tags Contact
// @Accept json
// @Produce json
// @Param payload body service.ContactRequest true "Contact payload"
// @Success 200 {object} response.Envelope
// @Router /admin/contact [put]
func (h *ContactHandler) Upsert(c *gin.Context) {
	var req service.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	contact, err := h.contacts.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, contact, nil)
}

// Delete godoc
// @Summary Delete a contact entry
// @Tags Contact
// @Produce json
// @Param key path string true "Contact key"
// @Success 204
// @Router /admin/contact/{key} [delete]
func (h *ContactHandler) Delete(c *gin.Context) {
	if err := h.contacts.Delete(c.Request.Context(), c.Param("key")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
