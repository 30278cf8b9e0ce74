package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mizan-legal/mizan-api/internal/models"
	"github.com/mizan-legal/mizan-api/internal/service"
	appErrors "github.com/mizan-legal/mizan-api/pkg/errors"
	"github.com/mizan-legal/mizan-api/pkg/response"
)

// JobApplicationHandler exposes the public application submission endpoint and
// the admin review endpoints. Resumes are served through signed, expiring
// links rather than direct file paths.
type JobApplicationHandler struct {
	applications *service.JobApplicationService
}

// NewJobApplicationHandler constructs JobApplicationHandler.
func NewJobApplicationHandler(applications *service.JobApplicationService) *JobApplicationHandler {
	return &JobApplicationHandler{applications: applications}
}

// Submit godoc
// @Summary Submit a job application with a resume upload
// @Tags Careers
// @Accept multipart/form-data
// @Produce json
// @Param full_name formData string true "Applicant name"
// @Param email formData string true "Applicant email"
// @Param phone formData string false "Phone"
// @Param position formData string true "Position applied for"
// @Param cover_note formData string false "Cover note"
// @Param resume formData file true "Resume file"
// @Success 201 {object} response.Envelope
// @Router /careers/apply [post]
func (h *JobApplicationHandler) Submit(c *gin.Context) {
	var input service.SubmitApplicationInput
	input.FullName = strings.TrimSpace(c.PostForm("full_name"))
	input.Email = strings.TrimSpace(c.PostForm("email"))
	input.Position = strings.TrimSpace(c.PostForm("position"))
	if phone := strings.TrimSpace(c.PostForm("phone")); phone != "" {
		input.Phone = &phone
	}
	if note := strings.TrimSpace(c.PostForm("cover_note")); note != "" {
		input.CoverNote = &note
	}

	resume, err := c.FormFile("resume")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "resume file required"))
		return
	}

	application, err := h.applications.Submit(c.Request.Context(), input, resume)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, application)
}

// List godoc
// @Summary List job applications
// @Tags Careers
// @Produce json
// @Param status query string false "Filter by review status"
// @Param position query string false "Filter by position"
// @Param search query string false "Search names and emails"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/applications [get]
func (h *JobApplicationHandler) List(c *gin.Context) {
	var filter models.JobApplicationFilter
	filter.Position = strings.TrimSpace(c.Query("position"))
	filter.Search = strings.TrimSpace(c.Query("search"))
	if status := c.Query("status"); status != "" {
		s := models.ApplicationStatus(status)
		filter.Status = &s
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	applications, pagination, err := h.applications.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, applications, pagination)
}

// Get godoc
// @Summary Get job application detail
// @Tags Careers
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /admin/applications/{id} [get]
func (h *JobApplicationHandler) Get(c *gin.Context) {
	application, err := h.applications.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, application, nil)
}

// UpdateStatus godoc
// @Summary Update application review status
// @Tags Careers
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body object true "New status"
// @Success 200 {object} response.Envelope
// @Router /admin/applications/{id}/status [patch]
func (h *JobApplicationHandler) UpdateStatus(c *gin.Context) {
	var payload struct {
		Status models.ApplicationStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "status required"))
		return
	}

	application, err := h.applications.UpdateStatus(c.Request.Context(), c.Param("id"), payload.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, application, nil)
}

// ResumeLink godoc
// @Summary Issue a signed, expiring resume download link
// @Tags Careers
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /admin/applications/{id}/resume-link [get]
func (h *JobApplicationHandler) ResumeLink(c *gin.Context) {
	link, err := h.applications.ResumeURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// DownloadResume godoc
// @Summary Download a resume using a signed token
// @Tags Careers
// @Produce application/octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /admin/applications/resume [get]
func (h *JobApplicationHandler) DownloadResume(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}

	file, name, err := h.applications.OpenResume(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", "attachment; filename="+name)
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, file); err != nil {
		_ = c.Error(err)
	}
}
