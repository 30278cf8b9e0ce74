package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mizan-legal/mizan-api/internal/models"
	appErrors "github.com/mizan-legal/mizan-api/pkg/errors"
	"github.com/mizan-legal/mizan-api/pkg/storage"
)

type jobApplicationRepository interface {
	List(ctx context.Context, filter models.JobApplicationFilter) ([]models.JobApplication, int, error)
	FindByID(ctx context.Context, id string) (*models.JobApplication, error)
	Create(ctx context.Context, application *models.JobApplication) error
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error
}

// SubmitApplicationInput holds the public career-form payload. The resume
// arrives as a multipart file alongside it.
type SubmitApplicationInput struct {
	FullName  string  `json:"full_name" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone" validate:"omitempty,max=30"`
	Position  string  `json:"position" validate:"required"`
	CoverNote *string `json:"cover_note"`
}

// ResumeLink is the signed, expiring download URL handed to admins.
type ResumeLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// JobApplicationService handles career submissions, resume storage and the
// admin review workflow.
type JobApplicationService struct {
	repo         jobApplicationRepository
	files        *storage.LocalStorage
	signer       *storage.SignedURLSigner
	maxFileBytes int64
	allowedMIMEs []string
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewJobApplicationService constructs the job application service.
func NewJobApplicationService(
	repo jobApplicationRepository,
	files *storage.LocalStorage,
	signer *storage.SignedURLSigner,
	maxFileBytes int64,
	allowedMIMEs []string,
	validate *validator.Validate,
	logger *zap.Logger,
) *JobApplicationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxFileBytes <= 0 {
		maxFileBytes = 5 * 1024 * 1024
	}
	return &JobApplicationService{
		repo:         repo,
		files:        files,
		signer:       signer,
		maxFileBytes: maxFileBytes,
		allowedMIMEs: allowedMIMEs,
		validator:    validate,
		logger:       logger,
	}
}

// Submit stores a new application and its resume file.
func (s *JobApplicationService) Submit(ctx context.Context, input SubmitApplicationInput, resume *multipart.FileHeader) (*models.JobApplication, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}

	application := &models.JobApplication{
		ID:        uuid.NewString(),
		FullName:  input.FullName,
		Email:     input.Email,
		Phone:     input.Phone,
		Position:  input.Position,
		CoverNote: input.CoverNote,
		Status:    models.ApplicationStatusReceived,
	}

	if resume != nil {
		path, err := s.storeResume(application.ID, resume)
		if err != nil {
			return nil, err
		}
		application.ResumePath = &path
	}

	if err := s.repo.Create(ctx, application); err != nil {
		if application.ResumePath != nil {
			if cleanupErr := s.files.Delete(*application.ResumePath); cleanupErr != nil {
				s.logger.Warn("failed to clean up orphaned resume", zap.String("path", *application.ResumePath), zap.Error(cleanupErr))
			}
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}

	return application, nil
}

// List returns applications for admin review.
func (s *JobApplicationService) List(ctx context.Context, filter models.JobApplicationFilter) ([]models.JobApplication, *models.Pagination, error) {
	applications, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return applications, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one application.
func (s *JobApplicationService) Get(ctx context.Context, id string) (*models.JobApplication, error) {
	application, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	return application, nil
}

// UpdateStatus advances an application through the review workflow.
func (s *JobApplicationService) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) (*models.JobApplication, error) {
	switch status {
	case models.ApplicationStatusReceived, models.ApplicationStatusReviewing,
		models.ApplicationStatusShortlist, models.ApplicationStatusRejected,
		models.ApplicationStatusHired:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown application status %q", status))
	}

	application, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application status")
	}
	application.Status = status
	return application, nil
}

// ResumeURL issues a signed download link for an application's resume.
func (s *JobApplicationService) ResumeURL(ctx context.Context, id string) (*ResumeLink, error) {
	application, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if application.ResumePath == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "application has no resume")
	}

	token, expiresAt, err := s.signer.Generate(application.ID, *application.ResumePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign resume url")
	}
	return &ResumeLink{URL: "/api/v1/admin/applications/resume?token=" + token, ExpiresAt: expiresAt}, nil
}

// OpenResume validates a signed token and returns the resume file handle with
// its stored filename.
func (s *JobApplicationService) OpenResume(token string) (io.ReadCloser, string, error) {
	_, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid resume token")
	}
	file, err := s.files.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "resume not found")
	}
	return file, filepath.Base(relPath), nil
}

func (s *JobApplicationService) storeResume(applicationID string, resume *multipart.FileHeader) (string, error) {
	if resume.Size > s.maxFileBytes {
		return "", appErrors.Clone(appErrors.ErrFileTooLarge, "")
	}
	if len(s.allowedMIMEs) > 0 {
		contentType := resume.Header.Get("Content-Type")
		allowed := false
		for _, mime := range s.allowedMIMEs {
			if strings.EqualFold(mime, contentType) {
				allowed = true
				break
			}
		}
		if !allowed {
			return "", appErrors.Clone(appErrors.ErrUnsupportedFile, "")
		}
	}

	src, err := resume.Open()
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read resume")
	}
	defer src.Close() //nolint:errcheck

	ext := strings.ToLower(filepath.Ext(resume.Filename))
	target := filepath.Join("resumes", applicationID+ext)
	path, err := s.files.SaveStream(target, io.LimitReader(src, s.maxFileBytes))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store resume")
	}
	return path, nil
}
