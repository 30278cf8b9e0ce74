package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mizan-legal/mizan-api/internal/models"
	appErrors "github.com/mizan-legal/mizan-api/pkg/errors"
)

const consultantDirectoryCacheKey = "consultants:directory"

type consultantRepository interface {
	List(ctx context.Context, filter models.ConsultantFilter) ([]models.Consultant, int, error)
	ListAllActive(ctx context.Context) ([]models.Consultant, error)
	FindByID(ctx context.Context, id string) (*models.Consultant, error)
	Create(ctx context.Context, consultant *models.Consultant) error
	Update(ctx context.Context, consultant *models.Consultant) error
	Deactivate(ctx context.Context, id string) error
}

// CreateConsultantRequest holds payload for registering consultants.
type CreateConsultantRequest struct {
	Name           string  `json:"name" validate:"required"`
	Specialization string  `json:"specialization" validate:"required"`
	Email          *string `json:"email" validate:"omitempty,email"`
}

// UpdateConsultantRequest holds payload for updating consultants.
type UpdateConsultantRequest struct {
	Name           string  `json:"name" validate:"required"`
	Specialization string  `json:"specialization" validate:"required"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Active         bool    `json:"active"`
}

// ConsultantService handles consultant administration and serves the cached
// directory snapshot consumed by the display mapper.
type ConsultantService struct {
	repo      consultantRepository
	cache     *CacheService
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewConsultantService constructs the consultant service.
func NewConsultantService(repo consultantRepository, cache *CacheService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *ConsultantService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsultantService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// Directory returns the id-keyed snapshot of active consultants. A lookup or
// cache failure yields an empty directory rather than an error so display
// mapping can proceed on its fallback chain.
func (s *ConsultantService) Directory(ctx context.Context) models.ConsultantDirectory {
	var cached []models.Consultant
	if hit, err := s.cache.Get(ctx, consultantDirectoryCacheKey, &cached); err == nil && hit {
		return models.Directory(cached)
	}

	consultants, err := s.repo.ListAllActive(ctx)
	if err != nil {
		s.logger.Warn("failed to load consultant directory", zap.Error(err))
		return models.ConsultantDirectory{}
	}

	if err := s.cache.Set(ctx, consultantDirectoryCacheKey, consultants, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache consultant directory", zap.Error(err))
	}

	return models.Directory(consultants)
}

// List returns consultants and pagination metadata.
func (s *ConsultantService) List(ctx context.Context, filter models.ConsultantFilter) ([]models.Consultant, *models.Pagination, error) {
	consultants, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list consultants")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 100
	}
	return consultants, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one consultant.
func (s *ConsultantService) Get(ctx context.Context, id string) (*models.Consultant, error) {
	consultant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "consultant not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load consultant")
	}
	return consultant, nil
}

// Create registers a new consultant.
func (s *ConsultantService) Create(ctx context.Context, req CreateConsultantRequest) (*models.Consultant, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid consultant payload")
	}
	consultant := &models.Consultant{
		Name:           req.Name,
		Specialization: req.Specialization,
		Email:          req.Email,
		Active:         true,
	}
	if err := s.repo.Create(ctx, consultant); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create consultant")
	}
	s.invalidateDirectory(ctx)
	return consultant, nil
}

// Update modifies an existing consultant.
func (s *ConsultantService) Update(ctx context.Context, id string, req UpdateConsultantRequest) (*models.Consultant, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid consultant payload")
	}
	consultant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	consultant.Name = req.Name
	consultant.Specialization = req.Specialization
	consultant.Email = req.Email
	consultant.Active = req.Active
	if err := s.repo.Update(ctx, consultant); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update consultant")
	}
	s.invalidateDirectory(ctx)
	return consultant, nil
}

// Deactivate hides a consultant from the directory. Existing assignments keep
// rendering through the name denormalised onto the request rows.
func (s *ConsultantService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate consultant")
	}
	s.invalidateDirectory(ctx)
	return nil
}

func (s *ConsultantService) invalidateDirectory(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, consultantDirectoryCacheKey); err != nil {
		s.logger.Warn("failed to invalidate consultant directory cache", zap.Error(err))
	}
}
