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

const categoryCatalogCacheKey = "categories:catalog"

type categoryRepository interface {
	List(ctx context.Context, filter models.CategoryFilter) ([]models.ServiceCategory, int, error)
	ListAll(ctx context.Context) ([]models.ServiceCategory, error)
	FindByID(ctx context.Context, id string) (*models.ServiceCategory, error)
	ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error)
	Create(ctx context.Context, category *models.ServiceCategory) error
	Update(ctx context.Context, category *models.ServiceCategory) error
	Delete(ctx context.Context, id string) error
}

// CategoryRequest holds payload for creating or updating catalog entries.
type CategoryRequest struct {
	Slug          string  `json:"slug" validate:"required,max=100"`
	TitleAr       string  `json:"title_ar" validate:"required"`
	TitleEn       string  `json:"title_en" validate:"required"`
	TitleFr       string  `json:"title_fr" validate:"required"`
	DescriptionAr *string `json:"description_ar"`
	DescriptionEn *string `json:"description_en"`
	DescriptionFr *string `json:"description_fr"`
	Published     bool    `json:"published"`
	SortOrder     int     `json:"sort_order"`
}

// CategoryService manages the service catalog and serves the id-keyed
// snapshot used to resolve localized service names.
type CategoryService struct {
	repo      categoryRepository
	cache     *CacheService
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCategoryService constructs the category service.
func NewCategoryService(repo categoryRepository, cache *CacheService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *CategoryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// Catalog returns the id-keyed catalog snapshot. Failures degrade to an empty
// map so display mapping falls through to the request description.
func (s *CategoryService) Catalog(ctx context.Context) map[string]models.ServiceCategory {
	var cached []models.ServiceCategory
	if hit, err := s.cache.Get(ctx, categoryCatalogCacheKey, &cached); err == nil && hit {
		return indexCategories(cached)
	}

	categories, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Warn("failed to load category catalog", zap.Error(err))
		return map[string]models.ServiceCategory{}
	}

	if err := s.cache.Set(ctx, categoryCatalogCacheKey, categories, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache category catalog", zap.Error(err))
	}

	return indexCategories(categories)
}

// List returns catalog entries and pagination metadata.
func (s *CategoryService) List(ctx context.Context, filter models.CategoryFilter) ([]models.ServiceCategory, *models.Pagination, error) {
	categories, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list categories")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 100
	}
	return categories, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one catalog entry.
func (s *CategoryService) Get(ctx context.Context, id string) (*models.ServiceCategory, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
	}
	return category, nil
}

// Create adds a new catalog entry.
func (s *CategoryService) Create(ctx context.Context, req CategoryRequest) (*models.ServiceCategory, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid category payload")
	}
	exists, err := s.repo.ExistsBySlug(ctx, req.Slug, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate slug")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "slug already used")
	}
	category := &models.ServiceCategory{
		Slug:          req.Slug,
		TitleAr:       req.TitleAr,
		TitleEn:       req.TitleEn,
		TitleFr:       req.TitleFr,
		DescriptionAr: req.DescriptionAr,
		DescriptionEn: req.DescriptionEn,
		DescriptionFr: req.DescriptionFr,
		Published:     req.Published,
		SortOrder:     req.SortOrder,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create category")
	}
	s.invalidateCatalog(ctx)
	return category, nil
}

// Update modifies an existing catalog entry.
func (s *CategoryService) Update(ctx context.Context, id string, req CategoryRequest) (*models.ServiceCategory, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid category payload")
	}
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsBySlug(ctx, req.Slug, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate slug")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "slug already used")
	}
	category.Slug = req.Slug
	category.TitleAr = req.TitleAr
	category.TitleEn = req.TitleEn
	category.TitleFr = req.TitleFr
	category.DescriptionAr = req.DescriptionAr
	category.DescriptionEn = req.DescriptionEn
	category.DescriptionFr = req.DescriptionFr
	category.Published = req.Published
	category.SortOrder = req.SortOrder
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update category")
	}
	s.invalidateCatalog(ctx)
	return category, nil
}

// Delete removes a catalog entry. Requests keep rendering through their
// free-text description.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete category")
	}
	s.invalidateCatalog(ctx)
	return nil
}

func (s *CategoryService) invalidateCatalog(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, categoryCatalogCacheKey); err != nil {
		s.logger.Warn("failed to invalidate category catalog cache", zap.Error(err))
	}
}

func indexCategories(categories []models.ServiceCategory) map[string]models.ServiceCategory {
	index := make(map[string]models.ServiceCategory, len(categories))
	for _, category := range categories {
		index[category.ID] = category
	}
	return index
}
