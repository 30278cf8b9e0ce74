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

const contactCacheKey = "contact:all"

type contactRepository interface {
	ListAll(ctx context.Context) ([]models.ContactInfo, error)
	FindByKey(ctx context.Context, key string) (*models.ContactInfo, error)
	Upsert(ctx context.Context, entry *models.ContactInfo) error
	Delete(ctx context.Context, key string) error
}

// ContactRequest holds payload for creating or replacing a contact entry.
type ContactRequest struct {
	Key       string `json:"key" validate:"required,max=100"`
	ValueAr   string `json:"value_ar" validate:"required"`
	ValueEn   string `json:"value_en" validate:"required"`
	ValueFr   string `json:"value_fr" validate:"required"`
	SortOrder int    `json:"sort_order"`
}

// ContactService serves the company contact block. The data changes rarely
// and is read on every public page load, so the full set is cached.
type ContactService struct {
	repo      contactRepository
	cache     *CacheService
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewContactService constructs the contact service.
func NewContactService(repo contactRepository, cache *CacheService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *ContactService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// List returns every contact entry in display order.
func (s *ContactService) List(ctx context.Context) ([]models.ContactInfo, error) {
	var cached []models.ContactInfo
	if hit, err := s.cache.Get(ctx, contactCacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	entries, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list contact info")
	}

	if err := s.cache.Set(ctx, contactCacheKey, entries, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache contact info", zap.Error(err))
	}
	return entries, nil
}

// Get returns one contact entry by key.
func (s *ContactService) Get(ctx context.Context, key string) (*models.ContactInfo, error) {
	entry, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "contact entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load contact entry")
	}
	return entry, nil
}

// Upsert creates or replaces the entry for a key.
func (s *ContactService) Upsert(ctx context.Context, req ContactRequest) (*models.ContactInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid contact payload")
	}
	entry := &models.ContactInfo{
		Key:       req.Key,
		ValueAr:   req.ValueAr,
		ValueEn:   req.ValueEn,
		ValueFr:   req.ValueFr,
		SortOrder: req.SortOrder,
	}
	if err := s.repo.Upsert(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save contact entry")
	}
	s.invalidate(ctx)
	return entry, nil
}

// Delete removes a contact entry by key.
func (s *ContactService) Delete(ctx context.Context, key string) error {
	if _, err := s.Get(ctx, key); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, key); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete contact entry")
	}
	s.invalidate(ctx)
	return nil
}

func (s *ContactService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, contactCacheKey); err != nil {
		s.logger.Warn("failed to invalidate contact cache", zap.Error(err))
	}
}
