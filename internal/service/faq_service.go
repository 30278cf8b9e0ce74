package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mizan-legal/mizan-api/internal/models"
	appErrors "github.com/mizan-legal/mizan-api/pkg/errors"
)

type faqRepository interface {
	List(ctx context.Context, filter models.FAQFilter) ([]models.FAQ, int, error)
	FindByID(ctx context.Context, id string) (*models.FAQ, error)
	Create(ctx context.Context, faq *models.FAQ) error
	Update(ctx context.Context, faq *models.FAQ) error
	Delete(ctx context.Context, id string) error
}

// FAQRequest holds payload for creating or updating FAQ entries.
type FAQRequest struct {
	QuestionAr string  `json:"question_ar" validate:"required"`
	QuestionEn string  `json:"question_en" validate:"required"`
	QuestionFr string  `json:"question_fr" validate:"required"`
	AnswerAr   string  `json:"answer_ar" validate:"required"`
	AnswerEn   string  `json:"answer_en" validate:"required"`
	AnswerFr   string  `json:"answer_fr" validate:"required"`
	CategoryID *string `json:"category_id"`
	Published  bool    `json:"published"`
	SortOrder  int     `json:"sort_order"`
}

// FAQService manages the published question list.
type FAQService struct {
	repo      faqRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFAQService constructs the FAQ service.
func NewFAQService(repo faqRepository, validate *validator.Validate, logger *zap.Logger) *FAQService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FAQService{repo: repo, validator: validate, logger: logger}
}

// List returns FAQ entries and pagination metadata.
func (s *FAQService) List(ctx context.Context, filter models.FAQFilter) ([]models.FAQ, *models.Pagination, error) {
	faqs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faqs")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 100
	}
	return faqs, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one FAQ entry.
func (s *FAQService) Get(ctx context.Context, id string) (*models.FAQ, error) {
	faq, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faq not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faq")
	}
	return faq, nil
}

// Create adds a new FAQ entry.
func (s *FAQService) Create(ctx context.Context, req FAQRequest) (*models.FAQ, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faq payload")
	}
	faq := &models.FAQ{
		QuestionAr: req.QuestionAr,
		QuestionEn: req.QuestionEn,
		QuestionFr: req.QuestionFr,
		AnswerAr:   req.AnswerAr,
		AnswerEn:   req.AnswerEn,
		AnswerFr:   req.AnswerFr,
		CategoryID: req.CategoryID,
		Published:  req.Published,
		SortOrder:  req.SortOrder,
	}
	if err := s.repo.Create(ctx, faq); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create faq")
	}
	return faq, nil
}

// Update modifies an existing FAQ entry.
func (s *FAQService) Update(ctx context.Context, id string, req FAQRequest) (*models.FAQ, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faq payload")
	}
	faq, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	faq.QuestionAr = req.QuestionAr
	faq.QuestionEn = req.QuestionEn
	faq.QuestionFr = req.QuestionFr
	faq.AnswerAr = req.AnswerAr
	faq.AnswerEn = req.AnswerEn
	faq.AnswerFr = req.AnswerFr
	faq.CategoryID = req.CategoryID
	faq.Published = req.Published
	faq.SortOrder = req.SortOrder
	if err := s.repo.Update(ctx, faq); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update faq")
	}
	return faq, nil
}

// Delete removes an FAQ entry.
func (s *FAQService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete faq")
	}
	return nil
}
