package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mizan-legal/mizan-api/internal/models"
)

const faqColumns = "id, question_ar, question_en, question_fr, answer_ar, answer_en, answer_fr, category_id, published, sort_order, created_at, updated_at"

// FAQRepository manages persistence for FAQs.
type FAQRepository struct {
	db *sqlx.DB
}

// NewFAQRepository constructs a FAQRepository.
func NewFAQRepository(db *sqlx.DB) *FAQRepository {
	return &FAQRepository{db: db}
}

// List returns FAQs matching the filter along with the total count.
func (r *FAQRepository) List(ctx context.Context, filter models.FAQFilter) ([]models.FAQ, int, error) {
	base := "FROM faqs WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Published != nil {
		conditions = append(conditions, fmt.Sprintf("published = $%d", len(args)+1))
		args = append(args, *filter.Published)
	}
	if filter.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", len(args)+1))
		args = append(args, *filter.CategoryID)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(question_ar) LIKE $%d OR LOWER(question_en) LIKE $%d OR LOWER(question_fr) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY sort_order ASC, created_at ASC LIMIT %d OFFSET %d", faqColumns, base, size, offset)
	var faqs []models.FAQ
	if err := r.db.SelectContext(ctx, &faqs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list faqs: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count faqs: %w", err)
	}

	return faqs, total, nil
}

// FindByID fetches a FAQ by ID.
func (r *FAQRepository) FindByID(ctx context.Context, id string) (*models.FAQ, error) {
	query := fmt.Sprintf("SELECT %s FROM faqs WHERE id = $1", faqColumns)
	var faq models.FAQ
	if err := r.db.GetContext(ctx, &faq, query, id); err != nil {
		return nil, err
	}
	return &faq, nil
}

// Create inserts a new FAQ.
func (r *FAQRepository) Create(ctx context.Context, faq *models.FAQ) error {
	if faq.ID == "" {
		faq.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if faq.CreatedAt.IsZero() {
		faq.CreatedAt = now
	}
	faq.UpdatedAt = now

	const query = `INSERT INTO faqs (id, question_ar, question_en, question_fr, answer_ar, answer_en, answer_fr, category_id, published, sort_order, created_at, updated_at)
		VALUES (:id, :question_ar, :question_en, :question_fr, :answer_ar, :answer_en, :answer_fr, :category_id, :published, :sort_order, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, faq); err != nil {
		return fmt.Errorf("create faq: %w", err)
	}
	return nil
}

// Update modifies an existing FAQ.
func (r *FAQRepository) Update(ctx context.Context, faq *models.FAQ) error {
	faq.UpdatedAt = time.Now().UTC()
	const query = `UPDATE faqs SET question_ar = :question_ar, question_en = :question_en, question_fr = :question_fr, answer_ar = :answer_ar, answer_en = :answer_en, answer_fr = :answer_fr, category_id = :category_id, published = :published, sort_order = :sort_order, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, faq); err != nil {
		return fmt.Errorf("update faq: %w", err)
	}
	return nil
}

// Delete removes a FAQ.
func (r *FAQRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM faqs WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete faq: %w", err)
	}
	return nil
}
