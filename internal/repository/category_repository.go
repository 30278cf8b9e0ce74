package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mizan-legal/mizan-api/internal/models"
)

const categoryColumns = "id, slug, title_ar, title_en, title_fr, description_ar, description_en, description_fr, published, sort_order, created_at, updated_at"

// CategoryRepository manages persistence for the service catalog.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository constructs a CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List returns catalog entries matching the filter along with the total count.
func (r *CategoryRepository) List(ctx context.Context, filter models.CategoryFilter) ([]models.ServiceCategory, int, error) {
	base := "FROM service_categories WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Published != nil {
		conditions = append(conditions, fmt.Sprintf("published = $%d", len(args)+1))
		args = append(args, *filter.Published)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(title_ar) LIKE $%d OR LOWER(title_en) LIKE $%d OR LOWER(title_fr) LIKE $%d OR LOWER(slug) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1, len(args)+1))
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
		size = 100
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY sort_order ASC, created_at ASC LIMIT %d OFFSET %d", categoryColumns, base, size, offset)
	var categories []models.ServiceCategory
	if err := r.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	return categories, total, nil
}

// ListAll returns the whole catalog, feeding the id-keyed snapshot used to
// resolve localized service names.
func (r *CategoryRepository) ListAll(ctx context.Context) ([]models.ServiceCategory, error) {
	query := fmt.Sprintf("SELECT %s FROM service_categories ORDER BY sort_order ASC, created_at ASC", categoryColumns)
	var categories []models.ServiceCategory
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list all categories: %w", err)
	}
	return categories, nil
}

// FindByID fetches a catalog entry by ID.
func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*models.ServiceCategory, error) {
	query := fmt.Sprintf("SELECT %s FROM service_categories WHERE id = $1", categoryColumns)
	var category models.ServiceCategory
	if err := r.db.GetContext(ctx, &category, query, id); err != nil {
		return nil, err
	}
	return &category, nil
}

// ExistsBySlug checks whether another catalog entry already uses the slug.
func (r *CategoryRepository) ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error) {
	query := "SELECT 1 FROM service_categories WHERE slug = $1"
	args := []interface{}{slug}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check category slug: %w", err)
	}
	return true, nil
}

// Create inserts a new catalog entry.
func (r *CategoryRepository) Create(ctx context.Context, category *models.ServiceCategory) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if category.CreatedAt.IsZero() {
		category.CreatedAt = now
	}
	category.UpdatedAt = now

	const query = `INSERT INTO service_categories (id, slug, title_ar, title_en, title_fr, description_ar, description_en, description_fr, published, sort_order, created_at, updated_at)
		VALUES (:id, :slug, :title_ar, :title_en, :title_fr, :description_ar, :description_en, :description_fr, :published, :sort_order, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// Update modifies an existing catalog entry.
func (r *CategoryRepository) Update(ctx context.Context, category *models.ServiceCategory) error {
	category.UpdatedAt = time.Now().UTC()
	const query = `UPDATE service_categories SET slug = :slug, title_ar = :title_ar, title_en = :title_en, title_fr = :title_fr, description_ar = :description_ar, description_en = :description_en, description_fr = :description_fr, published = :published, sort_order = :sort_order, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete removes a catalog entry. Requests keep their free-text description
// so nothing dangles.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM service_categories WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
