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

// ConsultantRepository manages persistence for consultants.
type ConsultantRepository struct {
	db *sqlx.DB
}

// NewConsultantRepository constructs a ConsultantRepository.
func NewConsultantRepository(db *sqlx.DB) *ConsultantRepository {
	return &ConsultantRepository{db: db}
}

// List returns consultants matching the filter along with the total count.
func (r *ConsultantRepository) List(ctx context.Context, filter models.ConsultantFilter) ([]models.Consultant, int, error) {
	base := "FROM consultants WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(specialization) LIKE $%d)", len(args)+1, len(args)+1))
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

	query := fmt.Sprintf("SELECT id, name, specialization, email, active, created_at, updated_at %s ORDER BY name ASC LIMIT %d OFFSET %d", base, size, offset)
	var consultants []models.Consultant
	if err := r.db.SelectContext(ctx, &consultants, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list consultants: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count consultants: %w", err)
	}

	return consultants, total, nil
}

// ListAllActive returns every active consultant, feeding the directory
// snapshot used by the display mapper.
func (r *ConsultantRepository) ListAllActive(ctx context.Context) ([]models.Consultant, error) {
	const query = `SELECT id, name, specialization, email, active, created_at, updated_at FROM consultants WHERE active = TRUE ORDER BY name ASC`
	var consultants []models.Consultant
	if err := r.db.SelectContext(ctx, &consultants, query); err != nil {
		return nil, fmt.Errorf("list active consultants: %w", err)
	}
	return consultants, nil
}

// FindByID fetches a consultant by ID.
func (r *ConsultantRepository) FindByID(ctx context.Context, id string) (*models.Consultant, error) {
	const query = `SELECT id, name, specialization, email, active, created_at, updated_at FROM consultants WHERE id = $1`
	var consultant models.Consultant
	if err := r.db.GetContext(ctx, &consultant, query, id); err != nil {
		return nil, err
	}
	return &consultant, nil
}

// Create inserts a new consultant record.
func (r *ConsultantRepository) Create(ctx context.Context, consultant *models.Consultant) error {
	if consultant.ID == "" {
		consultant.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if consultant.CreatedAt.IsZero() {
		consultant.CreatedAt = now
	}
	consultant.UpdatedAt = now

	const query = `INSERT INTO consultants (id, name, specialization, email, active, created_at, updated_at)
		VALUES (:id, :name, :specialization, :email, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, consultant); err != nil {
		return fmt.Errorf("create consultant: %w", err)
	}
	return nil
}

// Update modifies an existing consultant record.
func (r *ConsultantRepository) Update(ctx context.Context, consultant *models.Consultant) error {
	consultant.UpdatedAt = time.Now().UTC()
	const query = `UPDATE consultants SET name = :name, specialization = :specialization, email = :email, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, consultant); err != nil {
		return fmt.Errorf("update consultant: %w", err)
	}
	return nil
}

// Deactivate hides a consultant from the public directory without breaking
// requests that still reference it.
func (r *ConsultantRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE consultants SET active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate consultant: %w", err)
	}
	return nil
}
