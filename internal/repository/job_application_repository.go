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

const jobApplicationColumns = "id, full_name, email, phone, position, cover_note, resume_path, status, created_at, updated_at"

// JobApplicationRepository manages persistence for job applications.
type JobApplicationRepository struct {
	db *sqlx.DB
}

// NewJobApplicationRepository constructs a JobApplicationRepository.
func NewJobApplicationRepository(db *sqlx.DB) *JobApplicationRepository {
	return &JobApplicationRepository{db: db}
}

// List returns applications matching the filter along with the total count.
func (r *JobApplicationRepository) List(ctx context.Context, filter models.JobApplicationFilter) ([]models.JobApplication, int, error) {
	base := "FROM job_applications WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Position != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(position) = LOWER($%d)", len(args)+1))
		args = append(args, filter.Position)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args)+1, len(args)+1))
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
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", jobApplicationColumns, base, size, offset)
	var applications []models.JobApplication
	if err := r.db.SelectContext(ctx, &applications, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list job applications: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count job applications: %w", err)
	}

	return applications, total, nil
}

// FindByID fetches an application by ID.
func (r *JobApplicationRepository) FindByID(ctx context.Context, id string) (*models.JobApplication, error) {
	query := fmt.Sprintf("SELECT %s FROM job_applications WHERE id = $1", jobApplicationColumns)
	var application models.JobApplication
	if err := r.db.GetContext(ctx, &application, query, id); err != nil {
		return nil, err
	}
	return &application, nil
}

// Create inserts a new application.
func (r *JobApplicationRepository) Create(ctx context.Context, application *models.JobApplication) error {
	if application.ID == "" {
		application.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if application.CreatedAt.IsZero() {
		application.CreatedAt = now
	}
	application.UpdatedAt = now

	const query = `INSERT INTO job_applications (id, full_name, email, phone, position, cover_note, resume_path, status, created_at, updated_at)
		VALUES (:id, :full_name, :email, :phone, :position, :cover_note, :resume_path, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, application); err != nil {
		return fmt.Errorf("create job application: %w", err)
	}
	return nil
}

// UpdateStatus moves an application through admin review.
func (r *JobApplicationRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	const query = `UPDATE job_applications SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update job application status: %w", err)
	}
	return nil
}
