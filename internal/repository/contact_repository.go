package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mizan-legal/mizan-api/internal/models"
)

// ContactRepository manages persistence for company contact info entries.
type ContactRepository struct {
	db *sqlx.DB
}

// NewContactRepository constructs a ContactRepository.
func NewContactRepository(db *sqlx.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// ListAll returns every contact entry in display order. The set is small, so
// no pagination is offered.
func (r *ContactRepository) ListAll(ctx context.Context) ([]models.ContactInfo, error) {
	const query = `SELECT id, key, value_ar, value_en, value_fr, sort_order, created_at, updated_at FROM contact_info ORDER BY sort_order ASC, key ASC`
	var entries []models.ContactInfo
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list contact info: %w", err)
	}
	return entries, nil
}

// FindByKey fetches a contact entry by its key.
func (r *ContactRepository) FindByKey(ctx context.Context, key string) (*models.ContactInfo, error) {
	const query = `SELECT id, key, value_ar, value_en, value_fr, sort_order, created_at, updated_at FROM contact_info WHERE key = $1`
	var entry models.ContactInfo
	if err := r.db.GetContext(ctx, &entry, query, key); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Upsert creates or replaces the entry for a key.
func (r *ContactRepository) Upsert(ctx context.Context, entry *models.ContactInfo) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	const query = `INSERT INTO contact_info (id, key, value_ar, value_en, value_fr, sort_order, created_at, updated_at)
		VALUES (:id, :key, :value_ar, :value_en, :value_fr, :sort_order, :created_at, :updated_at)
		ON CONFLICT (key) DO UPDATE SET value_ar = EXCLUDED.value_ar, value_en = EXCLUDED.value_en, value_fr = EXCLUDED.value_fr, sort_order = EXCLUDED.sort_order, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("upsert contact info: %w", err)
	}
	return nil
}

// Delete removes a contact entry by key.
func (r *ContactRepository) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM contact_info WHERE key = $1`
	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("delete contact info: %w", err)
	}
	return nil
}
