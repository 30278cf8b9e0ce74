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

const paymentColumns = "id, request_id, amount, currency, method, status, reference, transaction_id, paid_at, due_date, created_at, updated_at"

// PaymentRepository manages persistence for payments.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// List returns payments matching the filter along with the total count.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error) {
	base := "FROM payments WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Method != nil {
		conditions = append(conditions, fmt.Sprintf("method = $%d", len(args)+1))
		args = append(args, *filter.Method)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(reference) LIKE $%d OR LOWER(COALESCE(transaction_id, '')) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	allowedSorts := map[string]string{
		"created_at": "created_at",
		"amount":     "amount",
		"status":     "status",
		"paid_at":    "paid_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "created_at"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", paymentColumns, base, column, order, size, offset)
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	return payments, total, nil
}

// FindByID fetches a payment by its own ID.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	query := fmt.Sprintf("SELECT %s FROM payments WHERE id = $1", paymentColumns)
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, err
	}
	return &payment, nil
}

// FindByRequestID fetches the payment attached to a service request.
func (r *PaymentRepository) FindByRequestID(ctx context.Context, requestID string) (*models.Payment, error) {
	query := fmt.Sprintf("SELECT %s FROM payments WHERE request_id = $1", paymentColumns)
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, requestID); err != nil {
		return nil, err
	}
	return &payment, nil
}

// FindByReference fetches a payment by its human-facing reference.
func (r *PaymentRepository) FindByReference(ctx context.Context, reference string) (*models.Payment, error) {
	query := fmt.Sprintf("SELECT %s FROM payments WHERE reference = $1", paymentColumns)
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, reference); err != nil {
		return nil, err
	}
	return &payment, nil
}

// Create inserts a new payment record.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}
	payment.UpdatedAt = now

	const query = `INSERT INTO payments (id, request_id, amount, currency, method, status, reference, transaction_id, paid_at, due_date, created_at, updated_at)
		VALUES (:id, :request_id, :amount, :currency, :method, :status, :reference, :transaction_id, :paid_at, :due_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// ListStatusMismatches returns payments whose settlement state differs from
// the copy mirrored onto their request row. Used by the reconciliation job.
func (r *PaymentRepository) ListStatusMismatches(ctx context.Context) ([]models.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments p
		JOIN service_requests sr ON sr.id = p.request_id
		WHERE sr.payment_status <> p.status`, prefixColumns("p", paymentColumns))
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query); err != nil {
		return nil, fmt.Errorf("list payment status mismatches: %w", err)
	}
	return payments, nil
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, part := range parts {
		parts[i] = alias + "." + part
	}
	return strings.Join(parts, ", ")
}

// UpdateStatus transitions the payment's settlement state, stamping paid_at
// on completion.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status models.PaymentStatus, transactionID *string) error {
	now := time.Now().UTC()
	var paidAt *time.Time
	if status == models.PaymentStatusCompleted {
		paidAt = &now
	}
	const query = `UPDATE payments SET status = $2, transaction_id = COALESCE($3, transaction_id), paid_at = COALESCE($4, paid_at), updated_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, transactionID, paidAt, now); err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	return nil
}
