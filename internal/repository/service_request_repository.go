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

const serviceRequestColumns = "id, client_id, category_id, status, urgency, service_description, assigned_to, assigned_consultant_name, payment_required, payment_amount, payment_currency, payment_status, viewed, created_at, updated_at"

// ServiceRequestRepository manages persistence for service requests and their
// reply threads.
type ServiceRequestRepository struct {
	db *sqlx.DB
}

// NewServiceRequestRepository constructs a ServiceRequestRepository.
func NewServiceRequestRepository(db *sqlx.DB) *ServiceRequestRepository {
	return &ServiceRequestRepository{db: db}
}

// List returns service requests matching the database filter stage along with
// the total count. The client listing leaves Search empty and filters the
// mapped display records in memory instead; the admin listing searches the
// raw descriptions here.
func (r *ServiceRequestRepository) List(ctx context.Context, filter models.ServiceRequestFilter) ([]models.ServiceRequest, int, error) {
	base := "FROM service_requests WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.ClientID != "" {
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", len(args)+1))
		args = append(args, filter.ClientID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("LOWER(service_description) LIKE $%d", len(args)+1))
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
		"updated_at": "updated_at",
		"status":     "status",
		"urgency":    "urgency",
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", serviceRequestColumns, base, column, order, size, offset)
	var requests []models.ServiceRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list service requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count service requests: %w", err)
	}

	return requests, total, nil
}

// FindByID fetches a service request by ID.
func (r *ServiceRequestRepository) FindByID(ctx context.Context, id string) (*models.ServiceRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM service_requests WHERE id = $1", serviceRequestColumns)
	var request models.ServiceRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// Create inserts a new service request.
func (r *ServiceRequestRepository) Create(ctx context.Context, request *models.ServiceRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now

	const query = `INSERT INTO service_requests (id, client_id, category_id, status, urgency, service_description, assigned_to, assigned_consultant_name, payment_required, payment_amount, payment_currency, payment_status, viewed, created_at, updated_at)
		VALUES (:id, :client_id, :category_id, :status, :urgency, :service_description, :assigned_to, :assigned_consultant_name, :payment_required, :payment_amount, :payment_currency, :payment_status, :viewed, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create service request: %w", err)
	}
	return nil
}

// UpdateStatus moves a request to a new workflow status.
func (r *ServiceRequestRepository) UpdateStatus(ctx context.Context, id string, status models.RequestStatus) error {
	const query = `UPDATE service_requests SET status = $2, viewed = FALSE, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update service request status: %w", err)
	}
	return nil
}

// UpdatePaymentState records the payment expectations mirrored onto the
// request row.
func (r *ServiceRequestRepository) UpdatePaymentState(ctx context.Context, id string, status models.PaymentStatus) error {
	const query = `UPDATE service_requests SET payment_status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update service request payment state: %w", err)
	}
	return nil
}

// SetPaymentExpectation flags the request as requiring payment and moves it to
// the pending_payment workflow state.
func (r *ServiceRequestRepository) SetPaymentExpectation(ctx context.Context, id string, amount float64, currency string) error {
	const query = `UPDATE service_requests SET payment_required = TRUE, payment_amount = $2, payment_currency = $3, payment_status = $4, status = $5, viewed = FALSE, updated_at = $6 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, amount, currency, models.PaymentStatusPending, models.RequestStatusPendingPayment, time.Now().UTC()); err != nil {
		return fmt.Errorf("set service request payment expectation: %w", err)
	}
	return nil
}

// Assign links a consultant to a request, denormalising the name so display
// code survives a later consultant removal.
func (r *ServiceRequestRepository) Assign(ctx context.Context, id, consultantID, consultantName string) error {
	const query = `UPDATE service_requests SET assigned_to = $2, assigned_consultant_name = $3, viewed = FALSE, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, consultantID, consultantName, time.Now().UTC()); err != nil {
		return fmt.Errorf("assign service request: %w", err)
	}
	return nil
}

// MarkViewed flags the request as seen by its client. Marking an already
// viewed request is a no-op, which keeps the call idempotent.
func (r *ServiceRequestRepository) MarkViewed(ctx context.Context, id string) error {
	const query = `UPDATE service_requests SET viewed = TRUE, updated_at = $2 WHERE id = $1 AND viewed = FALSE`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark service request viewed: %w", err)
	}
	return nil
}

// CountUnviewed returns the number of unseen requests for a client, feeding
// the notification counter.
func (r *ServiceRequestRepository) CountUnviewed(ctx context.Context, clientID string) (int, error) {
	const query = `SELECT COUNT(*) FROM service_requests WHERE client_id = $1 AND viewed = FALSE`
	var count int
	if err := r.db.GetContext(ctx, &count, query, clientID); err != nil {
		return 0, fmt.Errorf("count unviewed service requests: %w", err)
	}
	return count, nil
}

// ListReplies returns the append-only reply thread in chronological order.
func (r *ServiceRequestRepository) ListReplies(ctx context.Context, requestID string) ([]models.RequestReply, error) {
	const query = `SELECT id, request_id, author, role, message, created_at FROM request_replies WHERE request_id = $1 ORDER BY created_at ASC`
	var replies []models.RequestReply
	if err := r.db.SelectContext(ctx, &replies, query, requestID); err != nil {
		return nil, fmt.Errorf("list request replies: %w", err)
	}
	return replies, nil
}

// AddReply appends a staff message to a request thread and resets the viewed
// flag so the client gets notified.
func (r *ServiceRequestRepository) AddReply(ctx context.Context, reply *models.RequestReply) error {
	if reply.ID == "" {
		reply.ID = uuid.NewString()
	}
	if reply.CreatedAt.IsZero() {
		reply.CreatedAt = time.Now().UTC()
	}

	const insert = `INSERT INTO request_replies (id, request_id, author, role, message, created_at)
		VALUES (:id, :request_id, :author, :role, :message, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, insert, reply); err != nil {
		return fmt.Errorf("add request reply: %w", err)
	}

	const touch = `UPDATE service_requests SET viewed = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, touch, reply.RequestID, time.Now().UTC()); err != nil {
		return fmt.Errorf("touch service request after reply: %w", err)
	}
	return nil
}
