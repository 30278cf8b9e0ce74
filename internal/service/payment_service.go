package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mizan-legal/mizan-api/internal/models"
	"github.com/mizan-legal/mizan-api/internal/vocab"
	appErrors "github.com/mizan-legal/mizan-api/pkg/errors"
	"github.com/mizan-legal/mizan-api/pkg/export"
	"github.com/mizan-legal/mizan-api/pkg/mq"
)

type paymentRepository interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error)
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	FindByRequestID(ctx context.Context, requestID string) (*models.Payment, error)
	FindByReference(ctx context.Context, reference string) (*models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	UpdateStatus(ctx context.Context, id string, status models.PaymentStatus, transactionID *string) error
	ListStatusMismatches(ctx context.Context) ([]models.Payment, error)
}

type paymentRequestRepository interface {
	FindByID(ctx context.Context, id string) (*models.ServiceRequest, error)
	SetPaymentExpectation(ctx context.Context, id string, amount float64, currency string) error
	UpdatePaymentState(ctx context.Context, id string, status models.PaymentStatus) error
}

type paymentUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// paymentTransitions defines the allowed settlement state machine. Absent
// entries are terminal states.
var paymentTransitions = map[models.PaymentStatus][]models.PaymentStatus{
	models.PaymentStatusPending:    {models.PaymentStatusProcessing, models.PaymentStatusCompleted, models.PaymentStatusFailed, models.PaymentStatusCancelled},
	models.PaymentStatusProcessing: {models.PaymentStatusCompleted, models.PaymentStatusFailed, models.PaymentStatusCancelled},
	models.PaymentStatusFailed:     {models.PaymentStatusPending, models.PaymentStatusProcessing},
	models.PaymentStatusCompleted:  {models.PaymentStatusRefunded},
}

// RequirePaymentInput attaches a fee to a service request.
type RequirePaymentInput struct {
	RequestID string     `json:"request_id" validate:"required"`
	Amount    float64    `json:"amount" validate:"required,gt=0"`
	Currency  string     `json:"currency" validate:"required,len=3"`
	Method    string     `json:"method" validate:"required,oneof=ccp baridimob bank_transfer cash"`
	DueDate   *time.Time `json:"due_date"`
}

// UpdatePaymentStatusInput transitions a payment's settlement state.
type UpdatePaymentStatusInput struct {
	Status        string  `json:"status" validate:"required,oneof=pending processing completed failed cancelled refunded"`
	TransactionID *string `json:"transaction_id"`
}

// PaymentService manages settlement records and keeps the copy mirrored onto
// request rows in step with them.
type PaymentService struct {
	payments  paymentRepository
	requests  paymentRequestRepository
	users     paymentUserRepository
	cache     *CacheService
	counters  counterInvalidator
	receipts  *export.ReceiptRenderer
	csv       *export.CSVExporter
	publisher mq.Publisher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaymentService constructs the payment service.
func NewPaymentService(
	payments paymentRepository,
	requests paymentRequestRepository,
	users paymentUserRepository,
	cache *CacheService,
	counters counterInvalidator,
	receipts *export.ReceiptRenderer,
	csv *export.CSVExporter,
	publisher mq.Publisher,
	validate *validator.Validate,
	logger *zap.Logger,
) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if receipts == nil {
		receipts = export.NewReceiptRenderer("")
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	return &PaymentService{
		payments:  payments,
		requests:  requests,
		users:     users,
		cache:     cache,
		counters:  counters,
		receipts:  receipts,
		csv:       csv,
		publisher: publisher,
		validator: validate,
		logger:    logger,
	}
}

// RequirePayment creates the settlement record for a request and flips the
// request into the pending_payment workflow state.
func (s *PaymentService) RequirePayment(ctx context.Context, input RequirePaymentInput) (*models.Payment, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	request, err := s.loadRequest(ctx, input.RequestID)
	if err != nil {
		return nil, err
	}

	if _, err := s.payments.FindByRequestID(ctx, input.RequestID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "request already has a payment")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing payment")
	}

	payment := &models.Payment{
		RequestID: input.RequestID,
		Amount:    input.Amount,
		Currency:  strings.ToUpper(input.Currency),
		Method:    models.PaymentMethod(input.Method),
		Status:    models.PaymentStatusPending,
		Reference: newPaymentReference(),
		DueDate:   input.DueDate,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create payment")
	}

	if err := s.requests.SetPaymentExpectation(ctx, input.RequestID, payment.Amount, payment.Currency); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update request payment state")
	}

	s.invalidateClient(ctx, request.ClientID)
	s.publish(ctx, "payment.required", payment)
	return payment, nil
}

// Details returns a payment with its request and paying client. Clients can
// only see payments on their own requests.
func (s *PaymentService) Details(ctx context.Context, claims *models.JWTClaims, paymentID string) (*models.PaymentDetails, error) {
	payment, err := s.loadPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return s.assembleDetails(ctx, claims, payment)
}

// DetailsByRequest resolves the payment attached to a request.
func (s *PaymentService) DetailsByRequest(ctx context.Context, claims *models.JWTClaims, requestID string) (*models.PaymentDetails, error) {
	payment, err := s.payments.FindByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	return s.assembleDetails(ctx, claims, payment)
}

// DetailsByReference resolves a payment by its human-facing reference.
func (s *PaymentService) DetailsByReference(ctx context.Context, claims *models.JWTClaims, reference string) (*models.PaymentDetails, error) {
	payment, err := s.payments.FindByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	return s.assembleDetails(ctx, claims, payment)
}

// List returns payments for back-office views.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, *models.Pagination, error) {
	payments, total, err := s.payments.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return payments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// UpdateStatus transitions a payment's settlement state and mirrors it onto
// the request row.
func (s *PaymentService) UpdateStatus(ctx context.Context, paymentID string, input UpdatePaymentStatusInput) (*models.Payment, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment status payload")
	}

	payment, err := s.loadPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	next := models.PaymentStatus(input.Status)
	if !transitionAllowed(payment.Status, next) {
		return nil, appErrors.Clone(appErrors.ErrPaymentState, fmt.Sprintf("cannot move payment from %s to %s", payment.Status, next))
	}

	if err := s.payments.UpdateStatus(ctx, paymentID, next, input.TransactionID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update payment status")
	}
	if err := s.requests.UpdatePaymentState(ctx, payment.RequestID, next); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mirror payment status")
	}

	payment.Status = next
	if input.TransactionID != nil {
		payment.TransactionID = input.TransactionID
	}

	if request, err := s.requests.FindByID(ctx, payment.RequestID); err == nil {
		s.invalidateClient(ctx, request.ClientID)
	}
	s.publish(ctx, "payment.updated", payment)
	return payment, nil
}

// Receipt renders a PDF receipt for a completed payment.
func (s *PaymentService) Receipt(ctx context.Context, claims *models.JWTClaims, paymentID string, lang vocab.Lang) ([]byte, error) {
	details, err := s.Details(ctx, claims, paymentID)
	if err != nil {
		return nil, err
	}
	payment := details.Payment
	if payment.Status != models.PaymentStatusCompleted {
		return nil, appErrors.Clone(appErrors.ErrPaymentState, "receipt is only available for completed payments")
	}

	receipt := export.Receipt{
		Reference: payment.Reference,
		RequestID: payment.RequestID,
		Method:    vocab.PaymentMethodText(payment.Method).In(lang),
		Amount:    fmt.Sprintf("%.2f %s", payment.Amount, payment.Currency),
		Status:    vocab.PaymentStatusText(payment.Status).In(lang),
		IssuedAt:  payment.CreatedAt.UTC().Format("02 Jan 2006"),
	}
	if details.Client != nil {
		receipt.ClientName = details.Client.FullName
	}
	if details.ServiceRequest != nil {
		receipt.ServiceName = details.ServiceRequest.ServiceDescription
	}
	if payment.PaidAt != nil {
		receipt.PaidAt = payment.PaidAt.UTC().Format("02 Jan 2006")
	}

	data, err := s.receipts.Render(receipt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}
	return data, nil
}

// ExportCSV renders every payment matching the filter as CSV, walking all
// pages regardless of the filter's own pagination.
func (s *PaymentService) ExportCSV(ctx context.Context, filter models.PaymentFilter) ([]byte, error) {
	filter.Page = 1
	filter.PageSize = 100

	var all []models.Payment
	for {
		payments, total, err := s.payments.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments for export")
		}
		all = append(all, payments...)
		if len(payments) == 0 || len(all) >= total {
			break
		}
		filter.Page++
	}

	headers := []string{"reference", "request_id", "amount", "currency", "method", "status", "transaction_id", "paid_at", "created_at"}
	rows := make([]map[string]string, 0, len(all))
	for _, payment := range all {
		row := map[string]string{
			"reference":  payment.Reference,
			"request_id": payment.RequestID,
			"amount":     fmt.Sprintf("%.2f", payment.Amount),
			"currency":   payment.Currency,
			"method":     string(payment.Method),
			"status":     string(payment.Status),
			"created_at": payment.CreatedAt.UTC().Format(time.RFC3339),
		}
		if payment.TransactionID != nil {
			row["transaction_id"] = *payment.TransactionID
		}
		if payment.PaidAt != nil {
			row["paid_at"] = payment.PaidAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, row)
	}

	data, err := s.csv.Render(export.Dataset{Headers: headers, Rows: rows})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return data, nil
}

// Reconcile re-mirrors the settlement state onto request rows that drifted,
// returning how many rows were fixed. The scheduler runs it periodically.
func (s *PaymentService) Reconcile(ctx context.Context) (int, error) {
	mismatched, err := s.payments.ListStatusMismatches(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to find drifted payment mirrors")
	}

	fixed := 0
	for _, payment := range mismatched {
		if err := s.requests.UpdatePaymentState(ctx, payment.RequestID, payment.Status); err != nil {
			s.logger.Warn("failed to reconcile payment mirror",
				zap.String("payment_id", payment.ID), zap.String("request_id", payment.RequestID), zap.Error(err))
			continue
		}
		if request, err := s.requests.FindByID(ctx, payment.RequestID); err == nil {
			s.invalidateClient(ctx, request.ClientID)
		}
		fixed++
	}
	return fixed, nil
}

func (s *PaymentService) assembleDetails(ctx context.Context, claims *models.JWTClaims, payment *models.Payment) (*models.PaymentDetails, error) {
	request, err := s.loadRequest(ctx, payment.RequestID)
	if err != nil {
		return nil, err
	}
	if claims != nil && claims.Role == models.RoleClient && request.ClientID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
	}

	details := &models.PaymentDetails{Payment: *payment, ServiceRequest: request}
	if user, err := s.users.FindByID(ctx, request.ClientID); err == nil {
		details.Client = &models.UserInfo{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     user.Role,
		}
	}
	return details, nil
}

func (s *PaymentService) loadPayment(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	return payment, nil
}

func (s *PaymentService) loadRequest(ctx context.Context, id string) (*models.ServiceRequest, error) {
	request, err := s.requests.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "service request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service request")
	}
	return request, nil
}

func (s *PaymentService) invalidateClient(ctx context.Context, clientID string) {
	if err := s.cache.Invalidate(ctx, "requests:"+clientID+":*"); err != nil {
		s.logger.Warn("failed to invalidate request cache", zap.String("client_id", clientID), zap.Error(err))
	}
	if s.counters != nil {
		s.counters.InvalidateCounter(ctx, clientID)
	}
}

func (s *PaymentService) publish(ctx context.Context, routingKey string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, routingKey, payload); err != nil {
		s.logger.Warn("failed to publish event", zap.String("routing_key", routingKey), zap.Error(err))
	}
}

func transitionAllowed(from, to models.PaymentStatus) bool {
	if from == to {
		return true
	}
	for _, allowed := range paymentTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func newPaymentReference() string {
	return "MZN-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
