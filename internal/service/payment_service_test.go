package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mizan-legal/mizan-api/internal/models"
	"github.com/mizan-legal/mizan-api/internal/vocab"
	appErrors "github.com/mizan-legal/mizan-api/pkg/errors"
)

type mockPaymentRepo struct {
	payments   map[string]models.Payment
	mismatched []models.Payment
}

func (m *mockPaymentRepo) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error) {
	var out []models.Payment
	for _, p := range m.payments {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	if p, ok := m.payments[id]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPaymentRepo) FindByRequestID(ctx context.Context, requestID string) (*models.Payment, error) {
	for _, p := range m.payments {
		if p.RequestID == requestID {
			payment := p
			return &payment, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockPaymentRepo) FindByReference(ctx context.Context, reference string) (*models.Payment, error) {
	for _, p := range m.payments {
		if p.Reference == reference {
			payment := p
			return &payment, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	if m.payments == nil {
		m.payments = make(map[string]models.Payment)
	}
	if payment.ID == "" {
		payment.ID = "pay-generated"
	}
	m.payments[payment.ID] = *payment
	return nil
}

func (m *mockPaymentRepo) UpdateStatus(ctx context.Context, id string, status models.PaymentStatus, transactionID *string) error {
	p := m.payments[id]
	p.Status = status
	if transactionID != nil {
		p.TransactionID = transactionID
	}
	if status == models.PaymentStatusCompleted && p.PaidAt == nil {
		now := time.Now().UTC()
		p.PaidAt = &now
	}
	m.payments[id] = p
	return nil
}

func (m *mockPaymentRepo) ListStatusMismatches(ctx context.Context) ([]models.Payment, error) {
	return m.mismatched, nil
}

type mockPaymentRequestRepo struct {
	requests     map[string]models.ServiceRequest
	expectations []string
	mirrored     map[string]models.PaymentStatus
}

func (m *mockPaymentRequestRepo) FindByID(ctx context.Context, id string) (*models.ServiceRequest, error) {
	if r, ok := m.requests[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPaymentRequestRepo) SetPaymentExpectation(ctx context.Context, id string, amount float64, currency string) error {
	m.expectations = append(m.expectations, id)
	r := m.requests[id]
	r.PaymentRequired = true
	r.PaymentAmount = &amount
	r.PaymentCurrency = &currency
	r.Status = models.RequestStatusPendingPayment
	m.requests[id] = r
	return nil
}

func (m *mockPaymentRequestRepo) UpdatePaymentState(ctx context.Context, id string, status models.PaymentStatus) error {
	if m.mirrored == nil {
		m.mirrored = make(map[string]models.PaymentStatus)
	}
	m.mirrored[id] = status
	r := m.requests[id]
	r.PaymentStatus = status
	m.requests[id] = r
	return nil
}

type mockPaymentUserRepo struct {
	users map[string]models.User
}

func (m *mockPaymentUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func newPaymentService(payments *mockPaymentRepo, requests *mockPaymentRequestRepo) (*PaymentService, *recordingCounters, *capturePublisher) {
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, zap.NewNop(), true)
	counters := &recordingCounters{}
	publisher := &capturePublisher{}
	users := &mockPaymentUserRepo{users: map[string]models.User{
		"client-1": {ID: "client-1", Email: "client@example.dz", FullName: "Karim B.", Role: models.RoleClient},
	}}
	svc := NewPaymentService(payments, requests, users, cache, counters, nil, nil, publisher, validator.New(), zap.NewNop())
	return svc, counters, publisher
}

func TestPaymentServiceRequirePayment(t *testing.T) {
	payments := &mockPaymentRepo{}
	requests := &mockPaymentRequestRepo{requests: map[string]models.ServiceRequest{
		"req-1": {ID: "req-1", ClientID: "client-1", Status: models.RequestStatusPending},
	}}
	svc, counters, publisher := newPaymentService(payments, requests)

	payment, err := svc.RequirePayment(context.Background(), RequirePaymentInput{
		RequestID: "req-1",
		Amount:    12000,
		Currency:  "dzd",
		Method:    "ccp",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Equal(t, "DZD", payment.Currency)
	assert.True(t, strings.HasPrefix(payment.Reference, "MZN-"))
	assert.Equal(t, []string{"req-1"}, requests.expectations)
	assert.Contains(t, counters.calls(), "client-1")
	assert.Contains(t, publisher.routingKeys(), "payment.required")

	_, err = svc.RequirePayment(context.Background(), RequirePaymentInput{
		RequestID: "req-1",
		Amount:    500,
		Currency:  "DZD",
		Method:    "cash",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestPaymentServiceUpdateStatusEnforcesTransitions(t *testing.T) {
	payments := &mockPaymentRepo{payments: map[string]models.Payment{
		"pay-1": {ID: "pay-1", RequestID: "req-1", Amount: 12000, Currency: "DZD", Method: models.PaymentMethodCCP, Status: models.PaymentStatusPending, Reference: "MZN-ABCDEF0001"},
	}}
	requests := &mockPaymentRequestRepo{requests: map[string]models.ServiceRequest{
		"req-1": {ID: "req-1", ClientID: "client-1", Status: models.RequestStatusPendingPayment, PaymentRequired: true},
	}}
	svc, _, publisher := newPaymentService(payments, requests)

	txn := "ccp-778899"
	updated, err := svc.UpdateStatus(context.Background(), "pay-1", UpdatePaymentStatusInput{Status: "completed", TransactionID: &txn})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, updated.Status)
	assert.Equal(t, models.PaymentStatusCompleted, requests.mirrored["req-1"], "settlement state must be mirrored onto the request")
	assert.Contains(t, publisher.routingKeys(), "payment.updated")

	_, err = svc.UpdateStatus(context.Background(), "pay-1", UpdatePaymentStatusInput{Status: "processing"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPaymentState.Code, appErrors.FromError(err).Code)

	_, err = svc.UpdateStatus(context.Background(), "pay-1", UpdatePaymentStatusInput{Status: "refunded"})
	require.NoError(t, err)
}

func TestPaymentServiceDetailsScopesClients(t *testing.T) {
	payments := &mockPaymentRepo{payments: map[string]models.Payment{
		"pay-1": {ID: "pay-1", RequestID: "req-1", Status: models.PaymentStatusPending, Reference: "MZN-ABCDEF0001"},
	}}
	requests := &mockPaymentRequestRepo{requests: map[string]models.ServiceRequest{
		"req-1": {ID: "req-1", ClientID: "client-1"},
	}}
	svc, _, _ := newPaymentService(payments, requests)

	_, err := svc.Details(context.Background(), &models.JWTClaims{UserID: "client-2", Role: models.RoleClient}, "pay-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	details, err := svc.Details(context.Background(), &models.JWTClaims{UserID: "client-1", Role: models.RoleClient}, "pay-1")
	require.NoError(t, err)
	require.NotNil(t, details.Client)
	assert.Equal(t, "Karim B.", details.Client.FullName)

	byRef, err := svc.DetailsByReference(context.Background(), &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}, "MZN-ABCDEF0001")
	require.NoError(t, err)
	assert.Equal(t, "pay-1", byRef.Payment.ID)
}

func TestPaymentServiceReceiptRequiresCompletion(t *testing.T) {
	paidAt := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	payments := &mockPaymentRepo{payments: map[string]models.Payment{
		"pay-1": {ID: "pay-1", RequestID: "req-1", Amount: 12000, Currency: "DZD", Method: models.PaymentMethodBaridiMob, Status: models.PaymentStatusPending, Reference: "MZN-ABCDEF0001"},
		"pay-2": {ID: "pay-2", RequestID: "req-1", Amount: 12000, Currency: "DZD", Method: models.PaymentMethodBaridiMob, Status: models.PaymentStatusCompleted, Reference: "MZN-ABCDEF0002", PaidAt: &paidAt},
	}}
	requests := &mockPaymentRequestRepo{requests: map[string]models.ServiceRequest{
		"req-1": {ID: "req-1", ClientID: "client-1", ServiceDescription: "Contract review"},
	}}
	svc, _, _ := newPaymentService(payments, requests)
	admin := &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}

	_, err := svc.Receipt(context.Background(), admin, "pay-1", vocab.LangEn)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPaymentState.Code, appErrors.FromError(err).Code)

	data, err := svc.Receipt(context.Background(), admin, "pay-2", vocab.LangEn)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestPaymentServiceReconcile(t *testing.T) {
	payments := &mockPaymentRepo{
		payments: map[string]models.Payment{
			"pay-1": {ID: "pay-1", RequestID: "req-1", Status: models.PaymentStatusCompleted},
		},
		mismatched: []models.Payment{
			{ID: "pay-1", RequestID: "req-1", Status: models.PaymentStatusCompleted},
		},
	}
	requests := &mockPaymentRequestRepo{requests: map[string]models.ServiceRequest{
		"req-1": {ID: "req-1", ClientID: "client-1", PaymentStatus: models.PaymentStatusPending},
	}}
	svc, counters, _ := newPaymentService(payments, requests)

	fixed, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)
	assert.Equal(t, models.PaymentStatusCompleted, requests.mirrored["req-1"])
	assert.Contains(t, counters.calls(), "client-1")
}

func TestPaymentServiceExportCSV(t *testing.T) {
	payments := &mockPaymentRepo{payments: map[string]models.Payment{
		"pay-1": {ID: "pay-1", RequestID: "req-1", Amount: 12000, Currency: "DZD", Method: models.PaymentMethodCCP, Status: models.PaymentStatusCompleted, Reference: "MZN-ABCDEF0001"},
	}}
	requests := &mockPaymentRequestRepo{requests: map[string]models.ServiceRequest{}}
	svc, _, _ := newPaymentService(payments, requests)

	data, err := svc.ExportCSV(context.Background(), models.PaymentFilter{})
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "reference,request_id,amount")
	assert.Contains(t, text, "MZN-ABCDEF0001")
}
