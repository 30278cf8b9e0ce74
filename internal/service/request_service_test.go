package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mizan-legal/mizan-api/internal/models"
	appErrors "github.com/mizan-legal/mizan-api/pkg/errors"
)

// memoryCacheRepo is an in-memory CacheRepository used across service tests.
type memoryCacheRepo struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
	deletes []string
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	m.sets++
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, pattern)
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		for key := range m.entries {
			if strings.HasPrefix(key, prefix) {
				delete(m.entries, key)
			}
		}
		return nil
	}
	delete(m.entries, pattern)
	return nil
}

type mockRequestRepo struct {
	requests  map[string]models.ServiceRequest
	replies   map[string][]models.RequestReply
	listCalls int
	listTotal int
	err       error
}

func (m *mockRequestRepo) List(ctx context.Context, filter models.ServiceRequestFilter) ([]models.ServiceRequest, int, error) {
	m.listCalls++
	if m.err != nil {
		return nil, 0, m.err
	}
	var out []models.ServiceRequest
	for _, r := range m.requests {
		if filter.ClientID != "" && r.ClientID != filter.ClientID {
			continue
		}
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		out = append(out, r)
	}
	total := m.listTotal
	if total == 0 {
		total = len(out)
	}
	return out, total, nil
}

func (m *mockRequestRepo) FindByID(ctx context.Context, id string) (*models.ServiceRequest, error) {
	if r, ok := m.requests[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRequestRepo) Create(ctx context.Context, request *models.ServiceRequest) error {
	if m.requests == nil {
		m.requests = make(map[string]models.ServiceRequest)
	}
	if request.ID == "" {
		request.ID = "generated"
	}
	m.requests[request.ID] = *request
	return nil
}

func (m *mockRequestRepo) UpdateStatus(ctx context.Context, id string, status models.RequestStatus) error {
	r := m.requests[id]
	r.Status = status
	r.Viewed = false
	m.requests[id] = r
	return nil
}

func (m *mockRequestRepo) Assign(ctx context.Context, id, consultantID, consultantName string) error {
	r := m.requests[id]
	r.AssignedTo = &consultantID
	r.AssignedConsultantName = &consultantName
	m.requests[id] = r
	return nil
}

func (m *mockRequestRepo) ListReplies(ctx context.Context, requestID string) ([]models.RequestReply, error) {
	return m.replies[requestID], nil
}

func (m *mockRequestRepo) AddReply(ctx context.Context, reply *models.RequestReply) error {
	if m.replies == nil {
		m.replies = make(map[string][]models.RequestReply)
	}
	if reply.ID == "" {
		reply.ID = "reply-generated"
	}
	m.replies[reply.RequestID] = append(m.replies[reply.RequestID], *reply)
	return nil
}

type stubDirectory struct {
	directory models.ConsultantDirectory
}

func (s *stubDirectory) Directory(ctx context.Context) models.ConsultantDirectory {
	return s.directory
}

type stubCatalog struct {
	catalog map[string]models.ServiceCategory
}

func (s *stubCatalog) Catalog(ctx context.Context) map[string]models.ServiceCategory {
	return s.catalog
}

type stubConsultantFinder struct {
	consultants map[string]models.Consultant
}

func (s *stubConsultantFinder) Get(ctx context.Context, id string) (*models.Consultant, error) {
	if c, ok := s.consultants[id]; ok {
		return &c, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "consultant not found")
}

type recordingCounters struct {
	mu          sync.Mutex
	invalidated []string
}

func (r *recordingCounters) InvalidateCounter(ctx context.Context, clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidated = append(r.invalidated, clientID)
}

func (r *recordingCounters) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.invalidated...)
}

type capturePublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *capturePublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, routingKey)
	return nil
}

func (p *capturePublisher) routingKeys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func newRequestService(repo *mockRequestRepo, cacheRepo *memoryCacheRepo) (*RequestService, *recordingCounters, *capturePublisher) {
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	counters := &recordingCounters{}
	publisher := &capturePublisher{}
	svc := NewRequestService(
		repo,
		&stubDirectory{directory: models.ConsultantDirectory{}},
		&stubCatalog{catalog: map[string]models.ServiceCategory{}},
		&stubConsultantFinder{},
		cache,
		time.Minute,
		counters,
		publisher,
		validator.New(),
		zap.NewNop(),
	)
	return svc, counters, publisher
}

func TestRequestServiceListWithoutSession(t *testing.T) {
	repo := &mockRequestRepo{}
	svc, _, _ := newRequestService(repo, newMemoryCacheRepo())

	displays, pagination, err := svc.List(context.Background(), nil, ListRequestsOptions{})
	require.NoError(t, err)
	assert.Empty(t, displays)
	assert.NotNil(t, pagination)
	assert.Zero(t, repo.listCalls, "no session must mean no storage round trip")

	displays, _, err = svc.List(context.Background(), &models.JWTClaims{}, ListRequestsOptions{})
	require.NoError(t, err)
	assert.Empty(t, displays)
	assert.Zero(t, repo.listCalls)
}

func TestRequestServiceListCachesPage(t *testing.T) {
	repo := &mockRequestRepo{requests: map[string]models.ServiceRequest{
		"req-1": {ID: "req-1", ClientID: "client-1", Status: models.RequestStatusPending, Urgency: models.UrgencyNormal, ServiceDescription: "Contract review", CreatedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)},
	}}
	svc, _, _ := newRequestService(repo, newMemoryCacheRepo())
	claims := &models.JWTClaims{UserID: "client-1", Role: models.RoleClient}

	displays, pagination, err := svc.List(context.Background(), claims, ListRequestsOptions{})
	require.NoError(t, err)
	require.Len(t, displays, 1)
	assert.Equal(t, "Contract review", displays[0].ServiceName.EN)
	assert.Equal(t, 1, pagination.TotalCount)
	assert.Equal(t, 1, repo.listCalls)

	_, _, err = svc.List(context.Background(), claims, ListRequestsOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls, "second read must be served from cache")

	_, _, err = svc.List(context.Background(), claims, ListRequestsOptions{ForceRefresh: true})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls, "force refresh must bypass the cache read")
}

func TestRequestServiceListSearchAppliedInMemory(t *testing.T) {
	name := "A. Benali"
	repo := &mockRequestRepo{requests: map[string]models.ServiceRequest{
		"req-1": {ID: "req-1", ClientID: "client-1", Status: models.RequestStatusInProgress, ServiceDescription: "Company incorporation", AssignedConsultantName: &name},
		"req-2": {ID: "req-2", ClientID: "client-1", Status: models.RequestStatusPending, ServiceDescription: "Lease dispute"},
	}}
	svc, _, _ := newRequestService(repo, newMemoryCacheRepo())
	claims := &models.JWTClaims{UserID: "client-1", Role: models.RoleClient}

	displays, pagination, err := svc.List(context.Background(), claims, ListRequestsOptions{Search: "benali"})
	require.NoError(t, err)
	require.Len(t, displays, 1)
	assert.Equal(t, "req-1", displays[0].ID)
	assert.Equal(t, 2, pagination.TotalCount, "pagination reflects the database stage, not the search stage")

	// The cached page keeps all rows, so a different term still works.
	displays, _, err = svc.List(context.Background(), claims, ListRequestsOptions{Search: "lease"})
	require.NoError(t, err)
	require.Len(t, displays, 1)
	assert.Equal(t, "req-2", displays[0].ID)
	assert.Equal(t, 1, repo.listCalls)
}

func TestRequestServiceGetScopesClients(t *testing.T) {
	repo := &mockRequestRepo{requests: map[string]models.ServiceRequest{
		"req-1": {ID: "req-1", ClientID: "client-1", Status: models.RequestStatusPending},
	}}
	svc, _, _ := newRequestService(repo, newMemoryCacheRepo())

	_, err := svc.Get(context.Background(), nil, "req-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	_, err = svc.Get(context.Background(), &models.JWTClaims{UserID: "client-2", Role: models.RoleClient}, "req-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	display, err := svc.Get(context.Background(), &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}, "req-1")
	require.NoError(t, err)
	assert.Equal(t, "req-1", display.ID)
}

func TestRequestServiceCreateDefaults(t *testing.T) {
	repo := &mockRequestRepo{requests: make(map[string]models.ServiceRequest)}
	svc, counters, publisher := newRequestService(repo, newMemoryCacheRepo())
	claims := &models.JWTClaims{UserID: "client-1", Role: models.RoleClient}

	request, err := svc.Create(context.Background(), claims, CreateRequestInput{Description: "I need help with a commercial lease"})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, request.Status)
	assert.Equal(t, models.UrgencyNormal, request.Urgency)
	assert.False(t, request.PaymentRequired)
	assert.Contains(t, counters.calls(), "client-1")
	assert.Contains(t, publisher.routingKeys(), "request.created")

	_, err = svc.Create(context.Background(), claims, CreateRequestInput{Description: "short"})
	require.Error(t, err)
}

func TestRequestServiceUpdateStatusRejectsUnknown(t *testing.T) {
	repo := &mockRequestRepo{requests: map[string]models.ServiceRequest{
		"req-1": {ID: "req-1", ClientID: "client-1", Status: models.RequestStatusPending, Viewed: true},
	}}
	svc, counters, publisher := newRequestService(repo, newMemoryCacheRepo())

	_, err := svc.UpdateStatus(context.Background(), "req-1", models.RequestStatus("archived"))
	require.Error(t, err)

	updated, err := svc.UpdateStatus(context.Background(), "req-1", models.RequestStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusInProgress, updated.Status)
	assert.False(t, updated.Viewed)
	assert.Contains(t, counters.calls(), "client-1")
	assert.Contains(t, publisher.routingKeys(), "request.status_changed")
}

func TestRequestServiceAssignRejectsInactiveConsultant(t *testing.T) {
	repo := &mockRequestRepo{requests: map[string]models.ServiceRequest{
		"req-1": {ID: "req-1", ClientID: "client-1", Status: models.RequestStatusPending},
	}}
	cacheRepo := newMemoryCacheRepo()
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	finder := &stubConsultantFinder{consultants: map[string]models.Consultant{
		"cons-1": {ID: "cons-1", Name: "A. Benali", Active: true},
		"cons-2": {ID: "cons-2", Name: "M. Saidi", Active: false},
	}}
	svc := NewRequestService(repo, &stubDirectory{}, &stubCatalog{}, finder, cache, time.Minute, &recordingCounters{}, &capturePublisher{}, validator.New(), zap.NewNop())

	_, err := svc.Assign(context.Background(), "req-1", "cons-2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	assigned, err := svc.Assign(context.Background(), "req-1", "cons-1")
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedConsultantName)
	assert.Equal(t, "A. Benali", *assigned.AssignedConsultantName)
}

func TestRequestServiceReply(t *testing.T) {
	repo := &mockRequestRepo{requests: map[string]models.ServiceRequest{
		"req-1": {ID: "req-1", ClientID: "client-1", Status: models.RequestStatusInProgress},
	}}
	svc, counters, _ := newRequestService(repo, newMemoryCacheRepo())
	claims := &models.JWTClaims{UserID: "staff-1", Role: models.RoleConsultant, FullName: "M. Saidi"}

	reply, err := svc.Reply(context.Background(), claims, "req-1", ReplyInput{Message: "Documents received"})
	require.NoError(t, err)
	assert.Equal(t, models.ReplyRoleConsultant, reply.Role)
	assert.Equal(t, "M. Saidi", reply.Author)
	assert.Contains(t, counters.calls(), "client-1")
}
