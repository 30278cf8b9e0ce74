package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizan-legal/mizan-api/internal/middleware"
	"github.com/mizan-legal/mizan-api/internal/models"
	"github.com/mizan-legal/mizan-api/internal/service"
)

type fakeRequestRepo struct {
	requests  []models.ServiceRequest
	listCalls int
}

func (f *fakeRequestRepo) List(_ context.Context, filter models.ServiceRequestFilter) ([]models.ServiceRequest, int, error) {
	f.listCalls++
	var out []models.ServiceRequest
	for _, r := range f.requests {
		if filter.ClientID != "" && r.ClientID != filter.ClientID {
			continue
		}
		out = append(out, r)
	}
	return out, len(out), nil
}

func (f *fakeRequestRepo) FindByID(_ context.Context, id string) (*models.ServiceRequest, error) {
	for i := range f.requests {
		if f.requests[i].ID == id {
			r := f.requests[i]
			return &r, nil
		}
	}
	return nil, sqlNoRows()
}

func (f *fakeRequestRepo) Create(_ context.Context, request *models.ServiceRequest) error {
	f.requests = append(f.requests, *request)
	return nil
}

func (f *fakeRequestRepo) UpdateStatus(context.Context, string, models.RequestStatus) error {
	return nil
}

func (f *fakeRequestRepo) Assign(context.Context, string, string, string) error { return nil }

func (f *fakeRequestRepo) ListReplies(context.Context, string) ([]models.RequestReply, error) {
	return nil, nil
}

func (f *fakeRequestRepo) AddReply(context.Context, *models.RequestReply) error { return nil }

type fakeDirectory struct{}

func (fakeDirectory) Directory(context.Context) models.ConsultantDirectory {
	return models.ConsultantDirectory{}
}

type fakeCatalog struct{}

func (fakeCatalog) Catalog(context.Context) map[string]models.ServiceCategory {
	return map[string]models.ServiceCategory{}
}

func newTestRequestHandler(repo *fakeRequestRepo) *RequestHandler {
	svc := service.NewRequestService(repo, fakeDirectory{}, fakeCatalog{}, nil, nil, time.Minute, nil, nil, nil, nil)
	return NewRequestHandler(svc, nil)
}

func clientClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleClient, Email: id + "@example.dz"}
}

func TestRequestHandlerListAnonymousReturnsEmpty(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeRequestRepo{requests: []models.ServiceRequest{{ID: "req-1", ClientID: "client-1"}}}
	handler := newTestRequestHandler(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/requests", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, repo.listCalls)

	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Empty(t, envelope.Data)
}

func TestRequestHandlerListScopedToSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeRequestRepo{requests: []models.ServiceRequest{
		{ID: "req-1", ClientID: "client-1", Status: models.RequestStatusPending, ServiceDescription: "contract review for my startup"},
		{ID: "req-2", ClientID: "client-2", Status: models.RequestStatusPending, ServiceDescription: "property dispute"},
	}}
	handler := newTestRequestHandler(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/requests?page=1&limit=20", nil)
	c.Set(middleware.ContextUserKey, clientClaims("client-1"))

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "req-1", envelope.Data[0].ID)
}

func TestRequestHandlerGetOtherClientHidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeRequestRepo{requests: []models.ServiceRequest{
		{ID: "req-1", ClientID: "client-1", Status: models.RequestStatusPending},
	}}
	handler := newTestRequestHandler(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/requests/req-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}
	c.Set(middleware.ContextUserKey, clientClaims("client-2"))

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestHandlerCreateValidatesPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeRequestRepo{}
	handler := newTestRequestHandler(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = newJSONRequest(t, http.MethodPost, "/requests", map[string]string{"description": "short"})
	c.Set(middleware.ContextUserKey, clientClaims("client-1"))

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, repo.requests)
}

func TestRequestHandlerCreateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeRequestRepo{}
	handler := newTestRequestHandler(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = newJSONRequest(t, http.MethodPost, "/requests", map[string]string{
		"description": "need help drafting a commercial lease agreement",
		"urgency":     "high",
	})
	c.Set(middleware.ContextUserKey, clientClaims("client-1"))

	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.requests, 1)
	assert.Equal(t, "client-1", repo.requests[0].ClientID)
	assert.Equal(t, models.RequestStatusPending, repo.requests[0].Status)
}
