package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mizan-legal/mizan-api/internal/models"
	"github.com/mizan-legal/mizan-api/internal/viewmodel"
	appErrors "github.com/mizan-legal/mizan-api/pkg/errors"
	"github.com/mizan-legal/mizan-api/pkg/mq"
)

type serviceRequestRepository interface {
	List(ctx context.Context, filter models.ServiceRequestFilter) ([]models.ServiceRequest, int, error)
	FindByID(ctx context.Context, id string) (*models.ServiceRequest, error)
	Create(ctx context.Context, request *models.ServiceRequest) error
	UpdateStatus(ctx context.Context, id string, status models.RequestStatus) error
	Assign(ctx context.Context, id, consultantID, consultantName string) error
	ListReplies(ctx context.Context, requestID string) ([]models.RequestReply, error)
	AddReply(ctx context.Context, reply *models.RequestReply) error
}

type directoryProvider interface {
	Directory(ctx context.Context) models.ConsultantDirectory
}

type catalogProvider interface {
	Catalog(ctx context.Context) map[string]models.ServiceCategory
}

type consultantFinder interface {
	Get(ctx context.Context, id string) (*models.Consultant, error)
}

type counterInvalidator interface {
	InvalidateCounter(ctx context.Context, clientID string)
}

// ListRequestsOptions drives the client-facing request listing. Search is
// applied in memory after the database stage, so it also matches against the
// localized names only the display layer knows about.
type ListRequestsOptions struct {
	Status       *models.RequestStatus
	Search       string
	Page         int
	PageSize     int
	ForceRefresh bool
}

// CreateRequestInput holds the client submission payload.
type CreateRequestInput struct {
	CategoryID  *string `json:"category_id"`
	Description string  `json:"description" validate:"required,min=10"`
	Urgency     string  `json:"urgency" validate:"omitempty,oneof=low normal high urgent"`
}

// ReplyInput holds a staff message appended to a request thread.
type ReplyInput struct {
	Message string `json:"message" validate:"required"`
}

// requestPage is the cached unit: one mapped database page together with its
// pagination metadata, stored before the in-memory search stage.
type requestPage struct {
	Requests   []viewmodel.DisplayRequest `json:"requests"`
	Pagination models.Pagination          `json:"pagination"`
}

// RequestService is the gateway between raw persistence and display-ready
// request projections. It scopes every client call to the authenticated
// session and fronts reads with a short-lived cache.
type RequestService struct {
	repo        serviceRequestRepository
	directory   directoryProvider
	catalog     catalogProvider
	consultants consultantFinder
	cache       *CacheService
	cacheTTL    time.Duration
	counters    counterInvalidator
	publisher   mq.Publisher
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewRequestService constructs the request service.
func NewRequestService(
	repo serviceRequestRepository,
	directory directoryProvider,
	catalog catalogProvider,
	consultants consultantFinder,
	cache *CacheService,
	cacheTTL time.Duration,
	counters counterInvalidator,
	publisher mq.Publisher,
	validate *validator.Validate,
	logger *zap.Logger,
) *RequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		repo:        repo,
		directory:   directory,
		catalog:     catalog,
		consultants: consultants,
		cache:       cache,
		cacheTTL:    cacheTTL,
		counters:    counters,
		publisher:   publisher,
		validator:   validate,
		logger:      logger,
	}
}

// List returns the authenticated client's requests as display projections.
// Without a session it short-circuits to an empty result: no repository or
// cache round trip happens at all.
func (s *RequestService) List(ctx context.Context, claims *models.JWTClaims, opts ListRequestsOptions) ([]viewmodel.DisplayRequest, *models.Pagination, error) {
	if claims == nil || claims.UserID == "" {
		return []viewmodel.DisplayRequest{}, &models.Pagination{}, nil
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	size := opts.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}

	key := listCacheKey(claims.UserID, opts.Status, page, size)
	if !opts.ForceRefresh {
		var cached requestPage
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			pagination := cached.Pagination
			return viewmodel.FilterBySearch(cached.Requests, opts.Search), &pagination, nil
		}
	}

	filter := models.ServiceRequestFilter{
		ClientID: claims.UserID,
		Status:   opts.Status,
		Page:     page,
		PageSize: size,
	}
	raws, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list service requests")
	}

	displays := viewmodel.MapServiceRequests(raws, s.directory.Directory(ctx), s.catalog.Catalog(ctx))
	pagination := models.Pagination{Page: page, PageSize: size, TotalCount: total}

	if err := s.cache.Set(ctx, key, requestPage{Requests: displays, Pagination: pagination}, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache request listing", zap.String("key", key), zap.Error(err))
	}

	return viewmodel.FilterBySearch(displays, opts.Search), &pagination, nil
}

// AdminList returns raw requests across all clients for back-office views.
func (s *RequestService) AdminList(ctx context.Context, filter models.ServiceRequestFilter) ([]models.ServiceRequest, *models.Pagination, error) {
	raws, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list service requests")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return raws, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one request as a display projection with its reply thread.
// Clients can only see their own requests.
func (s *RequestService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*viewmodel.DisplayRequest, error) {
	if claims == nil || claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}

	raw, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if claims.Role == models.RoleClient && raw.ClientID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "service request not found")
	}

	replies, err := s.repo.ListReplies(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load replies")
	}
	raw.Replies = replies

	var category *models.ServiceCategory
	if raw.CategoryID != nil {
		if entry, ok := s.catalog.Catalog(ctx)[*raw.CategoryID]; ok {
			category = &entry
		}
	}

	display := viewmodel.MapServiceRequest(*raw, s.directory.Directory(ctx), category)
	return &display, nil
}

// Create records a new client submission in the pending state.
func (s *RequestService) Create(ctx context.Context, claims *models.JWTClaims, input CreateRequestInput) (*models.ServiceRequest, error) {
	if claims == nil || claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}

	urgency := models.Urgency(input.Urgency)
	if input.Urgency == "" {
		urgency = models.UrgencyNormal
	}

	request := &models.ServiceRequest{
		ClientID:           claims.UserID,
		CategoryID:         input.CategoryID,
		Status:             models.RequestStatusPending,
		Urgency:            urgency,
		ServiceDescription: input.Description,
		PaymentStatus:      models.PaymentStatusPending,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create service request")
	}

	s.invalidateClient(ctx, claims.UserID)
	s.publish(ctx, "request.created", request)
	return request, nil
}

// UpdateStatus moves a request to a new workflow state. The viewed flag is
// reset so the change surfaces in the client's notification counter.
func (s *RequestService) UpdateStatus(ctx context.Context, id string, status models.RequestStatus) (*models.ServiceRequest, error) {
	if !validRequestStatus(status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown request status %q", status))
	}
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update request status")
	}
	request.Status = status
	request.Viewed = false

	s.invalidateClient(ctx, request.ClientID)
	s.publish(ctx, "request.status_changed", request)
	return request, nil
}

// Assign links a consultant to a request, denormalising the name onto the
// request row for the display fallback chain.
func (s *RequestService) Assign(ctx context.Context, id, consultantID string) (*models.ServiceRequest, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	consultant, err := s.consultants.Get(ctx, consultantID)
	if err != nil {
		return nil, err
	}
	if !consultant.Active {
		return nil, appErrors.Clone(appErrors.ErrConflict, "consultant is inactive")
	}
	if err := s.repo.Assign(ctx, id, consultant.ID, consultant.Name); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign consultant")
	}
	request.AssignedTo = &consultant.ID
	request.AssignedConsultantName = &consultant.Name
	request.Viewed = false

	s.invalidateClient(ctx, request.ClientID)
	s.publish(ctx, "request.assigned", request)
	return request, nil
}

// Reply appends a staff message to the request thread.
func (s *RequestService) Reply(ctx context.Context, claims *models.JWTClaims, requestID string, input ReplyInput) (*models.RequestReply, error) {
	if claims == nil || claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reply payload")
	}
	request, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}

	reply := &models.RequestReply{
		RequestID: requestID,
		Author:    claims.FullName,
		Role:      replyRoleFor(claims.Role),
		Message:   input.Message,
	}
	if err := s.repo.AddReply(ctx, reply); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add reply")
	}

	s.invalidateClient(ctx, request.ClientID)
	s.publish(ctx, "request.replied", reply)
	return reply, nil
}

func (s *RequestService) load(ctx context.Context, id string) (*models.ServiceRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "service request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service request")
	}
	return request, nil
}

func (s *RequestService) invalidateClient(ctx context.Context, clientID string) {
	if err := s.cache.Invalidate(ctx, "requests:"+clientID+":*"); err != nil {
		s.logger.Warn("failed to invalidate request cache", zap.String("client_id", clientID), zap.Error(err))
	}
	if s.counters != nil {
		s.counters.InvalidateCounter(ctx, clientID)
	}
}

func (s *RequestService) publish(ctx context.Context, routingKey string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, routingKey, payload); err != nil {
		s.logger.Warn("failed to publish event", zap.String("routing_key", routingKey), zap.Error(err))
	}
}

func listCacheKey(clientID string, status *models.RequestStatus, page, size int) string {
	statusPart := "all"
	if status != nil {
		statusPart = string(*status)
	}
	return fmt.Sprintf("requests:%s:%s:%d:%d", clientID, statusPart, page, size)
}

func validRequestStatus(status models.RequestStatus) bool {
	switch status {
	case models.RequestStatusPending, models.RequestStatusPendingPayment,
		models.RequestStatusInProgress, models.RequestStatusCompleted,
		models.RequestStatusRejected:
		return true
	}
	return false
}

func replyRoleFor(role models.UserRole) models.ReplyRole {
	switch role {
	case models.RoleConsultant:
		return models.ReplyRoleConsultant
	case models.RoleSupport:
		return models.ReplyRoleSupport
	default:
		return models.ReplyRoleAdmin
	}
}
