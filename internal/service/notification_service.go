package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mizan-legal/mizan-api/internal/models"
	appErrors "github.com/mizan-legal/mizan-api/pkg/errors"
)

type unviewedCounterRepository interface {
	CountUnviewed(ctx context.Context, clientID string) (int, error)
}

// NotificationCount is the unviewed-request badge payload.
type NotificationCount struct {
	Unviewed int `json:"unviewed"`
}

// NotificationService serves the unviewed-request counter shown as the
// client's notification badge. Counts are cached per client and invalidated
// whenever a request changes underneath them.
type NotificationService struct {
	repo     unviewedCounterRepository
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewNotificationService constructs the notification service.
func NewNotificationService(repo unviewedCounterRepository, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// UnviewedCount returns the badge count for the authenticated client. Without
// a session it short-circuits to zero without touching storage.
func (s *NotificationService) UnviewedCount(ctx context.Context, claims *models.JWTClaims) (NotificationCount, error) {
	if claims == nil || claims.UserID == "" {
		return NotificationCount{}, nil
	}

	key := counterCacheKey(claims.UserID)
	var cached NotificationCount
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	count, err := s.repo.CountUnviewed(ctx, claims.UserID)
	if err != nil {
		return NotificationCount{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unviewed requests")
	}

	result := NotificationCount{Unviewed: count}
	if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache notification counter", zap.String("client_id", claims.UserID), zap.Error(err))
	}
	return result, nil
}

// InvalidateCounter drops the cached badge count for one client so the next
// read recomputes it.
func (s *NotificationService) InvalidateCounter(ctx context.Context, clientID string) {
	if clientID == "" {
		return
	}
	if err := s.cache.Invalidate(ctx, counterCacheKey(clientID)); err != nil {
		s.logger.Warn("failed to invalidate notification counter", zap.String("client_id", clientID), zap.Error(err))
	}
}

// Reconcile drops every cached counter. The scheduler runs it periodically so
// counters that missed an invalidation converge within a cycle.
func (s *NotificationService) Reconcile(ctx context.Context) error {
	if err := s.cache.Invalidate(ctx, "notifications:*"); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reconcile notification counters")
	}
	return nil
}

func counterCacheKey(clientID string) string {
	return "notifications:" + clientID
}
