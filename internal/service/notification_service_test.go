package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mizan-legal/mizan-api/internal/models"
)

type mockUnviewedCounter struct {
	counts map[string]int
	calls  int
}

func (m *mockUnviewedCounter) CountUnviewed(ctx context.Context, clientID string) (int, error) {
	m.calls++
	return m.counts[clientID], nil
}

func TestNotificationServiceShortCircuitsWithoutSession(t *testing.T) {
	repo := &mockUnviewedCounter{counts: map[string]int{"client-1": 3}}
	svc := NewNotificationService(repo, NewCacheService(newMemoryCacheRepo(), nil, time.Minute, zap.NewNop(), true), time.Minute, zap.NewNop())

	count, err := svc.UnviewedCount(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, count.Unviewed)
	assert.Zero(t, repo.calls)
}

func TestNotificationServiceCachesCounter(t *testing.T) {
	repo := &mockUnviewedCounter{counts: map[string]int{"client-1": 3}}
	svc := NewNotificationService(repo, NewCacheService(newMemoryCacheRepo(), nil, time.Minute, zap.NewNop(), true), time.Minute, zap.NewNop())
	claims := &models.JWTClaims{UserID: "client-1", Role: models.RoleClient}

	count, err := svc.UnviewedCount(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, 3, count.Unviewed)
	assert.Equal(t, 1, repo.calls)

	repo.counts["client-1"] = 5
	count, err = svc.UnviewedCount(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, 3, count.Unviewed, "second read must come from cache")
	assert.Equal(t, 1, repo.calls)

	svc.InvalidateCounter(context.Background(), "client-1")
	count, err = svc.UnviewedCount(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, 5, count.Unviewed)
	assert.Equal(t, 2, repo.calls)
}

func TestNotificationServiceReconcileDropsAllCounters(t *testing.T) {
	repo := &mockUnviewedCounter{counts: map[string]int{"client-1": 1, "client-2": 2}}
	cacheRepo := newMemoryCacheRepo()
	svc := NewNotificationService(repo, NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true), time.Minute, zap.NewNop())

	_, err := svc.UnviewedCount(context.Background(), &models.JWTClaims{UserID: "client-1"})
	require.NoError(t, err)
	_, err = svc.UnviewedCount(context.Background(), &models.JWTClaims{UserID: "client-2"})
	require.NoError(t, err)
	assert.Len(t, cacheRepo.entries, 2)

	require.NoError(t, svc.Reconcile(context.Background()))
	assert.Empty(t, cacheRepo.entries)
}
