package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/mizan-legal/mizan-api/pkg/jobs"
	"github.com/mizan-legal/mizan-api/pkg/mq"
)

type viewedMarker interface {
	MarkViewed(ctx context.Context, id string) error
}

// viewTask is the queued payload for one detail-view side effect.
type viewTask struct {
	RequestID string
	ClientID  string
}

// TrackerService records that a client opened a request's detail view. The
// write happens off the request path: RecordView enqueues and returns, the
// worker pool marks the row viewed and drops the stale caches. A full buffer
// or a failed write never surfaces to the viewer.
type TrackerService struct {
	repo      viewedMarker
	counters  counterInvalidator
	cache     *CacheService
	metrics   *MetricsService
	publisher mq.Publisher
	queue     *jobs.Queue
	logger    *zap.Logger
}

// TrackerConfig sizes the background worker pool.
type TrackerConfig struct {
	Workers    int
	BufferSize int
}

// NewTrackerService constructs the tracker and its backing queue. Call Start
// before recording views and Stop on shutdown.
func NewTrackerService(repo viewedMarker, counters counterInvalidator, cache *CacheService, metrics *MetricsService, publisher mq.Publisher, cfg TrackerConfig, logger *zap.Logger) *TrackerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &TrackerService{
		repo:      repo,
		counters:  counters,
		cache:     cache,
		metrics:   metrics,
		publisher: publisher,
		logger:    logger,
	}
	s.queue = jobs.NewQueue("view-tracker", s.process, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		Logger:     logger,
	})
	return s
}

// Start launches the worker pool.
func (s *TrackerService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the worker pool.
func (s *TrackerService) Stop() {
	s.queue.Stop()
}

// RecordView enqueues the mark-viewed side effect for a request the client
// just opened. It never blocks the caller on the database and never returns
// an error: a tracking failure must not break the detail view.
func (s *TrackerService) RecordView(requestID, clientID string) {
	if requestID == "" || clientID == "" {
		return
	}
	err := s.queue.Enqueue(jobs.Task{
		ID:      requestID,
		Kind:    "request.viewed",
		Payload: viewTask{RequestID: requestID, ClientID: clientID},
	})
	if err != nil {
		s.logger.Warn("failed to enqueue view tracking",
			zap.String("request_id", requestID), zap.Error(err))
	}
}

// process is the worker-side half: persist the viewed flag, then drop the
// caches that embedded the stale value.
func (s *TrackerService) process(ctx context.Context, task jobs.Task) error {
	view, ok := task.Payload.(viewTask)
	if !ok {
		s.logger.Warn("unexpected view task payload", zap.String("task_id", task.ID))
		return nil
	}

	if err := s.repo.MarkViewed(ctx, view.RequestID); err != nil {
		return err
	}

	if s.counters != nil {
		s.counters.InvalidateCounter(ctx, view.ClientID)
	}
	if err := s.cache.Invalidate(ctx, "requests:"+view.ClientID+":*"); err != nil {
		s.logger.Warn("failed to invalidate request cache after view",
			zap.String("client_id", view.ClientID), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.RecordTrackedView()
	}
	if s.publisher != nil {
		event := map[string]string{"request_id": view.RequestID, "client_id": view.ClientID}
		if err := s.publisher.Publish(ctx, "request.viewed", event); err != nil {
			s.logger.Warn("failed to publish view event",
				zap.String("request_id", view.RequestID), zap.Error(err))
		}
	}
	return nil
}
