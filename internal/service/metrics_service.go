// internal/service/metrics_service.go
package service

import (
	"context"
	"errors"

	"github.com/andresuchdata/retail-ars/internal/cache"
	"github.com/andresuchdata/retail-ars/internal/domain"
	"github.com/andresuchdata/retail-ars/internal/repository"
	"github.com/andresuchdata/retail-ars/pkg/logger"
)

// MetricsService fronts the read model with a cache-aside layer. Cache
// failures are logged and degrade to direct repository reads.
type MetricsService struct {
	repo  repository.MetricsRepository
	cache cache.MetricsCache
}

func NewMetricsService(repo repository.MetricsRepository, c cache.MetricsCache) *MetricsService {
	if c == nil {
		c = cache.NewNoopMetricsCache()
	}
	return &MetricsService{repo: repo, cache: c}
}

func (s *MetricsService) SummaryBySegment(ctx context.Context, channel string) ([]domain.SegmentSummary, error) {
	if cached, err := s.cache.GetSummary(ctx, channel); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Log.Warn().Err(err).Msg("summary cache read failed")
	}

	out, err := s.repo.SummaryBySegment(ctx, channel)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetSummary(ctx, channel, out); err != nil {
		logger.Log.Warn().Err(err).Msg("summary cache write failed")
	}
	return out, nil
}

func (s *MetricsService) Items(ctx context.Context, filter domain.MetricFilter) ([]domain.StoreSkuMetric, int, error) {
	if items, total, err := s.cache.GetItems(ctx, filter); err == nil {
		return items, total, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Log.Warn().Err(err).Msg("items cache read failed")
	}

	items, total, err := s.repo.Items(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if err := s.cache.SetItems(ctx, filter, items, total); err != nil {
		logger.Log.Warn().Err(err).Msg("items cache write failed")
	}
	return items, total, nil
}

func (s *MetricsService) Channels(ctx context.Context) ([]string, error) {
	return s.repo.Channels(ctx)
}

// Invalidate drops cached responses, called after a batch run replaces
// channel rows.
func (s *MetricsService) Invalidate(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		logger.Log.Warn().Err(err).Msg("cache invalidation failed")
	}
}
