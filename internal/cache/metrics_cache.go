// internal/cache/metrics_cache.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/retail-ars/internal/domain"
)

// ErrCacheMiss is returned when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

// MetricsCache caches API read-model responses. Implementations must be
// safe for concurrent use.
type MetricsCache interface {
	GetSummary(ctx context.Context, channel string) ([]domain.SegmentSummary, error)
	SetSummary(ctx context.Context, channel string, v []domain.SegmentSummary) error
	GetItems(ctx context.Context, filter domain.MetricFilter) ([]domain.StoreSkuMetric, int, error)
	SetItems(ctx context.Context, filter domain.MetricFilter, items []domain.StoreSkuMetric, total int) error
	InvalidateAll(ctx context.Context) error
}

const keyPrefix = "retail_ars:"

type redisMetricsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisMetricsCache wraps a redis client with the metrics key scheme.
func NewRedisMetricsCache(client *redis.Client, ttl time.Duration) MetricsCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &redisMetricsCache{client: client, ttl: ttl}
}

func (c *redisMetricsCache) getJSON(ctx context.Context, key string, dst interface{}) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func (c *redisMetricsCache) setJSON(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

func (c *redisMetricsCache) GetSummary(ctx context.Context, channel string) ([]domain.SegmentSummary, error) {
	var out []domain.SegmentSummary
	if err := c.getJSON(ctx, keyPrefix+"summary:"+channel, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *redisMetricsCache) SetSummary(ctx context.Context, channel string, v []domain.SegmentSummary) error {
	return c.setJSON(ctx, keyPrefix+"summary:"+channel, v)
}

type cachedItems struct {
	Items []domain.StoreSkuMetric `json:"items"`
	Total int                     `json:"total"`
}

func (c *redisMetricsCache) GetItems(ctx context.Context, filter domain.MetricFilter) ([]domain.StoreSkuMetric, int, error) {
	var out cachedItems
	if err := c.getJSON(ctx, keyPrefix+"items:"+hashKey(filter), &out); err != nil {
		return nil, 0, err
	}
	return out.Items, out.Total, nil
}

func (c *redisMetricsCache) SetItems(ctx context.Context, filter domain.MetricFilter, items []domain.StoreSkuMetric, total int) error {
	return c.setJSON(ctx, keyPrefix+"items:"+hashKey(filter), cachedItems{Items: items, Total: total})
}

func (c *redisMetricsCache) InvalidateAll(ctx context.Context) error {
	return deleteByPattern(ctx, c.client, keyPrefix+"*")
}

// noopMetricsCache is used when caching is disabled or redis is unreachable;
// every read is a miss and writes are dropped.
type noopMetricsCache struct{}

// NewNoopMetricsCache returns the disabled cache.
func NewNoopMetricsCache() MetricsCache { return noopMetricsCache{} }

func (noopMetricsCache) GetSummary(context.Context, string) ([]domain.SegmentSummary, error) {
	return nil, ErrCacheMiss
}
func (noopMetricsCache) SetSummary(context.Context, string, []domain.SegmentSummary) error {
	return nil
}
func (noopMetricsCache) GetItems(context.Context, domain.MetricFilter) ([]domain.StoreSkuMetric, int, error) {
	return nil, 0, ErrCacheMiss
}
func (noopMetricsCache) SetItems(context.Context, domain.MetricFilter, []domain.StoreSkuMetric, int) error {
	return nil
}
func (noopMetricsCache) InvalidateAll(context.Context) error { return nil }
