// internal/repository/metrics_repository.go
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/retail-ars/internal/domain"
)

// MetricsRepository is the read model over the persisted retail_ars table,
// serving the analytics API.
type MetricsRepository interface {
	SummaryBySegment(ctx context.Context, channel string) ([]domain.SegmentSummary, error)
	Items(ctx context.Context, filter domain.MetricFilter) ([]domain.StoreSkuMetric, int, error)
	Channels(ctx context.Context) ([]string, error)
}

type metricsRepository struct {
	db *sqlx.DB
}

// NewMetricsRepository wraps a sqlx pool.
func NewMetricsRepository(db *sqlx.DB) MetricsRepository {
	return &metricsRepository{db: db}
}

func (r *metricsRepository) SummaryBySegment(ctx context.Context, channel string) ([]domain.SegmentSummary, error) {
	query := `
		SELECT sku_segment,
		       COUNT(*) AS pairs,
		       COALESCE(SUM(current_stock), 0) AS total_stock,
		       COALESCE(AVG(weeks_coverage), 0) AS avg_weeks_coverage,
		       COALESCE(SUM(potential_revenue_loss), 0) AS revenue_at_risk
		FROM retail_ars`
	args := []interface{}{}
	if channel != "" {
		query += ` WHERE channel = $1`
		args = append(args, channel)
	}
	query += ` GROUP BY sku_segment ORDER BY sku_segment`

	var out []domain.SegmentSummary
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("segment summary: %w", err)
	}
	return out, nil
}

func (r *metricsRepository) Items(ctx context.Context, filter domain.MetricFilter) ([]domain.StoreSkuMetric, int, error) {
	var conds []string
	var args []interface{}
	add := func(cond string, v interface{}) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Channel != "" {
		add("channel = $%d", filter.Channel)
	}
	if filter.StoreID != "" {
		add("store_id = $%d", filter.StoreID)
	}
	if filter.SKUID != "" {
		add("sku_id = $%d", filter.SKUID)
	}
	if filter.Segment != "" {
		add("sku_segment = $%d", filter.Segment)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM retail_ars`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count metrics: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT * FROM retail_ars%s
		ORDER BY potential_revenue_loss DESC, store_id, sku_id
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	var items []domain.StoreSkuMetric
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list metrics: %w", err)
	}
	return items, total, nil
}

func (r *metricsRepository) Channels(ctx context.Context) ([]string, error) {
	var out []string
	if err := r.db.SelectContext(ctx, &out, `SELECT DISTINCT channel FROM retail_ars ORDER BY channel`); err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	return out, nil
}
