// internal/repository/postgres/retail_ars_repository.go
package postgres

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/retail-ars/internal/domain"
	"github.com/andresuchdata/retail-ars/internal/ingest"
	"github.com/andresuchdata/retail-ars/pkg/logger"
)

// RetailARSRepository owns the write path to the retail_ars table and the
// DB-sourced input fetches for the analyze --source db mode.
type RetailARSRepository struct {
	db *DB
}

func NewRetailARSRepository(db *DB) *RetailARSRepository {
	return &RetailARSRepository{db: db}
}

const insertChunkSize = 500

// ReplaceChannelMetrics atomically swaps a channel's rows in retail_ars:
// delete everything for the channel, then bulk insert the new metrics in
// chunks, all inside one transaction. Re-running an analysis is therefore
// idempotent per channel.
func (r *RetailARSRepository) ReplaceChannelMetrics(ctx context.Context, channel string, metrics []domain.StoreSkuMetric) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM retail_ars WHERE channel = $1`, channel); err != nil {
			return fmt.Errorf("delete channel %s: %w", channel, err)
		}

		const stmt = `
			INSERT INTO retail_ars (
				store_id, store_name, store_type, channel, sku_id, sku_name,
				brand_line, mrp, mdq, total_sales, total_sales_value,
				weeks_of_data, total_weeks, avg_weekly_sales, avg_weekly_revenue,
				sales_std, sale_frequency_in_weeks, sales_velocity,
				avg_sales_90day, avg_sales_30day, current_stock, weeks_coverage,
				revenue_rank, sku_segment, performance_bucket, safety_stock,
				refill_level, weeks_until_stockout, potential_revenue_loss
			) VALUES (
				:store_id, :store_name, :store_type, :channel, :sku_id, :sku_name,
				:brand_line, :mrp, :mdq, :total_sales, :total_sales_value,
				:weeks_of_data, :total_weeks, :avg_weekly_sales, :avg_weekly_revenue,
				:sales_std, :sale_frequency_in_weeks, :sales_velocity,
				:avg_sales_90day, :avg_sales_30day, :current_stock, :weeks_coverage,
				:revenue_rank, :sku_segment, :performance_bucket, :safety_stock,
				:refill_level, :weeks_until_stockout, :potential_revenue_loss
			)`

		for start := 0; start < len(metrics); start += insertChunkSize {
			end := start + insertChunkSize
			if end > len(metrics) {
				end = len(metrics)
			}
			chunk := make([]domain.StoreSkuMetric, end-start)
			copy(chunk, metrics[start:end])
			for i := range chunk {
				chunk[i].Channel = channel
				// Postgres float columns reject +Inf; store a large sentinel.
				if math.IsInf(chunk[i].WeeksUntilStockout, 1) {
					chunk[i].WeeksUntilStockout = 9999
				}
			}
			if _, err := tx.NamedExecContext(ctx, stmt, chunk); err != nil {
				return fmt.Errorf("insert metrics chunk [%d:%d]: %w", start, end, err)
			}
		}
		log := logger.WithChannel(channel)
		log.Info().Int("rows", len(metrics)).Msg("retail_ars rows replaced")
		return nil
	})
}

type dbSalesRow struct {
	StoreID    string  `db:"store_id"`
	SKUID      string  `db:"sku_id"`
	SaleDate   string  `db:"sale_date"`
	SalesUnits float64 `db:"sales_units"`
	SalesValue float64 `db:"sales_value"`
}

// FetchChannelSales loads a channel's sales rows from the channel_sales
// table, limited to the trailing window. Dates are stored as text in the
// upstream loads and are parsed day-first; unparseable dates drop the row.
func (r *RetailARSRepository) FetchChannelSales(ctx context.Context, channel string, windowDays int) ([]domain.SalesRecord, error) {
	var rows []dbSalesRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT store_id, sku_id, sale_date, sales_units, sales_value
		FROM channel_sales
		WHERE channel = $1`, channel)
	if err != nil {
		return nil, fmt.Errorf("fetch sales for %s: %w", channel, err)
	}

	cutoff := time.Now().AddDate(0, 0, -windowDays)
	out := make([]domain.SalesRecord, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		d, err := ingest.ParseDate(row.SaleDate)
		if err != nil {
			dropped++
			continue
		}
		if d.Before(cutoff) {
			continue
		}
		out = append(out, domain.SalesRecord{
			StoreID:    row.StoreID,
			SKUID:      row.SKUID,
			Date:       d,
			SalesUnits: row.SalesUnits,
			SalesValue: row.SalesValue,
		})
	}
	if dropped > 0 {
		log := logger.WithChannel(channel)
		log.Warn().Int("dropped", dropped).Msg("sales rows with unparseable dates skipped")
	}
	return out, nil
}

// FetchChannelStock loads a channel's current inventory pre-aggregated to
// (store, sku).
func (r *RetailARSRepository) FetchChannelStock(ctx context.Context, channel string) ([]domain.StockRecord, error) {
	var out []domain.StockRecord
	type row struct {
		StoreID      string  `db:"store_id"`
		SKUID        string  `db:"sku_id"`
		CurrentStock float64 `db:"current_stock"`
	}
	var rows []row
	err := r.db.SelectContext(ctx, &rows, `
		SELECT store_id, sku_id, SUM(quantity) AS current_stock
		FROM channel_inventory
		WHERE channel = $1
		GROUP BY store_id, sku_id`, channel)
	if err != nil {
		return nil, fmt.Errorf("fetch stock for %s: %w", channel, err)
	}
	for _, row := range rows {
		out = append(out, domain.StockRecord{StoreID: row.StoreID, SKUID: row.SKUID, CurrentStock: row.CurrentStock})
	}
	return out, nil
}
