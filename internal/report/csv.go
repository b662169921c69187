// internal/report/csv.go
package report

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/andresuchdata/retail-ars/internal/domain"
)

func writeCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}

func ffloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func fweeks(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// WriteConsolidated writes the canonical extraction output (inventory or
// sales) after reconciliation and bundle expansion.
func WriteConsolidated(path string, records []domain.ChannelRecord) error {
	header := []string{"channel", "channel_sku", "sku_name", "quantity", "value", "location", "date", "status", "master_sku", "sku_mapped"}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Channel, r.ChannelSKU, r.SKUName,
			ffloat(r.Quantity), ffloat(r.Value),
			r.Location, r.Date, r.Status,
			r.MasterSKU, strconv.FormatBool(r.SKUMapped),
		})
	}
	return writeCSV(path, header, rows)
}

var metricHeader = []string{
	"store_id", "store_name", "store_type", "channel", "sku_id", "sku_name",
	"brand_line", "mrp", "mdq", "total_sales", "total_sales_value",
	"weeks_of_data", "total_weeks", "avg_weekly_sales", "avg_weekly_revenue",
	"sales_std", "sale_frequency_in_weeks", "sales_velocity",
	"avg_sales_90day", "avg_sales_30day", "current_stock", "weeks_coverage",
	"revenue_rank", "sku_segment", "performance_bucket", "safety_stock",
	"refill_level", "weeks_until_stockout", "potential_revenue_loss",
}

func metricRow(m *domain.StoreSkuMetric) []string {
	return []string{
		m.StoreID, m.StoreName, m.StoreType, m.Channel, m.SKUID, m.SKUName,
		m.BrandLine, ffloat(m.MRP), ffloat(m.MDQ),
		ffloat(m.TotalSales), ffloat(m.TotalSalesValue),
		strconv.Itoa(m.WeeksOfData), strconv.Itoa(m.TotalWeeks),
		ffloat(m.AvgWeeklySales), ffloat(m.AvgWeeklyRevenue),
		ffloat(m.SalesStd), ffloat(m.SaleFrequency), ffloat(m.SalesVelocity),
		ffloat(m.AvgSales90Day), ffloat(m.AvgSales30Day),
		ffloat(m.CurrentStock), ffloat(m.WeeksCoverage),
		strconv.Itoa(m.RevenueRank), m.Segment, m.PerformanceBucket,
		ffloat(m.SafetyStock), ffloat(m.RefillLevel),
		fweeks(m.WeeksUntilStockout), ffloat(m.PotentialRevLoss),
	}
}

// WriteStoreMetrics writes the full per-pair metric table.
func WriteStoreMetrics(path string, metrics []domain.StoreSkuMetric) error {
	rows := make([][]string, 0, len(metrics))
	for i := range metrics {
		rows = append(rows, metricRow(&metrics[i]))
	}
	return writeCSV(path, metricHeader, rows)
}

// WriteRecommendations writes the replenishment/redistribution actions.
func WriteRecommendations(path string, recs []domain.Recommendation) error {
	header := []string{
		"store_id", "store_name", "sku_id", "brand_line", "sku_name", "mdq",
		"avg_sale_unit_weekly", "avg_mrp_sales_weekly", "current_stock",
		"store_type", "priority", "category", "inventory_weeks",
		"refill_level", "reorder_qty", "potential_revenue_loss", "action",
	}
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []string{
			r.StoreID, r.StoreName, r.SKUID, r.BrandLine, r.SKUName,
			ffloat(r.MDQ), ffloat(r.AvgSaleUnitWeekly), ffloat(r.AvgMRPSalesWeekly),
			ffloat(r.CurrentStock), r.StoreType, r.Priority, r.Category,
			ffloat(r.InventoryWeeks), ffloat(r.RefillLevel), ffloat(r.ReorderQty),
			ffloat(r.PotentialRevLoss), r.Action,
		})
	}
	return writeCSV(path, header, rows)
}

var noSaleHeader = []string{
	"store_id", "store_name", "channel", "sku_id", "sku_name",
	"brand_line", "mrp", "mdq", "current_stock",
}

func noSaleRow(n *domain.NoSaleItem) []string {
	return []string{
		n.StoreID, n.StoreName, n.Channel, n.SKUID, n.SKUName,
		n.BrandLine, ffloat(n.MRP), ffloat(n.MDQ), ffloat(n.CurrentStock),
	}
}

// WriteNoSales writes the stock-without-sales side report.
func WriteNoSales(path string, items []domain.NoSaleItem) error {
	rows := make([][]string, 0, len(items))
	for i := range items {
		rows = append(rows, noSaleRow(&items[i]))
	}
	return writeCSV(path, noSaleHeader, rows)
}
