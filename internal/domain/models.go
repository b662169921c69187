// internal/domain/models.go
package domain

import (
	"math"
	"time"
)

// Segment labels assigned per store/SKU pair.
const (
	SegmentHighValue  = "A - High Value"
	SegmentRegular    = "B - Regular"
	SegmentModerate   = "C - Moderate"
	SegmentSlowMoving = "D - Slow Moving"
)

// Store performance buckets derived from store-level weekly revenue.
const (
	BucketStar    = "Star_Store"
	BucketAverage = "Average_Store"
	BucketLaggard = "Laggard_Store"
)

// Recommendation priorities.
const (
	PriorityCritical = "CRITICAL"
	PriorityMedium   = "MEDIUM"
	PriorityMediumLo = "Medium"
	PriorityLow      = "Low"
)

// Recommendation categories.
const (
	CategoryStockAlert   = "Stock Alert"
	CategoryOptimization = "Inventory Optimization"
)

// ChannelRecord is one canonical row extracted from a channel source file,
// after column mapping, SKU reconciliation and bundle expansion. Inventory
// and sales extraction share this shape; fields a channel does not supply
// stay zero.
type ChannelRecord struct {
	Channel    string  `json:"channel"`
	ChannelSKU string  `json:"channel_sku"`
	SKUName    string  `json:"sku_name"`
	Quantity   float64 `json:"quantity"`
	Value      float64 `json:"value"`
	Location   string  `json:"location"`
	Date       string  `json:"date"`
	Status     string  `json:"status"`
	MasterSKU  string  `json:"master_sku"`
	SKUMapped  bool    `json:"sku_mapped"`
}

// SalesRecord is a cleaned sales line ready for aggregation.
type SalesRecord struct {
	StoreID    string
	SKUID      string
	Date       time.Time
	SalesUnits float64
	SalesValue float64
}

// StockRecord is current stock for a store/SKU pair, pre-aggregated.
type StockRecord struct {
	StoreID      string
	SKUID        string
	CurrentStock float64
}

// SKUMapping is one row of the channel-to-master SKU mapping workbook.
type SKUMapping struct {
	ChannelSKU string
	MasterSKU  string
	SKUName    string
}

// BundleComponent is one child line of a bundle definition.
type BundleComponent struct {
	ChildSKU  string
	ChildName string
	Qty       float64
}

// PlanogramEntry carries the minimum display quantity and store metadata
// produced by joining the store map with the planogram layout.
type PlanogramEntry struct {
	StoreID   string
	SKUID     string
	MDQ       float64
	StoreName string
	Format    string
	Channel   string
}

// SKUMaster enriches metrics with catalog attributes.
type SKUMaster struct {
	SKUID     string
	SKUName   string
	BrandLine string
	MRP       float64
}

// StoreSkuMetric is the full per-(store, sku) analysis row persisted to the
// retail_ars table and written to the store analysis report.
type StoreSkuMetric struct {
	StoreID            string  `db:"store_id" json:"store_id"`
	StoreName          string  `db:"store_name" json:"store_name"`
	StoreType          string  `db:"store_type" json:"store_type"`
	Channel            string  `db:"channel" json:"channel"`
	SKUID              string  `db:"sku_id" json:"sku_id"`
	SKUName            string  `db:"sku_name" json:"sku_name"`
	BrandLine          string  `db:"brand_line" json:"brand_line"`
	MRP                float64 `db:"mrp" json:"mrp"`
	MDQ                float64 `db:"mdq" json:"mdq"`
	TotalSales         float64 `db:"total_sales" json:"total_sales"`
	TotalSalesValue    float64 `db:"total_sales_value" json:"total_sales_value"`
	WeeksOfData        int     `db:"weeks_of_data" json:"weeks_of_data"`
	TotalWeeks         int     `db:"total_weeks" json:"total_weeks"`
	AvgWeeklySales     float64 `db:"avg_weekly_sales" json:"avg_weekly_sales"`
	AvgWeeklyRevenue   float64 `db:"avg_weekly_revenue" json:"avg_weekly_revenue"`
	SalesStd           float64 `db:"sales_std" json:"sales_std"`
	SaleFrequency      float64 `db:"sale_frequency_in_weeks" json:"sale_frequency_in_weeks"`
	SalesVelocity      float64 `db:"sales_velocity" json:"sales_velocity"`
	AvgSales90Day      float64 `db:"avg_sales_90day" json:"avg_sales_90day"`
	AvgSales30Day      float64 `db:"avg_sales_30day" json:"avg_sales_30day"`
	CurrentStock       float64 `db:"current_stock" json:"current_stock"`
	WeeksCoverage      float64 `db:"weeks_coverage" json:"weeks_coverage"`
	RevenueRank        int     `db:"revenue_rank" json:"revenue_rank"`
	Segment            string  `db:"sku_segment" json:"sku_segment"`
	PerformanceBucket  string  `db:"performance_bucket" json:"performance_bucket"`
	SafetyStock        float64 `db:"safety_stock" json:"safety_stock"`
	RefillLevel        float64 `db:"refill_level" json:"refill_level"`
	WeeksUntilStockout float64 `db:"weeks_until_stockout" json:"weeks_until_stockout"`
	PotentialRevLoss   float64 `db:"potential_revenue_loss" json:"potential_revenue_loss"`
}

// AvgUnitPrice estimates a selling price per unit from the weekly averages.
// Returns 0 when there are no sales.
func (m *StoreSkuMetric) AvgUnitPrice() float64 {
	if m.AvgWeeklySales == 0 {
		return 0
	}
	return m.AvgWeeklyRevenue / m.AvgWeeklySales
}

// StockoutImminent reports whether the pair qualifies for a stockout alert.
func (m *StoreSkuMetric) StockoutImminent(leadTimeWeeks float64) bool {
	return m.SalesVelocity > 0 && m.WeeksUntilStockout < leadTimeWeeks
}

// Overstocked reports whether the pair holds excess coverage.
func (m *StoreSkuMetric) Overstocked(thresholdWeeks float64) bool {
	return m.WeeksCoverage > thresholdWeeks
}

// HasStockoutRisk is a convenience for +Inf-aware display.
func (m *StoreSkuMetric) HasStockoutRisk() bool {
	return !math.IsInf(m.WeeksUntilStockout, 1)
}

// NoSaleItem is a stock-only pair that never sold inside the window.
type NoSaleItem struct {
	StoreID      string  `json:"store_id"`
	StoreName    string  `json:"store_name"`
	Channel      string  `json:"channel"`
	SKUID        string  `json:"sku_id"`
	SKUName      string  `json:"sku_name"`
	BrandLine    string  `json:"brand_line"`
	MRP          float64 `json:"mrp"`
	MDQ          float64 `json:"mdq"`
	CurrentStock float64 `json:"current_stock"`
}

// Recommendation is one actionable replenishment or redistribution line.
type Recommendation struct {
	StoreID            string  `json:"store_id"`
	StoreName          string  `json:"store_name"`
	SKUID              string  `json:"sku_id"`
	BrandLine          string  `json:"brand_line"`
	SKUName            string  `json:"sku_name"`
	MDQ                float64 `json:"mdq"`
	AvgSaleUnitWeekly  float64 `json:"avg_sale_unit_weekly"`
	AvgMRPSalesWeekly  float64 `json:"avg_mrp_sales_weekly"`
	CurrentStock       float64 `json:"current_stock"`
	StoreType          string  `json:"store_type"`
	Priority           string  `json:"priority"`
	Category           string  `json:"category"`
	InventoryWeeks     float64 `json:"inventory_weeks"`
	RefillLevel        float64 `json:"refill_level"`
	ReorderQty         float64 `json:"reorder_qty"`
	PotentialRevLoss   float64 `json:"potential_revenue_loss"`
	Action             string  `json:"action"`
}

// AnalysisSummary is the run-level roll-up written to analysis_summary.txt.
type AnalysisSummary struct {
	TotalSKUs                 int     `json:"total_skus"`
	TotalStores               int     `json:"total_stores"`
	TotalStoreSkuCombinations int     `json:"total_store_sku_combinations"`
	TotalInventoryValue       float64 `json:"total_inventory_value"`
}

// MetricFilter narrows API queries over persisted metrics.
type MetricFilter struct {
	Channel string `form:"channel"`
	StoreID string `form:"store_id"`
	SKUID   string `form:"sku_id"`
	Segment string `form:"segment"`
	Limit   int    `form:"limit"`
	Offset  int    `form:"offset"`
}

// SegmentSummary is one aggregate line of the API summary endpoint.
type SegmentSummary struct {
	Segment          string  `db:"sku_segment" json:"segment"`
	Pairs            int     `db:"pairs" json:"pairs"`
	TotalStock       float64 `db:"total_stock" json:"total_stock"`
	AvgWeeksCoverage float64 `db:"avg_weeks_coverage" json:"avg_weeks_coverage"`
	RevenueAtRisk    float64 `db:"revenue_at_risk" json:"revenue_at_risk"`
}
