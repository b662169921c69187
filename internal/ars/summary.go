// internal/ars/summary.go
package ars

import (
	"github.com/andresuchdata/retail-ars/internal/domain"
)

// Summarize rolls metrics up into the run-level summary. Inventory value is
// estimated per pair as current_stock times the average selling price
// (avg_weekly_revenue / avg_weekly_sales); pairs with no sales contribute
// nothing because no price can be inferred for them.
func Summarize(metrics []domain.StoreSkuMetric) domain.AnalysisSummary {
	skus := map[string]bool{}
	stores := map[string]bool{}
	var value float64
	for i := range metrics {
		m := &metrics[i]
		skus[m.SKUID] = true
		stores[m.StoreID] = true
		if price := m.AvgUnitPrice(); price > 0 {
			value += m.CurrentStock * price
		}
	}
	return domain.AnalysisSummary{
		TotalSKUs:                 len(skus),
		TotalStores:               len(stores),
		TotalStoreSkuCombinations: len(metrics),
		TotalInventoryValue:       value,
	}
}
