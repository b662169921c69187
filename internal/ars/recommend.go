// internal/ars/recommend.go
package ars

import (
	"fmt"
	"math"
	"sort"

	"github.com/andresuchdata/retail-ars/internal/domain"
)

// Recommend derives replenishment and redistribution actions from segmented
// metrics. A pair with weeks_coverage exactly at the lead time triggers
// neither rule; both comparisons are strict.
func Recommend(metrics []domain.StoreSkuMetric) []domain.Recommendation {
	var out []domain.Recommendation
	for i := range metrics {
		m := &metrics[i]

		if m.SalesVelocity > 0 && m.WeeksUntilStockout < LeadTimeWeeks {
			priority := domain.PriorityMediumLo
			if m.Segment == domain.SegmentHighValue || m.Segment == domain.SegmentRegular {
				priority = domain.PriorityCritical
			}
			reorder := math.Max(m.RefillLevel-m.CurrentStock, 0)
			out = append(out, recommendation(m, domain.CategoryStockAlert, priority, reorder,
				fmt.Sprintf("SKU %s (%s) will stockout in %.1f weeks. Order %.0f units. Potential weekly revenue loss: INR %.2f",
					m.SKUID, m.SKUName, m.WeeksUntilStockout, reorder, m.PotentialRevLoss)))
			continue
		}

		if m.WeeksCoverage > overstockThreshold {
			priority := domain.PriorityLow
			if m.Segment == domain.SegmentHighValue || m.Segment == domain.SegmentRegular {
				priority = domain.PriorityMedium
			}
			excess := m.CurrentStock - m.RefillLevel
			out = append(out, recommendation(m, domain.CategoryOptimization, priority, excess,
				fmt.Sprintf("Excess inventory of SKU %s. Consider redistributing %.0f units. Current coverage: %.1f weeks",
					m.SKUID, excess, m.WeeksCoverage)))
		}
	}
	return out
}

func recommendation(m *domain.StoreSkuMetric, category, priority string, qty float64, action string) domain.Recommendation {
	return domain.Recommendation{
		StoreID:           m.StoreID,
		StoreName:         m.StoreName,
		SKUID:             m.SKUID,
		BrandLine:         m.BrandLine,
		SKUName:           m.SKUName,
		MDQ:               m.MDQ,
		AvgSaleUnitWeekly: m.AvgWeeklySales,
		AvgMRPSalesWeekly: m.AvgWeeklyRevenue,
		CurrentStock:      m.CurrentStock,
		StoreType:         m.StoreType,
		Priority:          priority,
		Category:          category,
		InventoryWeeks:    m.WeeksCoverage,
		RefillLevel:       m.RefillLevel,
		ReorderQty:        qty,
		PotentialRevLoss:  m.PotentialRevLoss,
		Action:            action,
	}
}

// CriticalInsights extracts the stockout alerts sorted by segment then
// descending revenue loss, for the run-end log summary.
func CriticalInsights(metrics []domain.StoreSkuMetric, recs []domain.Recommendation) []domain.Recommendation {
	segments := make(map[[2]string]string, len(metrics))
	for i := range metrics {
		segments[[2]string{metrics[i].StoreID, metrics[i].SKUID}] = metrics[i].Segment
	}

	var critical []domain.Recommendation
	for _, r := range recs {
		if r.Category == domain.CategoryStockAlert {
			critical = append(critical, r)
		}
	}
	sort.SliceStable(critical, func(i, j int) bool {
		si := segments[[2]string{critical[i].StoreID, critical[i].SKUID}]
		sj := segments[[2]string{critical[j].StoreID, critical[j].SKUID}]
		if si != sj {
			return si < sj
		}
		return critical[i].PotentialRevLoss > critical[j].PotentialRevLoss
	})
	return critical
}
