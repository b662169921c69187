// internal/ars/segment.go
package ars

import (
	"math"
	"sort"

	"github.com/andresuchdata/retail-ars/internal/domain"
)

// Service-level Z scores per segment.
var segmentZ = map[string]float64{
	domain.SegmentHighValue:  2.326,
	domain.SegmentRegular:    1.96,
	domain.SegmentModerate:   1.645,
	domain.SegmentSlowMoving: 1.28,
}

// Replenishment planning constants.
const (
	LeadTimeWeeks      = 3.0
	refillTargetWeeks  = 8.0
	overstockThreshold = 4.0
	topRankCutoff      = 10
)

// Segment assigns, in place, revenue ranks, segments, store performance
// buckets, safety stock, refill levels, stockout horizons and revenue-loss
// estimates. Planogram entries contribute the MDQ floor and store metadata.
func Segment(metrics []domain.StoreSkuMetric, planogram map[[2]string]domain.PlanogramEntry, master map[string]domain.SKUMaster) {
	rankWithinStores(metrics)

	storeRevenue := make(map[string]float64)
	for i := range metrics {
		m := &metrics[i]
		switch {
		case m.RevenueRank < topRankCutoff:
			m.Segment = domain.SegmentHighValue
		case m.SaleFrequency > 0.99:
			m.Segment = domain.SegmentRegular
		case m.SaleFrequency > 0.70:
			m.Segment = domain.SegmentModerate
		default:
			m.Segment = domain.SegmentSlowMoving
		}
		storeRevenue[m.StoreID] += m.AvgWeeklyRevenue
	}

	buckets := bucketStores(storeRevenue)

	for i := range metrics {
		m := &metrics[i]
		m.PerformanceBucket = buckets[m.StoreID]

		if p, ok := planogram[[2]string{m.StoreID, m.SKUID}]; ok {
			m.MDQ = p.MDQ
			m.StoreName = p.StoreName
			m.StoreType = p.Format
			if m.Channel == "" {
				m.Channel = p.Channel
			}
		}
		if sm, ok := master[m.SKUID]; ok {
			m.BrandLine = sm.BrandLine
			m.MRP = sm.MRP
			if m.SKUName == "" {
				m.SKUName = sm.SKUName
			}
		}

		m.SafetyStock = segmentZ[m.Segment] * m.SalesStd * math.Sqrt(LeadTimeWeeks)
		m.RefillLevel = math.Max(m.AvgWeeklySales*refillTargetWeeks+m.SafetyStock, m.MDQ)

		if m.SalesVelocity > 0 {
			m.WeeksUntilStockout = m.CurrentStock / m.SalesVelocity
		} else {
			m.WeeksUntilStockout = math.Inf(1)
		}

		if m.WeeksCoverage < LeadTimeWeeks {
			m.PotentialRevLoss = m.AvgWeeklyRevenue * (LeadTimeWeeks - m.WeeksCoverage)
		} else {
			m.PotentialRevLoss = 0
		}
	}
}

// rankWithinStores computes a dense rank of avg_weekly_revenue descending
// within each store: the highest revenue gets rank 1 and equal revenues
// share a rank.
func rankWithinStores(metrics []domain.StoreSkuMetric) {
	byStore := make(map[string][]int)
	for i := range metrics {
		byStore[metrics[i].StoreID] = append(byStore[metrics[i].StoreID], i)
	}
	for _, idxs := range byStore {
		sort.Slice(idxs, func(a, b int) bool {
			return metrics[idxs[a]].AvgWeeklyRevenue > metrics[idxs[b]].AvgWeeklyRevenue
		})
		rank := 0
		prev := math.Inf(1)
		for _, i := range idxs {
			if metrics[i].AvgWeeklyRevenue < prev {
				rank++
				prev = metrics[i].AvgWeeklyRevenue
			}
			metrics[i].RevenueRank = rank
		}
	}
}

// bucketStores classifies stores by total weekly revenue against the 80th
// and 50th percentiles of the store population.
func bucketStores(storeRevenue map[string]float64) map[string]string {
	revs := make([]float64, 0, len(storeRevenue))
	for _, r := range storeRevenue {
		revs = append(revs, r)
	}
	sort.Float64s(revs)
	p80 := quantile(revs, 0.80)
	p50 := quantile(revs, 0.50)

	out := make(map[string]string, len(storeRevenue))
	for store, r := range storeRevenue {
		switch {
		case r >= p80:
			out[store] = domain.BucketStar
		case r >= p50:
			out[store] = domain.BucketAverage
		default:
			out[store] = domain.BucketLaggard
		}
	}
	return out
}

// quantile is the linear-interpolation quantile over sorted values.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
