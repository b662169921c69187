// internal/ars/aggregate.go
package ars

import (
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/retail-ars/internal/domain"
	"github.com/andresuchdata/retail-ars/pkg/logger"
)

// Divisors converting trailing-window day sums into weekly rates. These are
// calibration constants carried from the production report and must not be
// "corrected" to 90/7 or 30/7.
const (
	weeks90Day = 12.85
	weeks30Day = 4.2857
)

// pairKey identifies a (store, sku) combination.
type pairKey struct {
	StoreID string
	SKUID   string
}

// Aggregate folds cleaned sales and stock rows into one StoreSkuMetric per
// (store, sku) pair present in either input, plus the stock-only pairs that
// never sold inside the window.
//
// total_weeks counts distinct ISO week numbers across the whole sales
// dataset. The count is global on purpose: a SKU selling in only a few of
// the observed weeks gets a proportionally lower weekly average and
// frequency than one selling every week.
func Aggregate(sales []domain.SalesRecord, stock []domain.StockRecord) ([]domain.StoreSkuMetric, []domain.NoSaleItem) {
	globalWeeks := map[int]bool{}
	var maxDate time.Time
	for _, s := range sales {
		_, wk := s.Date.ISOWeek()
		globalWeeks[wk] = true
		if s.Date.After(maxDate) {
			maxDate = s.Date
		}
	}
	totalWeeks := len(globalWeeks)
	if totalWeeks == 0 {
		logger.Log.Warn().Msg("no sales rows to aggregate")
	}

	type acc struct {
		units      []float64
		totalUnits float64
		totalValue float64
		weeks      map[int]bool
		units90    float64
		value90    float64
		value30    float64
	}
	accs := make(map[pairKey]*acc)
	cut90 := maxDate.AddDate(0, 0, -90)
	cut30 := maxDate.AddDate(0, 0, -30)

	for _, s := range sales {
		k := pairKey{s.StoreID, s.SKUID}
		a, ok := accs[k]
		if !ok {
			a = &acc{weeks: map[int]bool{}}
			accs[k] = a
		}
		a.units = append(a.units, s.SalesUnits)
		a.totalUnits += s.SalesUnits
		a.totalValue += s.SalesValue
		_, wk := s.Date.ISOWeek()
		a.weeks[wk] = true
		if !s.Date.Before(cut90) {
			a.units90 += s.SalesUnits
			a.value90 += s.SalesValue
		}
		if !s.Date.Before(cut30) {
			a.value30 += s.SalesValue
		}
	}

	stockByPair := make(map[pairKey]float64, len(stock))
	for _, st := range stock {
		stockByPair[pairKey{st.StoreID, st.SKUID}] += st.CurrentStock
	}

	metrics := make([]domain.StoreSkuMetric, 0, len(accs))
	for k, a := range accs {
		m := domain.StoreSkuMetric{
			StoreID:         k.StoreID,
			SKUID:           k.SKUID,
			TotalSales:      a.totalUnits,
			TotalSalesValue: a.totalValue,
			WeeksOfData:     len(a.weeks),
			TotalWeeks:      totalWeeks,
			CurrentStock:    stockByPair[k],
		}
		if totalWeeks > 0 {
			m.AvgWeeklySales = a.totalUnits / float64(totalWeeks)
			m.AvgWeeklyRevenue = a.totalValue / float64(totalWeeks)
			m.SaleFrequency = clamp01(float64(len(a.weeks)) / float64(totalWeeks))
		}
		m.SalesStd = sampleStd(a.units)
		m.SalesVelocity = a.units90 / weeks90Day
		m.AvgSales90Day = a.value90 / weeks90Day
		m.AvgSales30Day = a.value30 / weeks30Day
		if m.AvgWeeklySales > 0 {
			m.WeeksCoverage = m.CurrentStock / m.AvgWeeklySales
		}
		metrics = append(metrics, m)
	}

	var noSales []domain.NoSaleItem
	for k, qty := range stockByPair {
		if _, sold := accs[k]; sold {
			continue
		}
		noSales = append(noSales, domain.NoSaleItem{
			StoreID:      k.StoreID,
			SKUID:        k.SKUID,
			CurrentStock: qty,
		})
	}

	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].StoreID != metrics[j].StoreID {
			return metrics[i].StoreID < metrics[j].StoreID
		}
		return metrics[i].SKUID < metrics[j].SKUID
	})
	sort.Slice(noSales, func(i, j int) bool {
		if noSales[i].StoreID != noSales[j].StoreID {
			return noSales[i].StoreID < noSales[j].StoreID
		}
		return noSales[i].SKUID < noSales[j].SKUID
	})
	return metrics, noSales
}

// sampleStd is the sample (n-1) standard deviation. A single observation has
// no spread information and yields 0 rather than NaN.
func sampleStd(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(n)
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
