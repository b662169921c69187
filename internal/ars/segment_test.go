package ars

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/retail-ars/internal/domain"
)

func TestSegmentRules(t *testing.T) {
	// One store with 12 SKUs: revenues 120..10 descending, so ranks 1..12.
	var metrics []domain.StoreSkuMetric
	for i := 0; i < 12; i++ {
		metrics = append(metrics, domain.StoreSkuMetric{
			StoreID:          "S1",
			SKUID:            fmt.Sprintf("SKU%02d", i),
			AvgWeeklyRevenue: float64(120 - i*10),
			SaleFrequency:    0.5,
		})
	}
	// Low-rank SKUs with high and moderate frequency.
	metrics[9].SaleFrequency = 1.0
	metrics[10].SaleFrequency = 0.8

	Segment(metrics, nil, nil)

	for i := 0; i < 9; i++ {
		assert.Equal(t, domain.SegmentHighValue, metrics[i].Segment, "rank %d", i+1)
		assert.Equal(t, i+1, metrics[i].RevenueRank)
	}
	assert.Equal(t, domain.SegmentRegular, metrics[9].Segment)
	assert.Equal(t, domain.SegmentModerate, metrics[10].Segment)
	assert.Equal(t, domain.SegmentSlowMoving, metrics[11].Segment)
}

func TestSegmentDenseRankTies(t *testing.T) {
	metrics := []domain.StoreSkuMetric{
		{StoreID: "S1", SKUID: "A", AvgWeeklyRevenue: 100},
		{StoreID: "S1", SKUID: "B", AvgWeeklyRevenue: 100},
		{StoreID: "S1", SKUID: "C", AvgWeeklyRevenue: 50},
	}
	Segment(metrics, nil, nil)

	assert.Equal(t, 1, metrics[0].RevenueRank)
	assert.Equal(t, 1, metrics[1].RevenueRank)
	assert.Equal(t, 2, metrics[2].RevenueRank)
}

func TestSegmentSafetyStockAndRefill(t *testing.T) {
	planogram := map[[2]string]domain.PlanogramEntry{
		{"S1", "SKU1"}: {StoreID: "S1", SKUID: "SKU1", MDQ: 500, StoreName: "Andheri", Format: "Hypermarket"},
	}
	metrics := []domain.StoreSkuMetric{{
		StoreID: "S1", SKUID: "SKU1",
		AvgWeeklySales: 10, AvgWeeklyRevenue: 500,
		SalesStd: 4, SaleFrequency: 1.0, RevenueRank: 0,
	}}
	Segment(metrics, planogram, nil)

	m := &metrics[0]
	// Rank 1 => segment A, Z=2.326.
	require.Equal(t, domain.SegmentHighValue, m.Segment)
	wantSS := 2.326 * 4 * math.Sqrt(3)
	assert.InDelta(t, wantSS, m.SafetyStock, 1e-9)
	// avg*8 + ss = 80+16.1 < mdq 500, so the planogram floor wins.
	assert.Equal(t, 500.0, m.RefillLevel)
	assert.Equal(t, "Andheri", m.StoreName)
	assert.Equal(t, "Hypermarket", m.StoreType)
}

func TestSegmentStockoutHorizonAndRevenueLoss(t *testing.T) {
	metrics := []domain.StoreSkuMetric{
		{StoreID: "S1", SKUID: "FAST", AvgWeeklySales: 10, AvgWeeklyRevenue: 500,
			SalesVelocity: 10, CurrentStock: 5, WeeksCoverage: 0.5},
		{StoreID: "S1", SKUID: "DEAD", AvgWeeklyRevenue: 0, SalesVelocity: 0, CurrentStock: 5},
	}
	Segment(metrics, nil, nil)

	assert.InDelta(t, 0.5, metrics[0].WeeksUntilStockout, 1e-9)
	assert.InDelta(t, 500*(3-0.5), metrics[0].PotentialRevLoss, 1e-9)

	// Zero velocity yields the +Inf sentinel, never a division panic.
	assert.True(t, math.IsInf(metrics[1].WeeksUntilStockout, 1))
}

func TestSegmentNoRevenueLossAtFullCoverage(t *testing.T) {
	metrics := []domain.StoreSkuMetric{
		{StoreID: "S1", SKUID: "SKU1", AvgWeeklyRevenue: 500, WeeksCoverage: 3.0},
		{StoreID: "S1", SKUID: "SKU2", AvgWeeklyRevenue: 500, WeeksCoverage: 6.0},
	}
	Segment(metrics, nil, nil)
	assert.Equal(t, 0.0, metrics[0].PotentialRevLoss)
	assert.Equal(t, 0.0, metrics[1].PotentialRevLoss)
}

func TestBucketStores(t *testing.T) {
	revenue := map[string]float64{
		"S1": 100, "S2": 200, "S3": 300, "S4": 400, "S5": 1000,
	}
	buckets := bucketStores(revenue)

	assert.Equal(t, domain.BucketStar, buckets["S5"])
	assert.Equal(t, domain.BucketAverage, buckets["S3"])
	assert.Equal(t, domain.BucketAverage, buckets["S4"])
	assert.Equal(t, domain.BucketLaggard, buckets["S1"])
	assert.Equal(t, domain.BucketLaggard, buckets["S2"])
}

func TestQuantileInterpolation(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}
	assert.InDelta(t, 25.0, quantile(sorted, 0.5), 1e-9)
	assert.InDelta(t, 10.0, quantile(sorted, 0), 1e-9)
	assert.InDelta(t, 40.0, quantile(sorted, 1), 1e-9)
	assert.Equal(t, 0.0, quantile(nil, 0.5))
}
