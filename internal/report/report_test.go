package report

import (
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/retail-ars/internal/domain"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteStoreMetricsInfSentinel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store_metric.csv")

	metrics := []domain.StoreSkuMetric{
		{StoreID: "S1", SKUID: "SKU1", WeeksUntilStockout: math.Inf(1)},
		{StoreID: "S1", SKUID: "SKU2", WeeksUntilStockout: 2.5},
	}
	require.NoError(t, WriteStoreMetrics(path, metrics))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)

	col := -1
	for i, h := range rows[0] {
		if h == "weeks_until_stockout" {
			col = i
		}
	}
	require.GreaterOrEqual(t, col, 0)
	assert.Equal(t, "inf", rows[1][col])
	assert.Equal(t, "2.50", rows[2][col])
}

func TestWriteConsolidated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "consolidated.csv")

	records := []domain.ChannelRecord{
		{Channel: "amazon", ChannelSKU: "B001", SKUName: "Soap", Quantity: 12,
			Location: "DEL1", MasterSKU: "SKU-1", SKUMapped: true},
	}
	require.NoError(t, WriteConsolidated(path, records))

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, "amazon", rows[1][0])
	assert.Equal(t, "12.00", rows[1][3])
	assert.Equal(t, "true", rows[1][9])
}

func TestWriteSummary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "analysis_summary.txt")

	require.NoError(t, WriteSummary(path, domain.AnalysisSummary{
		TotalSKUs:                 3,
		TotalStores:               2,
		TotalStoreSkuCombinations: 5,
		TotalInventoryValue:       1234.5,
	}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var got domain.AnalysisSummary
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, 3, got.TotalSKUs)
	assert.Equal(t, 5, got.TotalStoreSkuCombinations)
	assert.Equal(t, 1234.5, got.TotalInventoryValue)
}

func TestWriteWorkbookSheets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "retail_ars.xlsx")

	metrics := []domain.StoreSkuMetric{
		{StoreID: "S1", SKUID: "SKU1", Segment: domain.SegmentHighValue,
			WeeksUntilStockout: math.Inf(1)},
	}
	noSales := []domain.NoSaleItem{
		{StoreID: "S2", SKUID: "SKU9", CurrentStock: 7},
	}
	require.NoError(t, WriteWorkbook(path, metrics, noSales))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"store_analysis", "no_sales"}, f.GetSheetList())

	rows, err := f.GetRows("store_analysis")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "store_id", rows[0][0])
	assert.Equal(t, "S1", rows[1][0])

	noSaleRows, err := f.GetRows("no_sales")
	require.NoError(t, err)
	require.Len(t, noSaleRows, 2)
	assert.Equal(t, "S2", noSaleRows[1][0])
}
