// internal/report/excel.go
package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/retail-ars/internal/domain"
)

// WriteWorkbook writes the retail_ars.xlsx workbook with a store_analysis
// sheet (the full metric table) and a no_sales sheet.
func WriteWorkbook(path string, metrics []domain.StoreSkuMetric, noSales []domain.NoSaleItem) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const analysisSheet = "store_analysis"
	const noSalesSheet = "no_sales"

	f.SetSheetName(f.GetSheetName(0), analysisSheet)
	if _, err := f.NewSheet(noSalesSheet); err != nil {
		return fmt.Errorf("create no_sales sheet: %w", err)
	}

	if err := writeSheet(f, analysisSheet, metricHeader, len(metrics), func(i int) []interface{} {
		return metricCells(&metrics[i])
	}); err != nil {
		return err
	}
	if err := writeSheet(f, noSalesSheet, noSaleHeader, len(noSales), func(i int) []interface{} {
		n := &noSales[i]
		return []interface{}{
			n.StoreID, n.StoreName, n.Channel, n.SKUID, n.SKUName,
			n.BrandLine, n.MRP, n.MDQ, n.CurrentStock,
		}
	}); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, n int, row func(i int) []interface{}) error {
	headerCells := make([]interface{}, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerCells); err != nil {
		return fmt.Errorf("write header on %s: %w", sheet, err)
	}
	for i := 0; i < n; i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		cells := row(i)
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %d on %s: %w", i+2, sheet, err)
		}
	}
	return nil
}

func metricCells(m *domain.StoreSkuMetric) []interface{} {
	var stockout interface{}
	if math.IsInf(m.WeeksUntilStockout, 1) {
		stockout = "inf"
	} else {
		stockout = m.WeeksUntilStockout
	}
	return []interface{}{
		m.StoreID, m.StoreName, m.StoreType, m.Channel, m.SKUID, m.SKUName,
		m.BrandLine, m.MRP, m.MDQ, m.TotalSales, m.TotalSalesValue,
		m.WeeksOfData, m.TotalWeeks, m.AvgWeeklySales, m.AvgWeeklyRevenue,
		m.SalesStd, m.SaleFrequency, m.SalesVelocity,
		m.AvgSales90Day, m.AvgSales30Day, m.CurrentStock, m.WeeksCoverage,
		m.RevenueRank, m.Segment, m.PerformanceBucket, m.SafetyStock,
		m.RefillLevel, stockout, m.PotentialRevLoss,
	}
}
