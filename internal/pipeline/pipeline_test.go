package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/retail-ars/internal/channel"
	"github.com/andresuchdata/retail-ars/internal/config"
	"github.com/andresuchdata/retail-ars/internal/domain"
	"github.com/andresuchdata/retail-ars/internal/recon"
)

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()
	inputDir := t.TempDir()
	outputDir := t.TempDir()

	registry := channel.NewRegistry(map[string]channel.Schema{
		"amazon": {Columns: map[string]channel.SourceColumns{
			channel.FieldChannelSKU: {"ASIN"},
			channel.FieldQuantity:   {"Sellable Qty"},
			channel.FieldLocation:   {"FC"},
		}},
	})
	salesRegistry := channel.NewRegistry(map[string]channel.Schema{
		"amazon": {Columns: map[string]channel.SourceColumns{
			channel.FieldChannelSKU: {"ASIN"},
			channel.FieldQuantity:   {"Units Ordered"},
			channel.FieldValue:      {"Sales"},
			channel.FieldDate:       {"Order Date"},
			channel.FieldLocation:   {"FC"},
		}},
	})

	return &Pipeline{
		Cfg: &config.Config{App: config.AppConfig{
			InputDir:           inputDir,
			OutputDir:          outputDir,
			ChannelConcurrency: 2,
		}},
		Inventory: registry,
		Sales:     salesRegistry,
		Reconciler: recon.NewReconciler(map[string][]domain.SKUMapping{
			"amazon": {{ChannelSKU: "B001", MasterSKU: "SKU-1", SKUName: "Soap"}},
		}),
		Expander: recon.NewExpander(nil),
	}
}

func writeInput(t *testing.T, p *Pipeline, name, content string) {
	t.Helper()
	path := filepath.Join(p.Cfg.App.InputDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestRunExtractionSkipsBadFilesAndContinues(t *testing.T) {
	p := testPipeline(t)

	writeInput(t, p, "amazon_stock.csv", "ASIN,Sellable Qty,FC\nB001,10,DEL1\nB002,4,DEL1\n")
	// Unknown channel name: skipped.
	writeInput(t, p, "mystery_stock.csv", "ASIN,Sellable Qty\nB001,10\n")
	// Matches amazon but maps no columns: skipped.
	writeInput(t, p, "amazon_weird.csv", "Foo,Bar\n1,2\n")
	// Corrupt workbook: unreadable, skipped.
	writeInput(t, p, "amazon_broken.xlsx", "this is not a zip archive")

	byChannel, err := p.RunExtraction(KindInventory)
	require.NoError(t, err)
	require.Len(t, byChannel, 1)
	records := byChannel["amazon"]
	require.Len(t, records, 2)

	// Reconciliation ran: B001 mapped, B002 retained unmapped.
	assert.Equal(t, "SKU-1", records[0].MasterSKU)
	assert.True(t, records[0].SKUMapped)
	assert.False(t, records[1].SKUMapped)

	// Consolidated CSV written.
	_, err = os.Stat(filepath.Join(p.Cfg.App.OutputDir, "consolidated_inventory.csv"))
	assert.NoError(t, err)
}

func TestRunExtractionNoValidData(t *testing.T) {
	p := testPipeline(t)
	writeInput(t, p, "mystery.csv", "Foo\n1\n")

	_, err := p.RunExtraction(KindInventory)
	assert.ErrorIs(t, err, ErrNoValidData)
}

func TestChannelInputs(t *testing.T) {
	salesRecords := []domain.ChannelRecord{
		{Channel: "amazon", ChannelSKU: "B001", MasterSKU: "SKU-1", SKUMapped: true,
			Location: "DEL1", Date: "06/01/2025", Quantity: 20, Value: 1000},
		{Channel: "amazon", ChannelSKU: "B002", Location: "DEL1",
			Date: "garbage", Quantity: 5, Value: 100},
	}
	stockRecords := []domain.ChannelRecord{
		{Channel: "amazon", ChannelSKU: "B001", MasterSKU: "SKU-1", SKUMapped: true,
			Location: "DEL1", Quantity: 3},
		{Channel: "amazon", ChannelSKU: "B001", MasterSKU: "SKU-1", SKUMapped: true,
			Location: "DEL1", Quantity: 2},
	}

	sales, stock := ChannelInputs(salesRecords, stockRecords)

	// The unparseable-date row is dropped.
	require.Len(t, sales, 1)
	assert.Equal(t, "DEL1", sales[0].StoreID)
	assert.Equal(t, "SKU-1", sales[0].SKUID)
	assert.Equal(t, 20.0, sales[0].SalesUnits)

	// Stock pre-aggregates to the pair.
	require.Len(t, stock, 1)
	assert.Equal(t, 5.0, stock[0].CurrentStock)
}

func TestAnalyzeChannelWritesReports(t *testing.T) {
	p := testPipeline(t)

	writeInput(t, p, "amazon_stock.csv", "ASIN,Sellable Qty,FC\nB001,5,DEL1\n")
	sales := "ASIN,Units Ordered,Sales,Order Date,FC\n" +
		"B001,20,1000,06/01/2025,DEL1\n" +
		"B001,20,1000,13/01/2025,DEL1\n"
	writeInput(t, p, "amazon_sales.csv", sales)

	require.NoError(t, p.Run(context.Background()))

	outDir := filepath.Join(p.Cfg.App.OutputDir, "amazon")
	for _, name := range []string{
		"store_metric.csv",
		"sku_recommendations.csv",
		"no_sale_inv.csv",
		"retail_ars.xlsx",
		"analysis_summary.txt",
	} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
}

func TestRunNoValidDataAtAll(t *testing.T) {
	p := testPipeline(t)
	err := p.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoValidData)
}
