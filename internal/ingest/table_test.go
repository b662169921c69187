package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeColumn(t *testing.T) {
	cases := map[string]string{
		"Channel SKU":  "channelsku",
		"channel_sku":  "channelsku",
		"CHANNEL-SKU":  "channelsku",
		" Qty (Units)": "qtyunits",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeColumn(in))
	}
}

func TestCoerceFloat(t *testing.T) {
	assert.Equal(t, 12.5, CoerceFloat("12.5"))
	assert.Equal(t, 1200.0, CoerceFloat("1,200"))
	assert.Equal(t, 0.0, CoerceFloat(""))
	assert.Equal(t, 0.0, CoerceFloat("-"))
	assert.Equal(t, 0.0, CoerceFloat("N/A"))
	assert.Equal(t, -3.0, CoerceFloat("-3"))
}

func TestReadCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "amazon_inventory.csv")
	content := "ASIN,Product Name,Sellable Qty\nB001,Soap,10\nB002,Shampoo,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ASIN", "Product Name", "Sellable Qty"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "B001", table.Cell(0, 0))
	assert.Equal(t, "", table.Cell(1, 2))
	assert.Equal(t, 0, table.ColumnIndex("asin"))
	assert.Equal(t, -1, table.ColumnIndex("missing"))
}

func TestReadCSVRaggedRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ragged.csv")
	content := "a,b,c\n1,2\n4,5,6,7\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "", table.Cell(0, 2))
	assert.Equal(t, "6", table.Cell(1, 2))
}

func TestParseDateDayFirst(t *testing.T) {
	d, err := ParseDate("02/03/2025")
	require.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)))

	d, err = ParseDate("2025-03-02")
	require.NoError(t, err)
	assert.Equal(t, time.March, d.Month())

	_, err = ParseDate("")
	assert.Error(t, err)
	_, err = ParseDate("not a date")
	assert.Error(t, err)
}
