package channel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *Registry {
	return NewRegistry(map[string]Schema{
		"tata": {Columns: map[string]SourceColumns{
			FieldChannelSKU: {"Article Code"},
		}},
		"tata1mg": {Columns: map[string]SourceColumns{
			FieldChannelSKU: {"SKU Code"},
		}},
		"amazon": {Columns: map[string]SourceColumns{
			FieldChannelSKU: {"ASIN"},
		}},
	})
}

func TestDetectLongestMatchWins(t *testing.T) {
	r := testRegistry()

	ch, ok := r.Detect("Tata1mg_Inventory_Jan.xlsx")
	require.True(t, ok)
	assert.Equal(t, "tata1mg", ch)

	ch, ok = r.Detect("TATA_croma_stock.csv")
	require.True(t, ok)
	assert.Equal(t, "tata", ch)

	ch, ok = r.Detect("amazon-fba-report.xlsx")
	require.True(t, ok)
	assert.Equal(t, "amazon", ch)
}

func TestDetectUnknown(t *testing.T) {
	r := testRegistry()
	_, ok := r.Detect("random_report.xlsx")
	assert.False(t, ok)
}

func TestLoadRegistry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "channels.json")
	content := `{
		"amazon": {
			"sheet_name": "Stock",
			"columns": {
				"channel_sku": "ASIN",
				"quantity": ["Sellable Qty", "Unsellable Qty"]
			}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	r, err := LoadRegistry(path)
	require.NoError(t, err)

	schema, ok := r.Schema("amazon")
	require.True(t, ok)
	assert.Equal(t, "Stock", schema.Sheet)
	assert.Equal(t, SourceColumns{"ASIN"}, schema.Columns[FieldChannelSKU])
	assert.Equal(t, SourceColumns{"Sellable Qty", "Unsellable Qty"}, schema.Columns[FieldQuantity])
}

func TestLoadRegistryEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "channels.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0644))
	_, err := LoadRegistry(path)
	assert.Error(t, err)
}
