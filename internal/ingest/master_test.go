package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSKUMappings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "SKU_Mapping.xlsx")

	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), "Amazon")
	require.NoError(t, f.SetSheetRow("Amazon", "A1", &[]interface{}{"channel_sku", "master_sku", "sku_name"}))
	require.NoError(t, f.SetSheetRow("Amazon", "A2", &[]interface{}{"B001", "SKU-1", "Soap 100g"}))
	require.NoError(t, f.SetSheetRow("Amazon", "A3", &[]interface{}{"B002", "", "no master"}))
	_, err := f.NewSheet("Flipkart")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Flipkart", "A1", &[]interface{}{"channel_sku", "master_sku", "sku_name"}))
	require.NoError(t, f.SetSheetRow("Flipkart", "A2", &[]interface{}{"FSN9", "SKU-2", "Shampoo"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	mappings, err := LoadSKUMappings(path)
	require.NoError(t, err)
	require.Len(t, mappings, 2)

	amazon := mappings["amazon"]
	require.Len(t, amazon, 1)
	assert.Equal(t, "B001", amazon[0].ChannelSKU)
	assert.Equal(t, "SKU-1", amazon[0].MasterSKU)

	flipkart := mappings["flipkart"]
	require.Len(t, flipkart, 1)
	assert.Equal(t, "SKU-2", flipkart[0].MasterSKU)
}

func TestLoadBundleMap(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bom.csv",
		"master_sku,master_sku_name,master_sku_barcode,child_sku,child_sku_name,child_sku_barcode,qty\n"+
			"COMBO-1,Gift Pack,890100,SKU-1,Soap,890101,2\n"+
			"COMBO-1,Gift Pack,890100,SKU-2,Shampoo,890102,1\n"+
			"COMBO-2,Broken,890200,SKU-3,Oil,890103,0\n")

	bundles, err := LoadBundleMap(path)
	require.NoError(t, err)

	require.Len(t, bundles["COMBO-1"], 2)
	assert.Equal(t, "SKU-1", bundles["COMBO-1"][0].ChildSKU)
	assert.Equal(t, 2.0, bundles["COMBO-1"][0].Qty)

	// Zero-qty components are rejected.
	assert.Empty(t, bundles["COMBO-2"])
}

func TestLoadPlanogramJoinOnFormat(t *testing.T) {
	dir := t.TempDir()
	storeMap := writeFile(t, dir, "stores.csv",
		"store_id,store_name,channel,format\n"+
			"S1,Andheri,tata,Hypermarket\n"+
			"S2,Baner,tata,Express\n"+
			"S3,Orphan,tata,Kiosk\n")
	layout := writeFile(t, dir, "layout.csv",
		"format,sku_id,mdq\n"+
			"Hypermarket,SKU-1,24\n"+
			"Hypermarket,SKU-2,12\n"+
			"express,SKU-1,6\n")

	entries, err := LoadPlanogram(storeMap, layout)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	idx := PlanogramIndex(entries)
	e, ok := idx[[2]string{"S1", "SKU-1"}]
	require.True(t, ok)
	assert.Equal(t, 24.0, e.MDQ)
	assert.Equal(t, "Andheri", e.StoreName)

	// Format match is case-insensitive.
	e, ok = idx[[2]string{"S2", "SKU-1"}]
	require.True(t, ok)
	assert.Equal(t, 6.0, e.MDQ)

	// Stores without a layout are dropped, not zero-filled.
	_, ok = idx[[2]string{"S3", "SKU-1"}]
	assert.False(t, ok)
}

func TestLoadSKUMaster(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sku_master.csv",
		"sku_id,sku_name,brand_line,mrp\n"+
			"SKU-1,Soap 100g,Personal Care,55\n"+
			"SKU-1,Soap 100g v2,Personal Care,60\n")

	master, err := LoadSKUMaster(path)
	require.NoError(t, err)
	require.Len(t, master, 1)
	// The last row wins for duplicates.
	assert.Equal(t, "Soap 100g v2", master["SKU-1"].SKUName)
	assert.Equal(t, 60.0, master["SKU-1"].MRP)
}
