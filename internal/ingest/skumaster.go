// internal/ingest/skumaster.go
package ingest

import (
	"fmt"

	"github.com/andresuchdata/retail-ars/internal/domain"
)

// LoadSKUMaster reads the SKU master catalog keyed by sku_id. Expected
// columns: sku_id, sku_name, brand_line, mrp. Later duplicates overwrite
// earlier ones so a corrected row at the bottom of the file wins.
func LoadSKUMaster(path string) (map[string]domain.SKUMaster, error) {
	t, err := ReadTable(path, "")
	if err != nil {
		return nil, fmt.Errorf("load sku master: %w", err)
	}

	idIdx := t.ColumnIndex("sku_id")
	nameIdx := t.ColumnIndex("sku_name")
	brandIdx := t.ColumnIndex("brand_line")
	mrpIdx := t.ColumnIndex("mrp")
	if idIdx < 0 {
		return nil, fmt.Errorf("sku master %s: missing sku_id column", path)
	}

	out := make(map[string]domain.SKUMaster)
	for i := range t.Rows {
		id := t.Cell(i, idIdx)
		if id == "" {
			continue
		}
		out[id] = domain.SKUMaster{
			SKUID:     id,
			SKUName:   t.Cell(i, nameIdx),
			BrandLine: t.Cell(i, brandIdx),
			MRP:       CoerceFloat(t.Cell(i, mrpIdx)),
		}
	}
	return out, nil
}
