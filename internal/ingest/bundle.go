// internal/ingest/bundle.go
package ingest

import (
	"fmt"

	"github.com/andresuchdata/retail-ars/internal/domain"
	"github.com/andresuchdata/retail-ars/pkg/logger"
)

// LoadBundleMap reads the bundle (BOM) spreadsheet into
// {master_sku -> components}. Expected columns: master_sku, master_sku_name,
// master_sku_barcode, child_sku, child_sku_name, child_sku_barcode, qty.
// Column order does not matter; lookup is by normalized name.
func LoadBundleMap(path string) (map[string][]domain.BundleComponent, error) {
	t, err := ReadTable(path, "")
	if err != nil {
		return nil, fmt.Errorf("load bundle map: %w", err)
	}

	parentIdx := t.ColumnIndex("master_sku")
	childIdx := t.ColumnIndex("child_sku")
	childNameIdx := t.ColumnIndex("child_sku_name")
	qtyIdx := t.ColumnIndex("qty")
	if parentIdx < 0 || childIdx < 0 || qtyIdx < 0 {
		return nil, fmt.Errorf("bundle map %s: missing master_sku/child_sku/qty columns", path)
	}

	out := make(map[string][]domain.BundleComponent)
	for i := range t.Rows {
		parent := t.Cell(i, parentIdx)
		child := t.Cell(i, childIdx)
		if parent == "" || child == "" {
			continue
		}
		qty := CoerceFloat(t.Cell(i, qtyIdx))
		if qty <= 0 {
			logger.Log.Warn().
				Str("master_sku", parent).
				Str("child_sku", child).
				Msg("bundle component with non-positive qty skipped")
			continue
		}
		out[parent] = append(out[parent], domain.BundleComponent{
			ChildSKU:  child,
			ChildName: t.Cell(i, childNameIdx),
			Qty:       qty,
		})
	}
	return out, nil
}
