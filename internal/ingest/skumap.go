// internal/ingest/skumap.go
package ingest

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/retail-ars/internal/domain"
	"github.com/andresuchdata/retail-ars/pkg/logger"
)

// LoadSKUMappings reads the SKU mapping workbook. Each sheet holds one
// channel's mapping with {channel_sku, master_sku, sku_name} in the first
// three columns. Rows without a channel or master SKU are dropped.
//
// The returned map is keyed by lowercased sheet (channel) name. Order inside
// a sheet is preserved so that first-occurrence precedence can be applied
// downstream.
func LoadSKUMappings(path string) (map[string][]domain.SKUMapping, error) {
	sheets, err := ReadXLSXSheets(path)
	if err != nil {
		return nil, fmt.Errorf("load sku mapping workbook: %w", err)
	}

	out := make(map[string][]domain.SKUMapping, len(sheets))
	for name, t := range sheets {
		var rows []domain.SKUMapping
		for i := range t.Rows {
			m := domain.SKUMapping{
				ChannelSKU: t.Cell(i, 0),
				MasterSKU:  t.Cell(i, 1),
				SKUName:    t.Cell(i, 2),
			}
			if m.ChannelSKU == "" || m.MasterSKU == "" {
				continue
			}
			rows = append(rows, m)
		}
		if len(rows) == 0 {
			logger.Log.Warn().Str("sheet", name).Msg("sku mapping sheet has no usable rows")
			continue
		}
		out[strings.ToLower(strings.TrimSpace(name))] = rows
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("sku mapping workbook %s: no usable sheets", path)
	}
	return out, nil
}
