// internal/ingest/planogram.go
package ingest

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/retail-ars/internal/domain"
	"github.com/andresuchdata/retail-ars/pkg/logger"
)

// LoadPlanogram joins the store map (store_id, store_name, channel, format)
// with the planogram layout (format, sku_id, mdq) on format. The result is
// one entry per (store, sku) carrying the MDQ floor plus store metadata.
// Stores whose format has no layout are logged and dropped.
func LoadPlanogram(storeMapPath, layoutPath string) ([]domain.PlanogramEntry, error) {
	stores, err := ReadTable(storeMapPath, "")
	if err != nil {
		return nil, fmt.Errorf("load store map: %w", err)
	}
	layout, err := ReadTable(layoutPath, "")
	if err != nil {
		return nil, fmt.Errorf("load planogram layout: %w", err)
	}

	sIDIdx := stores.ColumnIndex("store_id")
	sNameIdx := stores.ColumnIndex("store_name")
	sChanIdx := stores.ColumnIndex("channel")
	sFmtIdx := stores.ColumnIndex("format")
	if sIDIdx < 0 || sFmtIdx < 0 {
		return nil, fmt.Errorf("store map %s: missing store_id/format columns", storeMapPath)
	}

	lFmtIdx := layout.ColumnIndex("format")
	lSKUIdx := layout.ColumnIndex("sku_id")
	lMDQIdx := layout.ColumnIndex("mdq")
	if lFmtIdx < 0 || lSKUIdx < 0 || lMDQIdx < 0 {
		return nil, fmt.Errorf("planogram layout %s: missing format/sku_id/mdq columns", layoutPath)
	}

	// format -> layout rows
	byFormat := make(map[string][]int)
	for i := range layout.Rows {
		f := strings.ToLower(layout.Cell(i, lFmtIdx))
		if f == "" || layout.Cell(i, lSKUIdx) == "" {
			continue
		}
		byFormat[f] = append(byFormat[f], i)
	}

	var out []domain.PlanogramEntry
	for i := range stores.Rows {
		storeID := stores.Cell(i, sIDIdx)
		if storeID == "" {
			continue
		}
		format := stores.Cell(i, sFmtIdx)
		rows, ok := byFormat[strings.ToLower(format)]
		if !ok {
			logger.Log.Warn().
				Str("store_id", storeID).
				Str("format", format).
				Msg("store format has no planogram layout")
			continue
		}
		for _, j := range rows {
			out = append(out, domain.PlanogramEntry{
				StoreID:   storeID,
				SKUID:     layout.Cell(j, lSKUIdx),
				MDQ:       CoerceFloat(layout.Cell(j, lMDQIdx)),
				StoreName: stores.Cell(i, sNameIdx),
				Format:    format,
				Channel:   stores.Cell(i, sChanIdx),
			})
		}
	}
	return out, nil
}

// PlanogramIndex keys planogram entries by (store_id, sku_id) for the
// metric join. Duplicate pairs keep the first entry.
func PlanogramIndex(entries []domain.PlanogramEntry) map[[2]string]domain.PlanogramEntry {
	idx := make(map[[2]string]domain.PlanogramEntry, len(entries))
	for _, e := range entries {
		k := [2]string{e.StoreID, e.SKUID}
		if _, ok := idx[k]; !ok {
			idx[k] = e
		}
	}
	return idx
}
