// internal/recon/reconciler.go
package recon

import (
	"strings"

	"github.com/andresuchdata/retail-ars/internal/domain"
	"github.com/andresuchdata/retail-ars/pkg/logger"
)

// Reconciler resolves channel SKU codes to master SKU codes using the
// mapping workbook. When the same channel_sku appears more than once, the
// first occurrence wins; later duplicates are logged and ignored.
type Reconciler struct {
	// channel -> channel_sku -> mapping
	index map[string]map[string]domain.SKUMapping
}

// NewReconciler builds the lookup index from per-channel mapping rows.
func NewReconciler(mappings map[string][]domain.SKUMapping) *Reconciler {
	index := make(map[string]map[string]domain.SKUMapping, len(mappings))
	for channel, rows := range mappings {
		byCode := make(map[string]domain.SKUMapping, len(rows))
		for _, m := range rows {
			key := strings.ToLower(strings.TrimSpace(m.ChannelSKU))
			if _, dup := byCode[key]; dup {
				logger.Log.Warn().
					Str("channel", channel).
					Str("channel_sku", m.ChannelSKU).
					Msg("duplicate sku mapping ignored, first occurrence wins")
				continue
			}
			byCode[key] = m
		}
		index[strings.ToLower(channel)] = byCode
	}
	return &Reconciler{index: index}
}

// Resolve performs a left join of records against the mapping for their
// channel. Mapped records gain MasterSKU and SKUMapped=true, and the mapping
// sheet's sku_name fills a blank SKUName. Unmapped records pass through
// unchanged with SKUMapped=false.
func (r *Reconciler) Resolve(records []domain.ChannelRecord) []domain.ChannelRecord {
	out := make([]domain.ChannelRecord, len(records))
	unmapped := 0
	for i, rec := range records {
		byCode := r.index[strings.ToLower(rec.Channel)]
		m, ok := byCode[strings.ToLower(strings.TrimSpace(rec.ChannelSKU))]
		if !ok {
			rec.SKUMapped = false
			unmapped++
			out[i] = rec
			continue
		}
		rec.MasterSKU = m.MasterSKU
		rec.SKUMapped = true
		if rec.SKUName == "" {
			rec.SKUName = m.SKUName
		}
		out[i] = rec
	}
	if unmapped > 0 {
		logger.Log.Info().
			Int("unmapped", unmapped).
			Int("total", len(records)).
			Msg("records left without a master sku")
	}
	return out
}
