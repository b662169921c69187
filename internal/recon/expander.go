// internal/recon/expander.go
package recon

import (
	"github.com/andresuchdata/retail-ars/internal/domain"
)

// Expander fans bundle (combo) records out into their component SKUs.
// Expansion is single level: a child that is itself a bundle parent is not
// expanded again, which also makes accidental circular definitions inert.
type Expander struct {
	bundles map[string][]domain.BundleComponent
}

// NewExpander wraps a bundle map loaded from the BOM spreadsheet.
func NewExpander(bundles map[string][]domain.BundleComponent) *Expander {
	return &Expander{bundles: bundles}
}

// Expand replaces each record whose master SKU is a bundle parent with one
// record per component: quantity scales by the component qty, and the parent
// line value is split across children in proportion to their share of total
// component units. Non-bundle records pass through untouched.
func (e *Expander) Expand(records []domain.ChannelRecord) []domain.ChannelRecord {
	out := make([]domain.ChannelRecord, 0, len(records))
	for _, rec := range records {
		comps, ok := e.bundles[rec.MasterSKU]
		if !ok || rec.MasterSKU == "" {
			out = append(out, rec)
			continue
		}

		var totalUnits float64
		for _, c := range comps {
			totalUnits += c.Qty * rec.Quantity
		}

		for _, c := range comps {
			child := rec
			child.MasterSKU = c.ChildSKU
			child.ChannelSKU = rec.ChannelSKU
			if c.ChildName != "" {
				child.SKUName = c.ChildName
			}
			child.Quantity = c.Qty * rec.Quantity
			if totalUnits > 0 {
				child.Value = rec.Value * (child.Quantity / totalUnits)
			} else {
				child.Value = 0
			}
			out = append(out, child)
		}
	}
	return out
}
