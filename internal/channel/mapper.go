// internal/channel/mapper.go
package channel

import (
	"errors"
	"fmt"

	"github.com/andresuchdata/retail-ars/internal/domain"
	"github.com/andresuchdata/retail-ars/internal/ingest"
	"github.com/andresuchdata/retail-ars/pkg/logger"
)

// ErrChannelUnknown means no registered channel name matched the file name.
var ErrChannelUnknown = errors.New("channel not recognized from file name")

// ErrNoMappedColumns means none of the schema's source columns exist in the
// table, so the file carries nothing usable for this extraction.
var ErrNoMappedColumns = errors.New("no mapped columns found in source table")

// MapTable converts a raw table into canonical channel records using the
// channel's schema. Per field:
//   - numeric fields coerce each source column (invalid -> 0) and sum them;
//   - text fields take the first present source column;
//   - a source column missing from the table logs a warning and drops only
//     that field.
//
// MapTable fails with ErrNoMappedColumns only when not a single field
// resolves.
func MapTable(channelName string, schema Schema, t *ingest.Table) ([]domain.ChannelRecord, error) {
	log := logger.WithChannel(channelName)

	type binding struct {
		field string
		cols  []int
	}
	var bindings []binding
	for field, sources := range schema.Columns {
		var cols []int
		for _, src := range sources {
			idx := t.ColumnIndex(src)
			if idx < 0 {
				log.Warn().
					Str("file", t.Name).
					Str("field", field).
					Str("source_column", src).
					Msg("source column missing, field partially or fully skipped")
				continue
			}
			cols = append(cols, idx)
		}
		if len(cols) == 0 {
			continue
		}
		bindings = append(bindings, binding{field: field, cols: cols})
	}
	if len(bindings) == 0 {
		return nil, fmt.Errorf("%s: %w", t.Name, ErrNoMappedColumns)
	}

	records := make([]domain.ChannelRecord, 0, len(t.Rows))
	for i := range t.Rows {
		rec := domain.ChannelRecord{Channel: channelName}
		nums := make(map[string]float64, 3)
		empty := true
		for _, b := range bindings {
			if IsNumericField(b.field) {
				var sum float64
				for _, col := range b.cols {
					sum += ingest.CoerceFloat(t.Cell(i, col))
				}
				if sum < 0 {
					sum = 0
				}
				nums[b.field] = sum
				empty = false
				continue
			}
			for _, col := range b.cols {
				if v := t.Cell(i, col); v != "" {
					setTextField(&rec, b.field, v)
					empty = false
					break
				}
			}
		}
		if empty || rec.ChannelSKU == "" {
			continue
		}
		rec.Quantity = nums[FieldQuantity]
		rec.Value = nums[FieldValue]
		// Channels that report unit price instead of line value.
		if rec.Value == 0 {
			rec.Value = nums[FieldUnitPrice] * rec.Quantity
		}
		records = append(records, rec)
	}
	return records, nil
}

func setTextField(rec *domain.ChannelRecord, field, v string) {
	switch field {
	case FieldChannelSKU:
		rec.ChannelSKU = v
	case FieldSKUName:
		rec.SKUName = v
	case FieldDate:
		rec.Date = v
	case FieldLocation:
		rec.Location = v
	case FieldStatus:
		rec.Status = v
	}
}
