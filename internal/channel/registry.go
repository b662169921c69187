// internal/channel/registry.go
package channel

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Canonical field names the mapper can produce. Quantity-like fields are
// coerced to numbers and, when fed from multiple source columns, summed.
const (
	FieldChannelSKU = "channel_sku"
	FieldSKUName    = "sku_name"
	FieldQuantity   = "quantity"
	FieldValue      = "value"
	FieldDate       = "date"
	FieldLocation   = "location"
	FieldStatus     = "status"
	FieldUnitPrice  = "unit_price"
)

// numericFields are summed across their source columns after coercion.
var numericFields = map[string]bool{
	FieldQuantity:  true,
	FieldValue:     true,
	FieldUnitPrice: true,
}

// IsNumericField reports whether the canonical field carries a number.
func IsNumericField(field string) bool {
	return numericFields[field]
}

// SourceColumns accepts either a single JSON string or an array of strings,
// so registry files can write "quantity": "Units" or
// "quantity": ["Sellable", "Unsellable"].
type SourceColumns []string

func (s *SourceColumns) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = SourceColumns{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("source columns must be a string or array of strings: %w", err)
	}
	*s = SourceColumns(many)
	return nil
}

// Schema describes how one channel's export maps to canonical fields.
type Schema struct {
	// Sheet selects the worksheet inside xlsx sources; empty means first.
	Sheet string `json:"sheet_name"`
	// Columns maps canonical field -> source column(s).
	Columns map[string]SourceColumns `json:"columns"`
}

// Registry holds the channel schemas for one extraction kind (inventory or
// sales). Adding a channel means adding a JSON entry, never code.
type Registry struct {
	schemas map[string]Schema
	// names sorted longest first so that e.g. "tata1mg" is tried before
	// "tata" during filename detection.
	names []string
}

// LoadRegistry reads a channel registry JSON file of the form
// {"channel": {"sheet_name": "...", "columns": {...}}}.
func LoadRegistry(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read channel registry %s: %w", path, err)
	}
	var schemas map[string]Schema
	if err := json.Unmarshal(raw, &schemas); err != nil {
		return nil, fmt.Errorf("parse channel registry %s: %w", path, err)
	}
	if len(schemas) == 0 {
		return nil, fmt.Errorf("channel registry %s is empty", path)
	}
	return NewRegistry(schemas), nil
}

// NewRegistry builds a registry from in-memory schemas. Channel names are
// normalized to lowercase.
func NewRegistry(schemas map[string]Schema) *Registry {
	r := &Registry{schemas: make(map[string]Schema, len(schemas))}
	for name, s := range schemas {
		key := strings.ToLower(strings.TrimSpace(name))
		r.schemas[key] = s
		r.names = append(r.names, key)
	}
	sort.Slice(r.names, func(i, j int) bool {
		if len(r.names[i]) != len(r.names[j]) {
			return len(r.names[i]) > len(r.names[j])
		}
		return r.names[i] < r.names[j]
	})
	return r
}

// Channels returns the registered channel names, longest first.
func (r *Registry) Channels() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Schema returns the schema for a channel.
func (r *Registry) Schema(channel string) (Schema, bool) {
	s, ok := r.schemas[strings.ToLower(channel)]
	return s, ok
}

// Detect finds the channel whose name occurs as a case-insensitive substring
// of the file name. Longer channel names win over shorter ones, so a file
// named "Tata1mg_inventory.xlsx" resolves to tata1mg even when a plain
// "tata" channel is registered too.
func (r *Registry) Detect(filename string) (string, bool) {
	lower := strings.ToLower(filename)
	for _, name := range r.names {
		if strings.Contains(lower, name) {
			return name, true
		}
	}
	return "", false
}
