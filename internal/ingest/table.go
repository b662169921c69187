// internal/ingest/table.go
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is a raw rectangular read of one sheet or CSV file. Header cells are
// kept verbatim; Rows are padded/truncated to the header width.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// columnNameSanitizer normalizes header names for tolerant lookup.
var columnNameSanitizer = strings.NewReplacer(
	" ", "",
	"_", "",
	"-", "",
	".", "",
	"(", "",
	")", "",
	"/", "",
)

// NormalizeColumn lowercases and strips separators so that "Channel SKU",
// "channel_sku" and "CHANNEL-SKU" all collapse to the same key.
func NormalizeColumn(name string) string {
	return columnNameSanitizer.Replace(strings.ToLower(strings.TrimSpace(name)))
}

// ColumnIndex returns the position of the named column using normalized
// comparison, or -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	want := NormalizeColumn(name)
	for i, h := range t.Header {
		if NormalizeColumn(h) == want {
			return i
		}
	}
	return -1
}

// Cell returns the value at (row, col), empty when out of range.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][col])
}

// CoerceFloat parses a numeric cell. Thousands separators are tolerated and
// anything unparseable becomes 0, matching how dirty channel exports are
// handled throughout the pipeline.
func CoerceFloat(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// ReadXLSX reads one sheet of an xlsx workbook into a Table. An empty sheet
// name selects the first sheet. The first non-empty row is the header.
func ReadXLSX(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q in %s: %w", sheet, path, err)
	}
	return tableFromRows(filepath.Base(path), rows)
}

// ReadXLSXSheets reads every sheet of a workbook, keyed by sheet name.
// Empty sheets are skipped.
func ReadXLSXSheets(path string) (map[string]*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	out := make(map[string]*Table)
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q in %s: %w", sheet, path, err)
		}
		t, err := tableFromRows(sheet, rows)
		if err != nil {
			continue
		}
		out[sheet] = t
	}
	return out, nil
}

// ReadCSV reads a CSV file into a Table. Ragged rows are accepted.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	return tableFromRows(filepath.Base(path), records)
}

// ReadTable dispatches on extension: .xlsx/.xlsm go through excelize,
// everything else is treated as CSV.
func ReadTable(path, sheet string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		return ReadXLSX(path, sheet)
	default:
		return ReadCSV(path)
	}
}

func tableFromRows(name string, rows [][]string) (*Table, error) {
	// Skip leading fully-empty rows before the header.
	start := -1
	for i, row := range rows {
		if !rowEmpty(row) {
			start = i
			break
		}
	}
	if start == -1 {
		return nil, fmt.Errorf("table %s: no header row", name)
	}

	header := make([]string, len(rows[start]))
	for i, h := range rows[start] {
		header[i] = strings.TrimSpace(h)
	}

	t := &Table{Name: name, Header: header}
	for _, row := range rows[start+1:] {
		if rowEmpty(row) {
			continue
		}
		padded := make([]string, len(header))
		for i := range padded {
			if i < len(row) {
				padded[i] = row[i]
			}
		}
		t.Rows = append(t.Rows, padded)
	}
	return t, nil
}

func rowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
