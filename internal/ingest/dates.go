// internal/ingest/dates.go
package ingest

import (
	"fmt"
	"strings"
	"time"
)

// Channel exports are dominated by day-first dates, so ambiguous forms like
// 02/03/2025 resolve to 2 March. ISO and excel-style layouts are accepted
// too.
var dateLayouts = []string{
	"02/01/2006",
	"02-01-2006",
	"2/1/2006",
	"2-1-2006",
	"02/01/06",
	"2006-01-02",
	"2006/01/02",
	"02 Jan 2006",
	"2 Jan 2006",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04:05",
	time.RFC3339,
}

// ParseDate parses a raw date cell day-first. The empty string is an error.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}
