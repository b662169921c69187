// internal/report/summary.go
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresuchdata/retail-ars/internal/domain"
)

// WriteSummary writes the run-level summary JSON to analysis_summary.txt.
func WriteSummary(path string, s domain.AnalysisSummary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
