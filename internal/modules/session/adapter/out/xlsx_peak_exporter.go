package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"peaklab/internal/modules/session/domain"
	sessionout "peaklab/internal/modules/session/port/out"
)

const PeakSheet = "Peaks"

var peakHeaders = []any{"Session", "Source", "Domain", "Scans", "Peak", "Bound 1", "Bound 2", "Value"}

type XLSXPeakExporter struct{}

func NewXLSXPeakExporter() sessionout.PeakExporter {
	return XLSXPeakExporter{}
}

// Export writes one row per peak under a header row. Unavailable values
// are written as N/A.
func (XLSXPeakExporter) Export(_ context.Context, dest string, rows []domain.IndexedPeak) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), PeakSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetSheetRow(PeakSheet, "A1", &peakHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		var value any = domain.Unavailable
		if r.Available {
			value = r.Value
		}
		cells := []any{r.SessionPath, r.SourcePath, r.Kind, r.Scans, r.Ordinal, r.Bound1, r.Bound2, value}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(PeakSheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := f.SetPanes(PeakSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := f.SaveAs(dest); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
