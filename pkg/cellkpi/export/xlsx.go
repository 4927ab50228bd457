package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/blctm/gigagreen/pkg/cellkpi/models"
)

// SummarySheet is the worksheet name used by WriteXLSX.
const SummarySheet = "Summary"

// WriteXLSX writes the table as a one-sheet workbook. Finite values are
// numeric cells, non-finite values text cells, missing values blank.
func WriteXLSX(w io.Writer, t models.CombinedTable) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SummarySheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	metrics := t.MetricNames()
	for i, row := range t.Rows {
		cells := make([]interface{}, 0, len(t.Columns))
		cells = append(cells, row.CellID, row.Anodo)
		for _, name := range metrics {
			v, _ := row.Metric(name)
			switch {
			case v.IsMissing():
				cells = append(cells, nil)
			case v.IsFinite():
				cells = append(cells, v.Float)
			default:
				cells = append(cells, formatValue(v))
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
